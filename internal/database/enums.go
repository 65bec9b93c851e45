package database

// ProviderType is the kind of business offering food. The store accepts any text;
// these are the values offered to users.
type ProviderType string

const (
	ProviderTypeRestaurant      ProviderType = "Restaurant"
	ProviderTypeGroceryStore    ProviderType = "Grocery Store"
	ProviderTypeSupermarket     ProviderType = "Supermarket"
	ProviderTypeCateringService ProviderType = "Catering Service"
)

// ProviderTypes lists the provider types offered to users.
func ProviderTypes() []ProviderType {
	return []ProviderType{
		ProviderTypeRestaurant,
		ProviderTypeGroceryStore,
		ProviderTypeSupermarket,
		ProviderTypeCateringService,
	}
}

type FoodType string

const (
	FoodTypeVegetarian    FoodType = "Vegetarian"
	FoodTypeNonVegetarian FoodType = "Non-Vegetarian"
	FoodTypeVegan         FoodType = "Vegan"
)

type MealType string

const (
	MealTypeBreakfast MealType = "Breakfast"
	MealTypeLunch     MealType = "Lunch"
	MealTypeDinner    MealType = "Dinner"
	MealTypeSnacks    MealType = "Snacks"
)

// ClaimStatus is the lifecycle state of a claim.
type ClaimStatus string

const (
	ClaimStatusPending   ClaimStatus = "Pending"
	ClaimStatusCompleted ClaimStatus = "Completed"
	ClaimStatusCancelled ClaimStatus = "Cancelled"
)
