package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/foodbridge/foodbridge/internal/database"
	"github.com/foodbridge/foodbridge/internal/ingest"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and schema if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info().Str("database", current.db.Path()).Msg("Schema is up to date")
			return nil
		},
	}
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <dir>",
		Short: "Append providers, receivers, food_listings and claims CSV files from a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := ingest.Dir(cmd.Context(), current.db, args[0])
			for _, e := range database.Entities() {
				if n, ok := summary[e]; ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows\n", e, n)
				}
			}
			return err
		},
	}
}

func tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <Providers|Receivers|Food_Listings|Claims>",
		Short: "Print every row of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := database.ParseEntity(args[0])
			if err != nil {
				return err
			}
			table, err := current.db.ReadEntity(cmd.Context(), e)
			if err != nil {
				return err
			}
			return renderTable(cmd.OutOrStdout(), table)
		},
	}
}

func providerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Add or delete providers",
	}

	var p database.NewProvider
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := current.db.AddProvider(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Provider %d added\n", id)
			return nil
		},
	}
	add.Flags().StringVar(&p.Name, "name", "", "Provider name (required)")
	add.Flags().StringVar(&p.Type, "type", string(database.ProviderTypeRestaurant), "Provider type")
	add.Flags().StringVar(&p.Address, "address", "", "Street address")
	add.Flags().StringVar(&p.City, "city", "", "City")
	add.Flags().StringVar(&p.Contact, "contact", "", "Contact number or email")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a provider; its listings are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := current.db.DeleteProvider(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Provider %d deleted\n", id)
			return nil
		},
	}

	cmd.AddCommand(add, del)
	return cmd
}

func listingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listing",
		Short: "Add or delete food listings",
	}

	var (
		l        database.NewFoodListing
		expiry   string
		foodType string
		mealType string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a food listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := time.ParseInLocation(database.DateLayout, expiry, time.Local)
			if err != nil {
				return &database.ValidationError{Fields: map[string]string{"Expiry_Date": "must be YYYY-MM-DD"}}
			}
			l.ExpiryDate = t
			l.FoodType = database.FoodType(foodType)
			l.MealType = database.MealType(mealType)

			id, err := current.db.AddFoodListing(cmd.Context(), l)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Food listing %d added\n", id)
			return nil
		},
	}
	add.Flags().StringVar(&l.FoodName, "name", "", "Food name (required)")
	add.Flags().IntVar(&l.Quantity, "quantity", 1, "Quantity")
	add.Flags().StringVar(&expiry, "expiry", time.Now().Format(database.DateLayout), "Expiry date (YYYY-MM-DD)")
	add.Flags().Int64Var(&l.ProviderID, "provider", 0, "Provider ID (required)")
	add.Flags().StringVar(&foodType, "food-type", string(database.FoodTypeVegetarian), "Vegetarian, Non-Vegetarian or Vegan")
	add.Flags().StringVar(&mealType, "meal-type", string(database.MealTypeLunch), "Breakfast, Lunch, Dinner or Snacks")
	add.Flags().StringVar(&l.Location, "location", "", "Pickup location (defaults to the provider's city)")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a food listing; its claims are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := current.db.DeleteFoodListing(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Food listing %d deleted\n", id)
			return nil
		},
	}

	cmd.AddCommand(add, del)
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "List or run the built-in reports",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the built-in reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, q := range database.CatalogQueries() {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", int(q), q.Label())
			}
			return nil
		},
	}

	run := &cobra.Command{
		Use:   "run <label|number>",
		Short: "Run a built-in report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := current.db.RunCatalogQueryLabel(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := renderTable(cmd.OutOrStdout(), table); err != nil {
				return err
			}
			if table.Chartable() {
				fmt.Fprintf(cmd.OutOrStdout(), "\n(chartable by %s)\n", table.Columns[0])
			}
			return nil
		},
	}

	cmd.AddCommand(list, run)
	return cmd
}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a read-only ad-hoc query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := current.gateway.Run(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("query %s: %w", res.State, err)
			}
			if err := renderTable(cmd.OutOrStdout(), res.Table); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d rows in %s\n", res.Table.Len(), res.Elapsed.Round(time.Millisecond))
			return nil
		},
	}
}

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change stored settings",
	}

	get := &cobra.Command{
		Use:   "get [key]",
		Short: "Show one or all stored settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				value, err := current.db.GetSetting(args[0])
				if err != nil {
					return err
				}
				if value == "" {
					if def, ok := database.DefaultSettings[args[0]]; ok {
						value = fmt.Sprintf("%v (default)", def)
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			}
			settings, err := current.db.GetAllSettings()
			if err != nil {
				return err
			}
			table := &database.Table{Columns: []string{"Key", "Value"}}
			for key, def := range database.DefaultSettings {
				if _, ok := settings[key]; !ok {
					settings[key] = fmt.Sprintf("%v (default)", def)
				}
			}
			for _, key := range sortedKeys(settings) {
				table.Rows = append(table.Rows, []any{key, settings[key]})
			}
			return renderTable(cmd.OutOrStdout(), table)
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return current.db.SetSetting(args[0], args[1])
		},
	}

	unset := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a stored setting so the default applies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return current.db.DeleteSetting(args[0])
		},
	}

	cmd.AddCommand(get, set, unset)
	return cmd
}

func maintenanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Database housekeeping",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "optimize",
			Short: "Refresh query planner statistics",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return current.db.Optimize(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "vacuum",
			Short: "Rebuild the database file to reclaim space",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return current.db.Vacuum(cmd.Context())
			},
		},
	)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, &database.ValidationError{Fields: map[string]string{"id": "must be a positive integer"}}
	}
	return id, nil
}
