package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/foodbridge/foodbridge/internal/adhoc"
	"github.com/foodbridge/foodbridge/internal/config"
	"github.com/foodbridge/foodbridge/internal/database"
	"github.com/foodbridge/foodbridge/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI flags
var (
	dbPath    string
	logFile   string
	verbosity int

	// Ad-hoc limit flags (advanced)
	adhocTimeout time.Duration
	adhocMaxRows int
)

// app holds the resources opened for one command invocation.
type app struct {
	db      *database.DB
	gateway *adhoc.Gateway
}

var current *app

func main() {
	// A missing .env is normal; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:           "foodbridge",
		Short:         "foodbridge - surplus food listings and reports",
		Long:          `foodbridge stores food providers, receivers, listings and claims, and reports on them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["skipDB"] == "true" {
				return nil
			}
			return setup(cmd, cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			teardown()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", cfg.DBPath, "SQLite database path (or set FOODBRIDGE_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", cfg.LogFile, "Rotating log file (default: next to the database when log.file_enabled is set)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	rootCmd.PersistentFlags().DurationVar(&adhocTimeout, "adhoc-timeout", cfg.Adhoc.Timeout, "Time budget for a single ad-hoc query")
	rootCmd.PersistentFlags().IntVar(&adhocMaxRows, "adhoc-max-rows", cfg.Adhoc.MaxRows, "Row ceiling for a single ad-hoc query")

	rootCmd.AddCommand(
		initCmd(),
		ingestCmd(),
		tablesCmd(),
		providerCmd(),
		listingCmd(),
		reportCmd(),
		queryCmd(),
		settingsCmd(),
		maintenanceCmd(),
		&cobra.Command{
			Use:         "version",
			Short:       "Show version information",
			Annotations: map[string]string{"skipDB": "true"},
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("foodbridge %s (commit: %s, built: %s)\n", version, commit, date)
			},
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Command failed")
		teardown()
		os.Exit(1)
	}
}

// setup configures logging, opens the store and builds the gateway.
func setup(cmd *cobra.Command, cfg *config.Config) error {
	level := logging.LevelFromVerbosity(verbosity)
	if level == "" {
		level = cfg.LogLevel
	}
	logging.Apply(logging.Options{Level: level}, nil)

	db, err := database.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Stored settings are only readable once the store is open.
	loader := config.NewLoader(db)
	if verbosity == 0 {
		level = loader.String("log.level", level)
	}
	filePath := logFile
	if filePath == "" && loader.Bool("log.file_enabled", false) {
		filePath = logging.FilePathForDB(dbPath)
	}
	logging.Apply(logging.Options{Level: level, FilePath: filePath}, loader)

	limits := config.LoadQueryLimits(loader, cfg.Adhoc)
	if cmd.Flags().Changed("adhoc-timeout") {
		limits.Timeout = adhocTimeout
	}
	if cmd.Flags().Changed("adhoc-max-rows") {
		limits.MaxRows = adhocMaxRows
	}
	if err := limits.Validate(); err != nil {
		db.Close()
		return err
	}

	log.Debug().Str("database", dbPath).Dur("adhoc_timeout", limits.Timeout).Int("adhoc_max_rows", limits.MaxRows).Msg("Store ready")

	current = &app{
		db:      db,
		gateway: adhoc.New(db, limits),
	}
	return nil
}

func teardown() {
	if current == nil {
		return
	}
	if err := current.db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}
	current = nil
}
