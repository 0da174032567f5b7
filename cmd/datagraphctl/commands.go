package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"datagraph-backend/internal/config"
	"datagraph-backend/internal/domain/catalog"
	"datagraph-backend/internal/infrastructure/graphstore"
	"datagraph-backend/internal/repository"
	"datagraph-backend/internal/tree"
)

var (
	configDir  string
	envFile    string
	timeout    time.Duration
	showHidden bool
	verbose    bool

	rootCmd = &cobra.Command{
		Use:          "datagraphctl",
		Short:        "Inspect the datagraph category and dataset tree",
		SilenceUsage: true,
	}

	treeCmd = &cobra.Command{
		Use:   "tree",
		Short: "Print the tree exactly as GET /all returns it",
		RunE:  runTree,
	}

	categoriesCmd = &cobra.Command{
		Use:   "categories",
		Short: "List categories in display form",
		RunE:  runCategories,
	}

	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Check Neo4j connectivity",
		RunE:  runPing,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory holding base.yaml and <env>.yaml (default $CONFIG_DIR or ./config)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file (default $ENV_FILE or .env)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "overall command timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log driver activity")

	treeCmd.Flags().BoolVar(&showHidden, "show-hidden", false, "include nodes with share_data=false")

	rootCmd.AddCommand(treeCmd, categoriesCmd, pingCmd)
}

// openStore is swapped out in tests.
var openStore = openNeo4jStore

// loaderFromFlags applies --config-dir and --env-file on top of the
// environment defaults.
func loaderFromFlags() *config.Loader {
	loader := config.NewLoaderFromEnv()
	if configDir == "" && envFile == "" {
		return loader
	}
	dir, file := loader.Dir(), loader.EnvFile()
	if configDir != "" {
		dir = configDir
	}
	if envFile != "" {
		file = envFile
	}
	return config.NewLoader(dir, file, loader.Environment(), loader.InsideDocker())
}

func openNeo4jStore(logger *zap.Logger) (graphstore.Store, error) {
	cfg, err := loaderFromFlags().Load()
	if err != nil {
		return nil, err
	}
	return graphstore.NewNeo4jStore(graphstore.Neo4jConfig{
		URI:            cfg.Neo4j.URI,
		Username:       cfg.Neo4j.Username,
		Password:       cfg.Neo4j.Password,
		Database:       cfg.Neo4j.Database,
		AcquireTimeout: cfg.Neo4j.AcquireTimeout,
		ConnectTimeout: cfg.Neo4j.ConnectTimeout,
		QueryTimeout:   cfg.Neo4j.QueryTimeout,
	}, logger)
}

// withStore opens the store and runs fn with it under the --timeout budget.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, store graphstore.Store) error) error {
	logger := zap.NewNop()
	if verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer logger.Sync()
	}

	store, err := openStore(logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	defer store.Close(context.Background())

	return fn(ctx, store)
}

func runTree(cmd *cobra.Command, _ []string) error {
	return withStore(cmd, func(ctx context.Context, store graphstore.Store) error {
		rows, err := repository.NewTreeReader(store).TreeRows(ctx)
		if err != nil {
			return err
		}

		opts := tree.Latest
		opts.ApplyVisibility = !showHidden
		entries, err := tree.Build(rows, opts)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), entries)
	})
}

func runCategories(cmd *cobra.Command, _ []string) error {
	return withStore(cmd, func(ctx context.Context, store graphstore.Store) error {
		names, err := repository.NewCategoryRepository(store, zap.NewNop()).ListNames(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), catalog.DisplayName(name))
		}
		return nil
	})
}

func runPing(cmd *cobra.Command, _ []string) error {
	return withStore(cmd, func(ctx context.Context, store graphstore.Store) error {
		start := time.Now()
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("neo4j unreachable: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok (%s)\n", time.Since(start).Round(time.Millisecond))
		return nil
	})
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
