package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/noah-isme/magazine-flow-api/internal/repository"
	"github.com/noah-isme/magazine-flow-api/internal/seed"
	"github.com/noah-isme/magazine-flow-api/pkg/config"
	"github.com/noah-isme/magazine-flow-api/pkg/database"
	"github.com/noah-isme/magazine-flow-api/pkg/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		fixturePath string
		validate    bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, brands and editions from a YAML fixture",
		Long: `seed reads a YAML fixture and writes it to the configured Postgres database in one
transaction. Users are upserted by email with bcrypt-hashed passwords; brands and editions
that already exist are kept as they are.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(fixturePath)
			if err != nil {
				return fmt.Errorf("open fixture: %w", err)
			}
			defer file.Close() //nolint:errcheck

			fx, err := seed.LoadFixture(file)
			if err != nil {
				return err
			}
			if validate {
				fmt.Fprintf(cmd.OutOrStdout(), "fixture ok: %d users, %d brands\n", len(fx.Users), len(fx.Brands))
				return nil
			}
			return run(cmd.Context(), cmd, fx)
		},
	}
	cmd.Flags().StringVarP(&fixturePath, "fixture", "f", "seed.yaml", "path to the YAML fixture")
	cmd.Flags().BoolVar(&validate, "validate", false, "only parse and validate the fixture")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, fx *seed.Fixture) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	seeder := seed.NewSeeder(
		repository.NewUserRepository(db),
		repository.NewCatalogRepository(db),
		database.NewTransactor(db),
		logr,
	)
	res, err := seeder.Run(ctx, fx)
	if err != nil {
		return err
	}
	printResult(cmd, res)
	return nil
}

func printResult(cmd *cobra.Command, res *seed.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Username", "Email", "Role", "Department", "Manager"})
	for _, u := range res.Users {
		dept := "-"
		if u.Department != nil {
			dept = string(*u.Department)
		}
		t.AppendRow(table.Row{u.Username, u.Email, u.Role, dept, u.IsManager})
	}
	t.AppendFooter(table.Row{"", "", "", "users", len(res.Users)})
	t.Render()

	fmt.Fprintln(cmd.OutOrStdout(), strings.Join([]string{
		fmt.Sprintf("brands: %d created, %d kept", res.BrandsCreated, res.BrandsKept),
		fmt.Sprintf("editions: %d created, %d kept", res.EditionsCreated, res.EditionsKept),
	}, "\n"))
}
