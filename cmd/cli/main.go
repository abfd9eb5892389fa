package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/lnstable/internal/app"
	"github.com/iho/lnstable/internal/infrastructure/config"
	"github.com/iho/lnstable/internal/infrastructure/logger"
	"github.com/iho/lnstable/internal/infrastructure/postgres"
	"github.com/iho/lnstable/internal/usecase"
)

var (
	bcryptGenerate = bcrypt.GenerateFromPassword
	outputJSON     bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lnstable-cli",
		Short:         "lnstable maintenance tool",
		Long:          `Administrative commands for the lnstable ledger: migrations, password hashes and balance checks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&outputJSON, "json", false, "Print results as JSON")

	root.AddCommand(migrateCmd(), hashPasswordCmd(), reconcileCmd(), balancesCmd(), transactionsCmd())
	return root
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back PostgreSQL migrations",
	}

	run := func(apply func(*postgres.Migrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Parse()
			if err != nil {
				return err
			}
			return apply(postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, newLogger(cfg)))
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE:  run((*postgres.Migrator).Up),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE:  run((*postgres.Migrator).Down),
		},
	)
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Println(string(hash))
			return nil
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <username>",
		Short: "Compare stored balances with the transaction log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(store *app.Store) error {
				results, err := usecase.NewReconciliationUseCase(store.Ledger).ReconcileUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if outputJSON {
					printJSON(results)
				} else {
					printReconciliation(os.Stdout, results)
				}

				for _, r := range results {
					if !r.IsReconciled {
						return errors.New("ledger is out of balance")
					}
				}
				return nil
			})
		},
	}
}

func balancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances <username>",
		Short: "Show every balance of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(store *app.Store) error {
				balances, err := usecase.NewAccountUseCase(store.Ledger).ListBalances(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if outputJSON {
					printJSON(balances)
					return nil
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "CURRENCY\tBALANCE")
				for _, b := range balances {
					fmt.Fprintf(w, "%s\t%s\n", b.Currency, b.Amount.StringFixed(b.Currency.Precision()))
				}
				return w.Flush()
			})
		},
	}
}

func transactionsCmd() *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "transactions <username>",
		Short: "List a user's transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(store *app.Store) error {
				txs, err := usecase.NewAccountUseCase(store.Ledger).ListTransactions(cmd.Context(), args[0], offset, limit)
				if err != nil {
					return err
				}
				if outputJSON {
					printJSON(txs)
					return nil
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TXID\tTYPE\tCURRENCY\tVALUE\tFEE\tSTATUS\tCREATED")
				for _, tx := range txs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						truncate(tx.ID, 16), tx.Kind, tx.Currency, tx.Value, tx.Fee, tx.Status,
						tx.CreatedAt.Format("2006-01-02 15:04:05"))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of transactions to skip")
	cmd.Flags().IntVar(&limit, "limit", 10, "Page size (at most 10)")
	return cmd
}

func withStore(ctx context.Context, fn func(*app.Store) error) error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}

	store, err := app.OpenStore(ctx, cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(store)
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Output: os.Stderr})
}

func printReconciliation(out io.Writer, results []*usecase.ReconciliationResult) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CURRENCY\tRECORDED\tCALCULATED\tDIFFERENCE\tOK")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", r.Currency, r.RecordedBalance, r.CalculatedBalance, r.Difference, r.IsReconciled)
	}
	_ = w.Flush()
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
