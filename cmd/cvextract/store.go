package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/cv-autofill/internal/adapter/export/xlsx"
	"github.com/fairyhunter13/cv-autofill/internal/adapter/observability"
	"github.com/fairyhunter13/cv-autofill/internal/adapter/repo/sqlite"
	"github.com/fairyhunter13/cv-autofill/internal/config"
)

func newListCmd() *cobra.Command {
	var (
		db    string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored extraction results, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := sqlite.Open(cmd.Context(), db)
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()

			results, err := repo.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tFILE\tMETHOD\tNAME\tEMAIL")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Filename, r.Outcome.Method, r.Profile.FullName, r.Profile.Email)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&db, "store", "profiles.db", "SQLite database written by extract --store")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum rows")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		db    string
		out   string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored profiles to an Excel workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			repo, err := sqlite.Open(cmd.Context(), db)
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()

			svc := xlsx.NewService(repo, observability.NewLogger(cmd.ErrOrStderr(), cfg))
			b, err := svc.Export(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&db, "store", "profiles.db", "SQLite database written by extract --store")
	cmd.Flags().StringVarP(&out, "out", "o", "profiles.xlsx", "Output workbook")
	cmd.Flags().IntVarP(&limit, "limit", "n", 1000, "Maximum profiles")
	return cmd
}
