package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crystal-maps/venue-cli/internal/report"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render venue data into shareable formats",
}

var exportListOutput string

var exportListCmd = &cobra.Command{
	Use:   "list",
	Short: "Write the searchable HTML venue list",
	Long: `Render every venue into a single self-contained HTML page with
Google Maps links and menu availability notes. Duplicate records collapse
to their best representative.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("export"); err != nil {
			return err
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		venues, err := s.ListVenues(ctx)
		if err != nil {
			return err
		}

		if dir := filepath.Dir(exportListOutput); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return eris.Wrapf(err, "export: create output dir %s", dir)
			}
		}
		out, err := os.Create(exportListOutput)
		if err != nil {
			return eris.Wrapf(err, "export: create %s", exportListOutput)
		}
		defer out.Close()

		if err := report.WriteList(out, venues); err != nil {
			return err
		}

		zap.L().Info("venue list written",
			zap.String("path", exportListOutput),
			zap.Int("venues", len(venues)),
		)
		return nil
	},
}

func init() {
	exportListCmd.Flags().StringVar(&exportListOutput, "output", "output/venue_list.html", "where to write the HTML list")

	exportCmd.AddCommand(exportListCmd)
	rootCmd.AddCommand(exportCmd)
}
