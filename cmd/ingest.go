package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crystal-maps/venue-cli/internal/fetch"
	"github.com/crystal-maps/venue-cli/internal/listing"
)

var ingestURL string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Scrape the brand listing page into the venue store",
	Long: `Fetch the partner listing page, parse every brand and branch, and
upsert them into the store. Re-running refreshes raw listing fields without
touching geocode or menu enrichment.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if ingestURL != "" {
			cfg.Listing.URL = ingestURL
		}
		if err := cfg.Validate("ingest"); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "ingest"))

		fetcher := fetch.NewHTTPFetcher(time.Duration(cfg.Listing.TimeoutSecs) * time.Second)
		page, err := fetcher.Fetch(ctx, cfg.Listing.URL)
		if err != nil {
			return eris.Wrapf(err, "ingest: fetch listing %s", cfg.Listing.URL)
		}

		venues, err := listing.Parse(page.HTML, page.FinalURL)
		if err != nil {
			return err
		}
		if len(venues) == 0 {
			return eris.New("ingest: listing page yielded no venues")
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		stored, err := s.UpsertVenues(ctx, venues)
		if err != nil {
			return err
		}

		log.Info("listing ingested",
			zap.String("url", cfg.Listing.URL),
			zap.Int("parsed", len(venues)),
			zap.Int("stored", stored),
		)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "listing page URL (overrides config)")
	rootCmd.AddCommand(ingestCmd)
}
