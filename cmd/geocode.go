package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crystal-maps/venue-cli/internal/pipeline"
	"github.com/crystal-maps/venue-cli/pkg/geocode"
)

var geocodeForce bool

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolve venue addresses to coordinates",
	Long: `Walk unresolved venues through the configured geocoder chain.
Each resolution is committed as soon as it lands, so interrupting a run
loses nothing and the next run continues where this one stopped.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("geocode"); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "geocode"))

		providers := geocode.FromConfig(cfg.Geocode.Providers, geocode.Options{
			Timeout:        time.Duration(cfg.Geocode.TimeoutSecs) * time.Second,
			Language:       cfg.Geocode.Language,
			NominatimEmail: cfg.Geocode.NominatimEmail,
			GoogleAPIKey:   cfg.Google.APIKey,
		})
		if len(providers) == 0 {
			return eris.New("geocode: no usable geocoders configured")
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		delay := time.Duration(cfg.Geocode.DelaySecs * float64(time.Second))
		resolver := pipeline.NewResolver(s, providers, delay, pipeline.WithForce(geocodeForce))

		summary, err := resolver.Run(ctx)
		if summary != nil {
			log.Info("geocode run finished",
				zap.Int("resolved", summary.Resolved),
				zap.Int("skipped", summary.Skipped),
				zap.Int("failed", len(summary.Failures)),
			)
			for _, query := range summary.Failures {
				log.Warn("unresolved venue", zap.String("query", query))
			}
		}
		return err
	},
}

func init() {
	geocodeCmd.Flags().BoolVar(&geocodeForce, "force", false, "re-resolve venues that already have coordinates")
	rootCmd.AddCommand(geocodeCmd)
}
