package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crystal-maps/venue-cli/internal/fetch"
	"github.com/crystal-maps/venue-cli/internal/pipeline"
	"github.com/crystal-maps/venue-cli/internal/report"
	"github.com/crystal-maps/venue-cli/pkg/places"
)

var menusCmd = &cobra.Command{
	Use:   "menus",
	Short: "Scrape and inspect restaurant menus",
}

var (
	menusScrapeForce bool
	menusScrapeLimit int
)

var menusScrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape menus for venues that have a usable source",
	Long: `For each venue, try its own website first, then its Google Maps
page, then the Places API. The first source that yields menu content wins
and is recorded as the menu's provenance. Venues where every source comes
up empty are stamped as attempted so they are distinguishable from venues
never tried.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("menus"); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "menus.scrape"))

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		timeout := time.Duration(cfg.Menus.TimeoutSecs) * time.Second
		settle := time.Duration(cfg.Menus.RenderWaitSecs) * time.Second
		chain := fetch.NewChain(
			fetch.NewRenderFetcher(cfg.Menus.RenderEnabled, timeout, settle),
			fetch.NewHTTPFetcher(timeout),
		)

		var placesClient *places.Client
		if cfg.Google.APIKey != "" {
			placesClient = places.NewClient(cfg.Google.APIKey, places.WithLanguage(cfg.Geocode.Language))
		} else {
			log.Debug("no Places API key, menu fallback limited to website and maps")
		}

		limit := menusScrapeLimit
		if limit == 0 {
			limit = cfg.Menus.Limit
		}
		delay := time.Duration(cfg.Menus.DelaySecs * float64(time.Second))

		o := pipeline.NewOrchestrator(s, chain, placesClient,
			cfg.Menus.FollowMenuLinks, delay,
			pipeline.WithMenuForce(menusScrapeForce),
			pipeline.WithMenuLimit(limit),
		)

		summary, err := o.Run(ctx)
		if summary != nil {
			fields := []zap.Field{
				zap.Int("total", summary.Total),
				zap.Int("found", summary.Found),
				zap.Int("missed", summary.Missed),
			}
			for source, n := range summary.BySource {
				fields = append(fields, zap.Int("source."+string(source), n))
			}
			log.Info("menu scrape finished", fields...)
		}
		return err
	},
}

var (
	menusShowLimit   int
	menusShowDetails bool
)

var menusShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print stored menus and scraping statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("show"); err != nil {
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

		return report.WriteMenus(os.Stdout, venues, report.ShowOptions{
			Limit:   menusShowLimit,
			Details: menusShowDetails,
		})
	},
}

func init() {
	menusScrapeCmd.Flags().BoolVar(&menusScrapeForce, "force", false, "re-scrape venues that already have a menu")
	menusScrapeCmd.Flags().IntVar(&menusScrapeLimit, "limit", 0, "process at most this many venues (0 for config default)")
	menusShowCmd.Flags().IntVar(&menusShowLimit, "limit", 10, "show at most this many menus (0 for all)")
	menusShowCmd.Flags().BoolVar(&menusShowDetails, "details", false, "include sample menu items")

	menusCmd.AddCommand(menusScrapeCmd)
	menusCmd.AddCommand(menusShowCmd)
	rootCmd.AddCommand(menusCmd)
}
