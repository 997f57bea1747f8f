// Package scrapercmder
package scrapercmder

import (
	"github.com/spf13/cobra"

	servecmder "github.com/riddlemeS4m/cursor-prompt-scraper/cmd/scraper/serve"
	statscmder "github.com/riddlemeS4m/cursor-prompt-scraper/cmd/scraper/stats"
	versioncmder "github.com/riddlemeS4m/cursor-prompt-scraper/cmd/version"
)

const scraperLongDesc string = `Scraper captures and deduplicates editor API traffic.

Run the proxy using:
  scraper serve        Run the intercepting proxy
  scraper stats        Show session deduplication statistics`

const scraperShortDesc string = "Scraper - editor traffic capture"

func NewScraperCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scraper",
		Short: scraperShortDesc,
		Long:  scraperLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the scraper.yaml config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(statscmder.NewStatsCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
