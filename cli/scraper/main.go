package main

import (
	"os"

	scrapercmder "github.com/riddlemeS4m/cursor-prompt-scraper/cmd/scraper"
)

func main() {
	cmd := scrapercmder.NewScraperCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
