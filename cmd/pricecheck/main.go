package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"waqf/internal/config"
	"waqf/internal/msx"
	"waqf/internal/service"
	"waqf/internal/store"

	"github.com/sirupsen/logrus"
)

// pricecheck runs the price cascade once per ticker and prints what it found.
// Useful when the exchange site changes shape:
//
//	go run ./cmd/pricecheck -v OQEP OQPI
func main() {
	verbose := flag.Bool("v", false, "log every stage attempt")
	configPath := flag.String("config", "waqf.toml", "path to an optional TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	overrides := service.ChainOverrides{service.EnvOverrides{}}
	if m, err := service.LoadOverridesFile(cfg.Overrides.File); err == nil {
		overrides = append(overrides, m)
	}

	client := msx.NewClient(cfg.MSX.BaseURL, cfg.MSX.Lang, logger)
	timeouts := service.StageTimeouts{
		SecurityInfo: cfg.MSX.SecurityInfoTimeout.Duration,
		Search:       cfg.MSX.SearchTimeout.Duration,
		Page:         cfg.MSX.PageTimeout.Duration,
	}
	resolver := service.NewResolver(logger, service.DefaultStrategies(client, overrides, timeouts, cfg.MSX.MarketBoard, logger)...)

	tickers := flag.Args()
	if len(tickers) == 0 {
		tickers = store.New(store.Seed(), logger).ActiveSymbols()
	}

	missing := 0
	for _, t := range tickers {
		p, ok := resolver.Resolve(context.Background(), strings.ToUpper(t))
		if !ok {
			missing++
			fmt.Printf("%-8s pending (no source answered)\n", t)
			continue
		}
		fmt.Printf("%-8s %s\n", t, p.StringFixed(3))
	}
	if missing > 0 {
		os.Exit(1)
	}
}
