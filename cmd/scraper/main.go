package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go-skyscout-automation/internal/browser"
	"go-skyscout-automation/internal/config"
	"go-skyscout-automation/internal/database"
	"go-skyscout-automation/internal/dedup"
	"go-skyscout-automation/internal/filter"
	"go-skyscout-automation/internal/models"
	"go-skyscout-automation/internal/orchestrator"
	"go-skyscout-automation/internal/reporter"
	"go-skyscout-automation/internal/scraper"
	"go-skyscout-automation/internal/scraper/avjobsearch"
	"go-skyscout-automation/internal/scraper/pilotcareer"
)

func main() {
	os.Exit(run())
}

// Exit codes: 0 = all requested sources completed, 1 = mixed outcome,
// 2 = all failed or nothing could start.
func run() int {
	var (
		configPath = flag.String("config", "configs/config.yaml", "path to the YAML config file")
		sourceName = flag.String("source", "all", "source name or \"all\"")
		jobCap     = flag.Int("job-cap", 0, "max listings per source (0 = unbounded)")
		pageCap    = flag.Int("page-cap", 0, "max listing pages per source (0 = unbounded)")
		dryRun     = flag.Bool("dry-run", false, "classify and log, don't persist")
	)
	flag.Parse()

	//load config — a broken keyword file means no run at all
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("❌ Config error: %v", err)
		return 2
	}
	log.Printf("🔧 Config loaded. Categories: %d, exclusions: %d, sources: %d",
		len(cfg.Filter.Categories), len(cfg.Filter.Exclusions), len(cfg.Sources))

	engine, err := filter.NewEngine(cfg.Filter)
	if err != nil {
		log.Printf("❌ Filter config error: %v", err)
		return 2
	}

	//cancellation closes every open session deterministically
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := reporter.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Printf("⚠️ Telegram reporter disabled: %v", err)
	}

	log.Println("🚀 Starting SkyScout scraper...")

	manager, err := browser.NewManager(cfg.Browser.Headless)
	if err != nil {
		log.Printf("❌ Failed to launch browser engine: %v", err)
		_ = bot.SendError(err)
		return 2
	}
	defer manager.Close()

	var (
		store       database.Store
		upserter    orchestrator.Upserter
		dryUpserter *orchestrator.DryRunUpserter
	)
	if *dryRun {
		log.Println("💡 Dry-run: results will be logged, not persisted")
		dryUpserter = orchestrator.NewDryRunUpserter()
		upserter = dryUpserter
	} else {
		repo, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("❌ Database error: %v", err)
			_ = bot.SendError(err)
			return 2
		}
		defer repo.Close()
		store = repo
		upserter = dedup.NewManager(repo, cfg.Dedup.FuzzyWindowDays)
	}

	//initialize sources
	registry := scraper.Registry{}
	registry.Register(avjobsearch.New(cfg.Source("avjobsearch")))
	registry.Register(pilotcareer.New(cfg.Source("pilotcareer")))

	sources, err := resolveSources(registry, *sourceName)
	if err != nil {
		log.Printf("❌ %v", err)
		return 2
	}

	runner := orchestrator.NewBrowserRunner(manager, registry, cfg.Browser.CookiesPath)
	metrics := orchestrator.NewMetrics()
	orch := orchestrator.New(cfg, store, engine, upserter, runner, metrics)

	params := models.RunParams{JobCap: *jobCap, PageCap: *pageCap, DryRun: *dryRun}
	records := orch.RunAll(ctx, sources, params)

	found, created, updated, duplicate, errs := metrics.Totals()
	log.Printf("\n📦 Totals: found=%d new=%d updated=%d duplicate=%d errors=%d",
		found, created, updated, duplicate, errs)

	if dryUpserter != nil {
		saveListings(dryUpserter.Accepted())
	}

	if err := bot.SendRunSummary(records); err != nil {
		log.Printf("⚠️ Failed to send summary to Telegram: %v", err)
	}

	log.Println("🏁 Execution finished.")
	return metrics.ExitCode()
}

func resolveSources(registry scraper.Registry, name string) ([]string, error) {
	if strings.EqualFold(name, "all") {
		return registry.Names(), nil
	}
	if _, err := registry.Get(name); err != nil {
		return nil, fmt.Errorf("unknown source %q (known: %s)", name, strings.Join(registry.Names(), ", "))
	}
	return []string{name}, nil
}

func saveListings(listings []scraper.RawListing) {
	if len(listings) == 0 {
		log.Println("ℹ️ No listings to save.")
		return
	}

	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Printf("⚠️ Failed to create logs directory: %v", err)
		return
	}

	filename := fmt.Sprintf("scrape-%s.json", time.Now().Format("2006-01-02"))
	filePath := filepath.Join(logDir, filename)

	data, err := json.MarshalIndent(listings, "", " ")
	if err != nil {
		log.Printf("⚠️ Failed to marshal listings to JSON: %v", err)
		return
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.Printf("⚠️ Failed to write log file: %v", err)
		return
	}

	log.Printf("📁 Results saved to %s", filePath)
}
