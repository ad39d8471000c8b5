// Command themeforge is a maintenance harness around the generation
// library: one-shot theme generation against a configured engine, plus
// listing and deleting stored themes. The library itself exposes no CLI
// surface; this exists for development and operations.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/HerbHall/themeforge/internal/config"
	"github.com/HerbHall/themeforge/internal/engine"
	"github.com/HerbHall/themeforge/internal/generator"
	"github.com/HerbHall/themeforge/internal/store"
	"github.com/HerbHall/themeforge/internal/version"
	"github.com/HerbHall/themeforge/pkg/theme"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	// Subcommand dispatch (before flag.Parse).
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "list":
			runList(os.Args[2:])
			return
		case "delete":
			runDelete(os.Args[2:])
			return
		case "version":
			fmt.Println(version.Info())
			return
		}
	}

	configPath := flag.String("config", "", "path to configuration file")
	prompt := flag.String("prompt", "", "theme prompt (1-50 characters)")
	level := flag.String("diversity", "standard", "diversity level: standard, high, maximum")
	fallback := flag.Bool("fallback", true, "substitute the fallback theme when generation fails")
	save := flag.Bool("save", false, "persist the accepted theme to the store")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}
	if *prompt == "" {
		fmt.Fprintln(os.Stderr, "usage: themeforge -prompt \"ocean waves\" [-diversity high] [-save]")
		os.Exit(2)
	}

	v, logger := mustSetup(*configPath)
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Unmarshal(v)
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	eng, err := engine.New(engine.Config{
		BaseURL:           cfg.Engine.BaseURL,
		Model:             cfg.Engine.Model,
		Timeout:           cfg.Engine.Timeout,
		Temperature:       cfg.Engine.Temperature,
		MaxTokens:         cfg.Engine.MaxTokens,
		RequestsPerMinute: cfg.Engine.RequestsPerMinute,
	}, &engine.EnvCredentials{Var: cfg.Engine.APIKeyEnv}, logger.Named("engine"))
	if err != nil {
		logger.Fatal("engine init failed", zap.Error(err))
	}

	orch := generator.New(eng, cfg.Diversity,
		generator.NewMetrics(prometheus.DefaultRegisterer), logger.Named("generator"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := orch.Generate(ctx, *prompt, generator.Options{
		DiversityLevel:  theme.DiversityLevel(*level),
		FallbackOnError: *fallback,
	})
	if !res.Success {
		logger.Error("generation failed",
			zap.String("error", res.Err),
			zap.Int("diversity_failures", res.DiversityFailures),
		)
		os.Exit(1)
	}
	if res.UsedFallback {
		logger.Warn("fallback theme substituted", zap.String("reason", res.Err))
	}

	if *save {
		st := mustOpenStore(cfg, logger)
		defer st.Close()
		if err := st.Save(ctx, res.Theme); err != nil {
			logger.Fatal("save theme failed", zap.Error(err))
		}
		logger.Info("theme saved", zap.String("theme_id", res.Theme.ID))
	}

	printJSON(res.Theme)
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	fs.Parse(args) //nolint:errcheck

	v, logger := mustSetup(*configPath)
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Unmarshal(v)
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	st := mustOpenStore(cfg, logger)
	defer st.Close()

	themes, err := st.LoadAll(context.Background())
	if err != nil {
		logger.Fatal("load themes failed", zap.Error(err))
	}
	for _, t := range themes {
		fmt.Printf("%s\t%s\t%s\t%q\n", t.ID, t.Kind, t.CreatedAt.Format("2006-01-02 15:04"), t.Name)
	}
}

func runDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	id := fs.String("id", "", "theme ID to delete")
	fs.Parse(args) //nolint:errcheck

	if *id == "" {
		fmt.Fprintln(os.Stderr, "usage: themeforge delete -id <theme-id>")
		os.Exit(2)
	}

	v, logger := mustSetup(*configPath)
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Unmarshal(v)
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	st := mustOpenStore(cfg, logger)
	defer st.Close()

	if err := st.Delete(context.Background(), *id); err != nil {
		logger.Fatal("delete theme failed", zap.Error(err))
	}
	logger.Info("theme deleted", zap.String("theme_id", *id))
}

// mustSetup loads configuration and builds the logger, exiting on failure.
func mustSetup(configPath string) (*viper.Viper, *zap.Logger) {
	v, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return v, logger
}

func mustOpenStore(cfg *config.Config, logger *zap.Logger) *store.ThemeStore {
	st, err := store.New(cfg.Store.Path, logger.Named("store"))
	if err != nil {
		logger.Fatal("open store failed", zap.Error(err))
	}
	return st
}

func printJSON(t *theme.AcceptedTheme) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(t) //nolint:errcheck
}
