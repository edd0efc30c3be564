package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kayz/muse/internal/bot"
	"github.com/kayz/muse/internal/config"
	"github.com/kayz/muse/internal/features"
	"github.com/kayz/muse/internal/imaging"
	"github.com/kayz/muse/internal/logger"
	"github.com/kayz/muse/internal/museum"
	"github.com/kayz/muse/internal/publisher"
	"github.com/kayz/muse/internal/store"
	"github.com/kayz/muse/internal/textgen"
)

var (
	logLevel string
	dryRun   bool
	cfgPath  string
)

var rootCmd = &cobra.Command{
	Use:   "muse",
	Short: "muse art bot runtime",
	Long: `muse posts one public-domain artwork per scheduled invocation:

Modes:
  muse           Run one posting cycle (default)
  muse loop      Keep running on the internal schedule
  muse report    Print posting analytics
  muse config    Write a starter config file`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.RunE = runOnce
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false,
		"Compose the post but do not publish or record it")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "",
		"Config file path (default: .muse.yaml next to the executable)")
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if cfgPath != "" {
		cfg, err = config.LoadFromPath(cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if dryRun {
		cfg.DryRun = true
	}
	if cfg.Logging.Level != "" && !rootCmd.PersistentFlags().Changed("log") {
		if level, err := logger.ParseLevel(cfg.Logging.Level); err == nil {
			logger.SetLevel(level)
		}
	}
	return cfg, nil
}

// buildBot assembles the runtime from config. The returned store must be
// closed by the caller.
func buildBot(cfg *config.Config) (*bot.Bot, *store.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	st, err := store.NewStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, nil, err
	}

	pub, err := buildPublisher(cfg)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	gen := buildGenerator(cfg)

	catalog, err := features.LoadCatalog()
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	b := bot.New(museum.NewClient(nil), imaging.NewPipeline(nil), gen, pub, st, catalog)
	b.DryRun = cfg.DryRun
	b.BackupDir = cfg.Storage.BackupDir
	if cfg.MonthlyLimit > 0 {
		b.MonthlyLimit = cfg.MonthlyLimit
	}
	return b, st, nil
}

func buildPublisher(cfg *config.Config) (publisher.Publisher, error) {
	if cfg.DryRun {
		return &publisher.DryRun{}, nil
	}

	x, err := publisher.NewXClient(publisher.XConfig{
		APIKey:       cfg.X.APIKey,
		APISecret:    cfg.X.APISecret,
		AccessToken:  cfg.X.AccessToken,
		AccessSecret: cfg.X.AccessSecret,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Telegram.Token == "" {
		return x, nil
	}
	tg, err := publisher.NewTelegramClient(publisher.TelegramConfig{
		Token:  cfg.Telegram.Token,
		ChatID: cfg.Telegram.ChatID,
	})
	if err != nil {
		logger.Warn("telegram mirror disabled: %v", err)
		return x, nil
	}
	return publisher.NewMulti(x, tg), nil
}

func buildGenerator(cfg *config.Config) textgen.Generator {
	if cfg.AI.APIKey == "" {
		logger.Warn("no AI key configured, captions use the fallback text")
		return textgen.FallbackGenerator{}
	}
	switch cfg.AI.Provider {
	case "anthropic":
		gen, err := textgen.NewAnthropicGenerator(textgen.AnthropicConfig{
			APIKey: cfg.AI.APIKey,
			Model:  cfg.AI.Model,
		})
		if err != nil {
			logger.Warn("anthropic setup failed (%v), captions use the fallback text", err)
			return textgen.FallbackGenerator{}
		}
		return gen
	default:
		gen, err := textgen.NewOpenAIGenerator(textgen.OpenAIConfig{
			APIKey:  cfg.AI.APIKey,
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
		})
		if err != nil {
			logger.Warn("openai setup failed (%v), captions use the fallback text", err)
			return textgen.FallbackGenerator{}
		}
		return gen
	}
}

// loopRunner is swapped out in tests.
var loopRunner = func(cfg *config.Config) error { return loopWith(cfg) }

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Loop {
		return loopRunner(cfg)
	}

	b, st, err := buildBot(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	return b.Run(context.Background())
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
