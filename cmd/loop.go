package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/kayz/muse/internal/config"
	"github.com/kayz/muse/internal/logger"
)

// loopInterval is deliberately not a round number so posts drift across the
// day instead of landing at the same minute.
const loopInterval = 103 * time.Minute

var loopCmd = &cobra.Command{
	Use:   "loop",
	Short: "Run continuously on the internal schedule",
	Long: `Runs a posting cycle immediately, then every 103 minutes. The 2-hour
minimum interval and monthly quota still apply, so most ticks are skips.
SIGINT prints the analytics report before exiting.`,
	RunE: runLoop,
}

func init() {
	rootCmd.AddCommand(loopCmd)
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return loopWith(cfg)
}

// loopWith runs the scheduler until SIGINT/SIGTERM. Also reached from the
// root command when the loop toggle is set in config or MUSE_LOOP.
func loopWith(cfg *config.Config) error {
	b, st, err := buildBot(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	runCycle := func() {
		if err := b.Run(context.Background()); err != nil {
			logger.Error("posting cycle failed: %v", err)
		}
	}

	logger.Info("loop mode: one cycle every %s", loopInterval)
	runCycle()

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", loopInterval), runCycle); err != nil {
		return fmt.Errorf("failed to schedule loop: %w", err)
	}
	c.Start()
	defer c.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	if rep, err := st.BuildReport(time.Now()); err == nil {
		fmt.Print(rep.Format())
	}
	return nil
}
