package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleethealth/app"
	"github.com/kilianp07/fleethealth/config"
	"github.com/kilianp07/fleethealth/infra/logger"
)

var (
	cfgPath string
	serve   serveFlags
)

// serveFlags override the server and dataset sections of the config file.
type serveFlags struct {
	addr    string
	dataset string
	pattern string
}

func (f serveFlags) apply(cfg *config.Config) {
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.dataset != "" {
		cfg.Dataset.Root = f.dataset
	}
	if f.pattern != "" {
		cfg.Dataset.Pattern = f.pattern
	}
}

var rootCmd = &cobra.Command{
	Use:   "fleethealth",
	Short: "Fleet battery health dataset service",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.Flags().StringVar(&serve.addr, "addr", "", "listen address of the dataset API")
	rootCmd.Flags().StringVar(&serve.dataset, "dataset", "", "root directory of the CSV dataset")
	rootCmd.Flags().StringVar(&serve.pattern, "pattern", "", "doublestar pattern of CSV files under the dataset root")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	serve.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	log := logger.New("main")
	defer func() {
		if err := svc.Close(); err != nil {
			log.Errorf("service close: %v", err)
		}
	}()
	log.Infof("serving fleet dataset %s (%s) on %s", cfg.Dataset.Root, cfg.Dataset.Pattern, cfg.Server.Addr)
	return svc.Run(ctx)
}
