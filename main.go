// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/CrawX/go-imap-historian/config"
	"github.com/CrawX/go-imap-historian/log"
	"github.com/CrawX/go-imap-historian/persistence"

	"github.com/spf13/cobra"
)

const (
	exitCodeError       = 1
	exitCodeInterrupted = 130
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "go-imap-historian",
	Short:         "Import mails as histories into the CRM",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.toml", "config file")
	rootCmd.AddCommand(importCmd, contactsCmd, historyCmd)
}

func main() {
	os.Exit(run())
}

func run() int {
	log.InitLogging("info")
	logger := log.Logger(log.LOG_MAIN)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) && ctx.Err() == context.Canceled {
		logger.Warn("Interrupted")
		return exitCodeInterrupted
	}
	logger.WithField("error", err).Error("Failed")
	return exitCodeError
}

// loadConfig reads the config file and applies its log level.
func loadConfig() (*config.Config, error) {
	conf, err := config.ReadConfig(configFile)
	if err != nil {
		return nil, err
	}

	if conf.Loglevel != nil {
		log.SetLogLevel(*conf.Loglevel)
	}
	return conf, nil
}

func openDatabase(conf *config.Config) (*persistence.Persistence, error) {
	return persistence.NewPersistence(conf.DatabaseDriver, conf.Database)
}
