package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3uddz/seedr-adapter/pkg/logger"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Validate credentials, download directory and registry connectivity",
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.GetLogger("test")

		cfg, err := loadConfig()
		if err != nil {
			log.WithError(err).Fatal("failed loading config")
		}
		a, err := buildAdapter(cfg)
		if err != nil {
			log.WithError(err).Fatal("failed building adapter")
		}

		failures := a.Test(context.Background())
		if len(failures) == 0 {
			log.Info("OK")
			return
		}

		hasError := false
		for _, f := range failures {
			if f.Warning {
				log.Warnf("[%s] %s", f.Field, f.Message)
			} else {
				hasError = true
				log.Errorf("[%s] %s", f.Field, f.Message)
			}
		}
		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
}
