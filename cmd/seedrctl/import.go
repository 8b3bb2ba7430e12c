package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/l3uddz/seedr-adapter/pkg/logger"
)

var importCmd = &cobra.Command{
	Use:   "mark-imported [downloadId]",
	Short: "Mark an item as imported, applying the configured cloud-deletion policy",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.GetLogger("mark-imported")
		downloadID := args[0]

		if flagDryRun {
			log.Infof("Would mark %s as imported", downloadID)
			return
		}

		cfg, err := loadConfig()
		if err != nil {
			log.WithError(err).Fatal("failed loading config")
		}
		a, err := buildAdapter(cfg)
		if err != nil {
			log.WithError(err).Fatal("failed building adapter")
		}

		if err := a.MarkItemAsImported(context.Background(), downloadID); err != nil {
			log.WithError(err).Fatal("mark-imported failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
