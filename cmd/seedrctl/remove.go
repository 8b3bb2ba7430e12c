package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/l3uddz/seedr-adapter/pkg/logger"
)

var removeDeleteLocal bool

var removeCmd = &cobra.Command{
	Use:   "remove [downloadId]",
	Short: "Remove an item, deleting cloud state (subject to ownership) and optionally local data",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.GetLogger("remove")
		downloadID := args[0]

		if flagDryRun {
			log.Infof("Would remove %s (delete-local=%v)", downloadID, removeDeleteLocal)
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

		if err := a.RemoveItem(context.Background(), downloadID, removeDeleteLocal); err != nil {
			log.WithError(err).Fatal("remove failed")
		}
	},
}

func init() {
	removeCmd.Flags().BoolVar(&removeDeleteLocal, "delete-local", false, "also delete the local copy")
	rootCmd.AddCommand(removeCmd)
}
