package main

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/l3uddz/seedr-adapter/pkg/logger"
	"github.com/l3uddz/seedr-adapter/pkg/seedr"
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Poll the adapter and print its current download-client items",
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.GetLogger("items")

		cfg, err := loadConfig()
		if err != nil {
			log.WithError(err).Fatal("failed loading config")
		}

		a, err := buildAdapter(cfg)
		if err != nil {
			log.WithError(err).Fatal("failed building adapter")
		}

		items := a.GetItems(context.Background())
		if len(items) == 0 {
			log.Info("No items.")
			return
		}

		for _, item := range items {
			downloaded := item.TotalSize - item.RemainingSize
			if downloaded < 0 {
				downloaded = 0
			}
			log.Infof("%-24s %-40s %-12s %10s / %10s  %s",
				item.DownloadID, item.Title, statusLabel(item.Status),
				humanize.Bytes(uint64(downloaded)),
				humanize.Bytes(uint64(item.TotalSize)),
				item.Message,
			)
		}
	},
}

func statusLabel(s seedr.Status) string {
	switch s {
	case seedr.Completed:
		return "completed"
	case seedr.Warning:
		return "warning"
	default:
		return "downloading"
	}
}

func init() {
	rootCmd.AddCommand(itemsCmd)
}
