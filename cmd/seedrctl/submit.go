package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3uddz/seedr-adapter/pkg/logger"
	"github.com/l3uddz/seedr-adapter/pkg/seedr"
)

var submitMagnetURI string
var submitTorrentFile string
var submitTitle string

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Register a magnet link or .torrent file with Seedr",
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.GetLogger("submit")

		cfg, err := loadConfig()
		if err != nil {
			log.WithError(err).Fatal("failed loading config")
		}

		release := seedr.Release{Title: submitTitle, MagnetURI: submitMagnetURI}
		if submitTorrentFile != "" {
			data, err := os.ReadFile(submitTorrentFile)
			if err != nil {
				log.WithError(err).Fatal("failed reading torrent file")
			}
			release.TorrentBytes = data
		}

		if flagDryRun {
			log.Infof("Would submit release %q", submitTitle)
			return
		}

		a, err := buildAdapter(cfg)
		if err != nil {
			log.WithError(err).Fatal("failed building adapter")
		}

		downloadID, err := a.Submit(context.Background(), release)
		if err != nil {
			log.WithError(err).Fatal("submit failed")
		}

		fmt.Println(downloadID)
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitMagnetURI, "magnet", "", "magnet URI")
	submitCmd.Flags().StringVar(&submitTorrentFile, "torrent-file", "", "path to a .torrent file")
	submitCmd.Flags().StringVar(&submitTitle, "title", "", "release title")
	rootCmd.AddCommand(submitCmd)
}
