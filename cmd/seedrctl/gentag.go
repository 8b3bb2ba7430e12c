package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var genTagCmd = &cobra.Command{
	Use:   "gen-instance-tag",
	Short: "Generate a random instance tag suitable for shared_account deployments",
	Run: func(cmd *cobra.Command, args []string) {
		tag := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		fmt.Println(tag)
	},
	DisableFlagsInUseLine: true,
}

func init() {
	rootCmd.AddCommand(genTagCmd)
}
