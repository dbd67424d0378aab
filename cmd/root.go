package cmd

import (
	"fmt"
	"log"
	"os"

	"KaraFM/config"
	"KaraFM/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "karafm",
	Short: "KaraFM is a music streaming and karaoke service.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting KaraFM server...")
		if err := server.Start(config.Load()); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
