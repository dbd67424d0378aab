package cmd

import (
	"log"

	"KaraFM/config"
	"KaraFM/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动KaraFM服务器",
	Long:  `启动KaraFM音乐系统的HTTP服务器，提供API服务、媒体文件服务和歌词同步`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := server.Start(config.Load()); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
