package cmd

import (
	"context"
	"log"
	"time"

	"KaraFM/config"
	"KaraFM/db"
	"KaraFM/logger"
	"KaraFM/repository"
	"KaraFM/server"
	"KaraFM/storage"

	"github.com/spf13/cobra"
)

var sweepGraceMinutes int

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "回收孤儿媒体文件",
	Long: `扫描存储后端，删除不再被任何歌曲、录音、播客或头像引用的文件。
宽限期内的新文件不会被回收。`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid configuration: %v", err)
		}
		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.LogLevel),
			OutputPath: "", // sweep logs to stdout only
		})
		defer logger.Sync()

		if err := db.ConnectDB(cfg); err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("failed to connect database with GORM: %v", err)
		}
		defer db.CloseGormDB()

		store, err := storage.NewStore(cfg)
		if err != nil {
			log.Fatalf("failed to initialize storage: %v", err)
		}

		grace := cfg.SweepGraceMinutes
		if sweepGraceMinutes > 0 {
			grace = sweepGraceMinutes
		}

		collect := server.CollectFileRefs(
			repository.NewMySQLSongRepository(nil),
			repository.NewMySQLRecordingRepository(nil),
			repository.NewPodcastRepository(),
			repository.NewMySQLUserRepository(nil),
		)
		sweeper := storage.NewSweeper(store, collect, time.Duration(grace)*time.Minute)

		removed, err := sweeper.Sweep(context.Background())
		if err != nil {
			log.Fatalf("sweep failed: %v", err)
		}
		log.Printf("sweep finished: %d orphan file(s) reclaimed (mode=%s, grace=%dm)", removed, store.Mode(), grace)
	},
}

func init() {
	sweepCmd.Flags().IntVarP(&sweepGraceMinutes, "grace", "g", 0, "覆盖宽限期（分钟），0 表示使用配置值")
	rootCmd.AddCommand(sweepCmd)
}
