package cmd

import (
	"context"
	"fmt"
	"log"

	"KaraFM/config"
	"KaraFM/storage"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
)

var (
	storagePrefix string
	storageStats  bool
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "对象存储管理",
	Long:  `查看和管理对象存储桶中的媒体文件，支持按前缀列出文件和查看统计信息。`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		cfg.StorageMode = config.StorageModeCloud
		if err := cfg.Validate(); err != nil {
			log.Fatalf("存储配置无效: %v", err)
		}

		store, err := storage.NewMinioStore(cfg)
		if err != nil {
			log.Fatalf("无法连接到对象存储: %v", err)
		}
		fmt.Printf("已连接: %s, Bucket: %s\n", cfg.MinioEndpoint, store.Bucket())

		ctx := context.Background()
		objects := store.Client().ListObjects(ctx, store.Bucket(), minio.ListObjectsOptions{
			Prefix:    storagePrefix,
			Recursive: true,
		})

		var count int
		var totalSize int64
		for object := range objects {
			if object.Err != nil {
				log.Fatalf("列出文件失败: %v", object.Err)
			}
			count++
			totalSize += object.Size
			if !storageStats {
				fmt.Printf("%10d  %s  %s\n", object.Size, object.LastModified.Format("2006-01-02 15:04:05"), object.Key)
			}
		}

		fmt.Printf("\n共 %d 个文件, 总大小 %.2f MB\n", count, float64(totalSize)/(1<<20))
	},
}

func init() {
	storageCmd.Flags().StringVarP(&storagePrefix, "prefix", "p", "", "对象前缀 (audio/, recordings/, images/, podcasts/)")
	storageCmd.Flags().BoolVarP(&storageStats, "stats", "s", false, "只显示统计信息")
	rootCmd.AddCommand(storageCmd)
}
