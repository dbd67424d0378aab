package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"KaraFM/config"
	"KaraFM/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore 将上传文件写入 MinIO 对象存储
// 对象按 kind 前缀分目录：audio/、recordings/、images/、podcasts/
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStore 初始化 MinIO 客户端并确保存储桶存在
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return nil, fmt.Errorf("创建存储桶失败: %w", err)
		}
		logger.Info("created bucket", logger.String("bucket", cfg.MinioBucket))
	}

	publicURL := strings.TrimSuffix(cfg.MinioPublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
	}

	return &MinioStore{client: client, bucket: cfg.MinioBucket, publicURL: publicURL}, nil
}

func (s *MinioStore) Mode() string { return config.StorageModeCloud }

// Client exposes the underlying client for the ops command and the proxy
// handler.
func (s *MinioStore) Client() *minio.Client { return s.client }

// Bucket returns the configured bucket name.
func (s *MinioStore) Bucket() string { return s.bucket }

func (s *MinioStore) objectKey(kind FileKind, name string) string {
	return kind.String() + "/" + name
}

// Upload pushes the object and records its absolute public URL. PutObject is
// atomic on the server side, so no staging step is needed here.
func (s *MinioStore) Upload(ctx context.Context, kind FileKind, originalName, contentType string, r io.Reader, size int64) (*StoredFile, error) {
	name := GenerateFileName(originalName)
	key := s.objectKey(kind, name)

	opts := minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: true,
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, opts); err != nil {
		return nil, fmt.Errorf("failed to upload %s to MinIO: %w", key, err)
	}

	return &StoredFile{
		Kind: kind,
		Name: name,
		URL:  s.publicURL + "/" + key,
	}, nil
}

// ResolveURL is a pure function of the stored result recorded at upload time.
func (s *MinioStore) ResolveURL(f *StoredFile) string { return f.URL }

// Delete derives the object key from the URL's last two path segments
// (<kind>/<name>) and issues a remote delete. NoSuchKey counts as success.
func (s *MinioStore) Delete(ctx context.Context, rawURL string) error {
	key, err := s.keyForURL(rawURL)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("failed to delete %s from MinIO: %w", key, err)
	}
	logger.Debug("deleted object", logger.String("key", key))
	return nil
}

func (s *MinioStore) keyForURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid stored file url %q: %w", rawURL, err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return "", fmt.Errorf("url %q does not contain an object key", rawURL)
	}
	return strings.Join(segments[len(segments)-2:], "/"), nil
}
