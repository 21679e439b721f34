package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/laneguardian/laneguardian/internal/logger"
)

// ErrNotFound is returned when a requested object does not exist.
var ErrNotFound = errors.New("object not found")

// Client wraps MinIO for the two things the bot stores remotely:
// synthesized audio clips shared across instances, and guild settings
// backups.
type Client struct {
	mc           *minio.Client
	audioBucket  string
	backupBucket string
}

// Config holds MinIO connection settings
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// NewClient creates a new storage client
func NewClient(cfg Config) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	c := &Client{
		mc:           mc,
		audioBucket:  "laneguardian-audio",
		backupBucket: "laneguardian-backups",
	}

	return c, nil
}

// Init creates required buckets if they don't exist
func (c *Client) Init(ctx context.Context) error {
	buckets := []string{c.audioBucket, c.backupBucket}

	for _, bucket := range buckets {
		exists, err := c.mc.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}

		if !exists {
			if err := c.mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
			logger.Info("bucket created", "bucket", bucket)
		}
	}

	return nil
}

// PutAudio stores a synthesized clip under its cache key.
func (c *Client) PutAudio(ctx context.Context, key string, data []byte) error {
	_, err := c.mc.PutObject(ctx, c.audioBucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "audio/mpeg",
	})
	if err != nil {
		return fmt.Errorf("upload audio %s: %w", key, err)
	}

	logger.Debug("audio uploaded", "key", key, "size", len(data))
	return nil
}

// GetAudio fetches a clip by cache key. A cache miss is ErrNotFound.
func (c *Client) GetAudio(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.mc.GetObject(ctx, c.audioBucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get audio %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, fmt.Errorf("audio %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("read audio %s: %w", key, err)
	}

	return data, nil
}

// UploadBackup stores one settings snapshot.
func (c *Client) UploadBackup(ctx context.Context, name string, data []byte) error {
	_, err := c.mc.PutObject(ctx, c.backupBucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("upload backup %s: %w", name, err)
	}

	logger.Info("settings backup uploaded", "name", name, "size", len(data))
	return nil
}

// ObjectInfo represents a stored object
type ObjectInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// ListBackups lists stored settings snapshots.
func (c *Client) ListBackups(ctx context.Context) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	for obj := range c.mc.ListObjects(ctx, c.backupBucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list backups: %w", obj.Err)
		}

		objects = append(objects, ObjectInfo{
			Name:    obj.Key,
			Size:    obj.Size,
			ModTime: obj.LastModified,
		})
	}

	return objects, nil
}

// DeleteBackup removes one settings snapshot.
func (c *Client) DeleteBackup(ctx context.Context, name string) error {
	if err := c.mc.RemoveObject(ctx, c.backupBucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete backup %s: %w", name, err)
	}
	return nil
}

// AudioBucket returns the audio bucket name
func (c *Client) AudioBucket() string {
	return c.audioBucket
}

// BackupBucket returns the backup bucket name
func (c *Client) BackupBucket() string {
	return c.backupBucket
}

// Healthy checks if MinIO is reachable
func (c *Client) Healthy(ctx context.Context) bool {
	_, err := c.mc.BucketExists(ctx, c.audioBucket)
	return err == nil
}
