package s3

import (
	"context"
	"io"
	"path"
	"strconv"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/data/errors"
)

// S3Resource stores replicas as objects of an S3 compatible bucket.
type S3Resource struct {
	mu     sync.RWMutex
	name   string
	client *minio.Client
	config *S3ResourceConfig
}

// S3ResourceConfig contains configuration options for the S3 resource
type S3ResourceConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// Prefix for all object keys (optional)
	Prefix string
}

func init() {
	catalog.RegisterResource("s3", func(name string, config map[string]string) (catalog.Resource, error) {
		useSSL, _ := strconv.ParseBool(config["ssl"])
		return NewS3Resource(name, &S3ResourceConfig{
			Endpoint:  config["endpoint"],
			Bucket:    config["bucket"],
			AccessKey: config["access_key"],
			SecretKey: config["secret_key"],
			UseSSL:    useSSL,
			Prefix:    config["prefix"],
		})
	})
}

func NewS3Resource(name string, config *S3ResourceConfig) (*S3Resource, error) {
	if config == nil || config.Endpoint == "" || config.Bucket == "" {
		return nil, errors.Invalid(nil, "s3 resource requires 'endpoint' and 'bucket'")
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	return &S3Resource{
		name:   name,
		client: client,
		config: config,
	}, nil
}

func (sr *S3Resource) Name() string {
	return sr.name
}

// Open is part of the lifecycle behaviour and verifies that the bucket exists.
func (sr *S3Resource) Open(ctx context.Context) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	exists, err := sr.client.BucketExists(ctx, sr.config.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NotExist(nil, "bucket "+sr.config.Bucket)
	}
	return nil
}

func (sr *S3Resource) Close(ctx context.Context) error {
	return nil
}

func (sr *S3Resource) GetCapabilities() *catalog.BackendCapabilities {
	return &catalog.BackendCapabilities{
		Capabilities: []catalog.BackendCapability{
			catalog.CapabilityReplicas,
			catalog.CapabilityPersistent,
		},
		MaxObjectSize: 5 * 1024 * 1024 * 1024 * 1024, // 5 TB
	}
}

func (sr *S3Resource) PutReplica(ctx context.Context, key string, r io.Reader) (int64, error) {
	// Unknown size lets the client switch to multipart uploads
	info, err := sr.client.PutObject(ctx, sr.config.Bucket, sr.objectKey(key), r, -1, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

func (sr *S3Resource) GetReplica(ctx context.Context, key string) (io.ReadCloser, error) {
	if _, err := sr.StatReplica(ctx, key); err != nil {
		return nil, err
	}
	return sr.client.GetObject(ctx, sr.config.Bucket, sr.objectKey(key), minio.GetObjectOptions{})
}

func (sr *S3Resource) DeleteReplica(ctx context.Context, key string) error {
	return sr.client.RemoveObject(ctx, sr.config.Bucket, sr.objectKey(key), minio.RemoveObjectOptions{})
}

func (sr *S3Resource) StatReplica(ctx context.Context, key string) (int64, error) {
	info, err := sr.client.StatObject(ctx, sr.config.Bucket, sr.objectKey(key), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return 0, errors.NotExist(err, "replica "+key)
		}
		return 0, err
	}
	return info.Size, nil
}

func (sr *S3Resource) objectKey(key string) string {
	if sr.config.Prefix == "" {
		return key
	}
	return path.Join(sr.config.Prefix, key)
}

var _ catalog.Resource = (*S3Resource)(nil)
