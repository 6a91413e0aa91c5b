package backup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// FileSink writes backups into a local directory.
type FileSink struct {
	Dir string
}

// Write replaces <Dir>/<name> through a temp file and rename.
func (f FileSink) Write(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(f.Dir, 0o700); err != nil {
		return "", err
	}
	p := filepath.Join(f.Dir, name)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return p, nil
}

// PutObjectAPI is the part of *s3.Client used by S3Sink.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads backups to a bucket under prefix/YYYY/MM/DD/.
type S3Sink struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Sink constructs a sink over client.
func NewS3Sink(client PutObjectAPI, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// Key returns the object key for name at t.
func (s *S3Sink) Key(name string, t time.Time) string {
	t = t.UTC()
	stamped := fmt.Sprintf("%s-%s", t.Format("150405"), name)
	return path.Join(s.prefix, t.Format("2006/01/02"), stamped)
}

// Write uploads data and returns the s3:// location.
func (s *S3Sink) Write(ctx context.Context, name string, data []byte) (string, error) {
	key := s.Key(name, s.now())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", err
	}
	return "s3://" + s.bucket + "/" + key, nil
}

// S3Config describes an S3-compatible endpoint. Empty credentials fall back to the
// default AWS credential chain.
type S3Config struct {
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix"`
}

// NewS3Client builds an S3 client for cfg. A custom endpoint switches to path-style
// addressing, which MinIO expects.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
