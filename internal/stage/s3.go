package stage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Publisher uploads artifacts to an S3 bucket prefix.
type s3Publisher struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
	logger   *slog.Logger
}

// newS3Publisher parses "bucket/prefix" and builds an uploader from the
// ambient AWS configuration (environment, shared config, instance role).
func newS3Publisher(rest string, logger *slog.Logger) (*s3Publisher, error) {
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return nil, fmt.Errorf("stage: s3 destination needs a bucket")
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("stage: load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)

	return &s3Publisher{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
		logger:   logger.With("component", "stage"),
	}, nil
}

func (p *s3Publisher) Publish(ctx context.Context, srcPath string) (string, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("stage: open %s: %w", srcPath, err)
	}
	defer f.Close()

	key := path.Join(p.prefix, path.Base(srcPath))
	p.logger.Debug("upload", "bucket", p.bucket, "key", key)

	_, err = p.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("stage: upload s3://%s/%s: %w", p.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", p.bucket, key), nil
}
