package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"ai-pulse/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// putObjectAPI 便于测试替换
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader 上传到S3或兼容存储, 凭证走AWS默认链
type S3Uploader struct {
	client putObjectAPI
	bucket string
	key    string
}

func NewS3Uploader(ctx context.Context, cfg config.S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Uploader(client, cfg), nil
}

func newS3Uploader(client putObjectAPI, cfg config.S3Config) *S3Uploader {
	key := cfg.Key
	if key == "" {
		key = "data.json"
	}
	return &S3Uploader{client: client, bucket: cfg.Bucket, key: key}
}

func (u *S3Uploader) Upload(ctx context.Context, body []byte) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(u.key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("max-age=300"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", u.bucket, u.key, err)
	}
	return nil
}
