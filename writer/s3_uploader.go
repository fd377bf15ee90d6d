package writer

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "orbitflow/config"
	"orbitflow/logger"
)

// Uploader publishes exported artifacts (binary tables, sample dumps, the
// manifest) to an S3 bucket so build pipelines can pull ephemeris assets
// without access to the export host.
type Uploader struct {
	config   *appconfig.Config
	s3Client *s3.Client
	bucket   string
	prefix   string
	log      *logger.Log
}

// NewUploader creates an S3 uploader from the storage configuration. It
// validates that credentials resolve before the export starts, so a
// misconfigured run fails before any Horizons traffic.
func NewUploader(cfg *appconfig.Config) (*Uploader, error) {
	log := logger.GetLogger()
	ctx := context.Background()

	// Configure AWS options
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Storage.S3.Region),
	}
	if cfg.Storage.S3.AccessKeyID != "" && cfg.Storage.S3.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Storage.S3.AccessKeyID,
				cfg.Storage.S3.SecretAccessKey,
				"",
			),
		))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.WithComponent("s3_uploader").WithError(err).Warn("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	// Validate credentials
	creds, err := awsConfig.Credentials.Retrieve(ctx)
	if err != nil || !creds.HasKeys() {
		return nil, fmt.Errorf("aws credentials not found")
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Storage.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.S3.Endpoint)
		}
		o.UsePathStyle = cfg.Storage.S3.PathStyle
	})

	uploader := &Uploader{
		config:   cfg,
		s3Client: s3Client,
		bucket:   cfg.Storage.S3.Bucket,
		prefix:   cfg.Storage.S3.Prefix,
		log:      log,
	}

	log.WithComponent("s3_uploader").WithFields(logger.Fields{
		"bucket":     cfg.Storage.S3.Bucket,
		"region":     cfg.Storage.S3.Region,
		"endpoint":   cfg.Storage.S3.Endpoint,
		"path_style": cfg.Storage.S3.PathStyle,
		"prefix":     cfg.Storage.S3.Prefix,
	}).Info("s3 uploader initialized")

	return uploader, nil
}

// UploadFile puts one local artifact under the configured prefix, keyed by
// its base name.
func (u *Uploader) UploadFile(ctx context.Context, localPath string) error {
	key := path.Join(u.prefix, filepath.Base(localPath))

	log := u.log.WithComponent("s3_uploader").WithFields(logger.Fields{
		"bucket": u.bucket,
		"s3_key": key,
	})

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s for upload: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	_, err = u.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		log.WithError(err).WithEnv("S3_BUCKET").Error("failed to upload artifact")
		return fmt.Errorf("failed to upload %s to s3://%s/%s: %w", localPath, u.bucket, key, err)
	}

	log.WithFields(logger.Fields{"file_size": info.Size()}).Info("artifact uploaded")
	return nil
}
