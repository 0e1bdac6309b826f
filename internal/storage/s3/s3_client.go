package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"fisbench/internal/config"
	"fisbench/internal/domain"
	"fisbench/internal/port"
)

// Key prefixes for stored receipt images.
const (
	PrefixAnalyses = "analyses"
	PrefixOriginal = "receipts/original"
	PrefixCropped  = "receipts/cropped"
)

// SigV4 presigned URLs live between one minute and seven days.
const (
	minPresignExpiry = time.Minute
	maxPresignExpiry = 7 * 24 * time.Hour
)

// ObjectKey builds "<prefix>/<id><ext>", normalizing ext to start with a dot.
func ObjectKey(prefix, id, ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(prefix, id+ext)
}

// PresignExpiry clamps a configured expiry in seconds to what S3 accepts.
func PresignExpiry(seconds int64) time.Duration {
	d := time.Duration(seconds) * time.Second
	switch {
	case d < minPresignExpiry:
		return minPresignExpiry
	case d > maxPresignExpiry:
		return maxPresignExpiry
	}
	return d
}

// store keeps receipt images in S3 or an S3-compatible server.
type store struct {
	api       *s3.Client
	presigner *s3.PresignClient
	uploader  *manager.Uploader
}

// NewS3Client builds the receipt image store. Static keys are optional; the
// default AWS credential chain applies otherwise. An endpoint (MinIO,
// LocalStack) turns on path-style addressing.
func NewS3Client(ctx context.Context, cfg *config.S3Config) (port.ObjectStorage, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &store{
		api:       api,
		presigner: s3.NewPresignClient(api),
		uploader:  manager.NewUploader(api),
	}, nil
}

func (s *store) Upload(ctx context.Context, in port.UploadInput) (*port.UploadOutput, error) {
	res, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(in.Bucket),
		Key:         aws.String(in.Key),
		Body:        in.Body,
		ContentType: aws.String(in.ContentType),
		Metadata:    map[string]string{"source": "fisbench"},
	})
	if err != nil {
		return nil, fmt.Errorf("storing %s: %w", in.Key, err)
	}
	return &port.UploadOutput{Location: res.Location, ETag: aws.ToString(res.ETag)}, nil
}

// Download reads a whole image. A missing key is domain.ErrNotFound.
func (s *store) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	res, err := s.api.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("image %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("fetching %s: %w", key, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

// Delete removes key. S3 treats deleting a missing key as success.
func (s *store) Delete(ctx context.Context, bucket, key string) error {
	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (s *store) GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)},
		s3.WithPresignExpires(PresignExpiry(expirySeconds)))
	if err != nil {
		return "", fmt.Errorf("presigning %s: %w", key, err)
	}
	return req.URL, nil
}
