package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"pothole-vision/internal/domain/port"
)

// S3Config содержит параметры S3-совместимого хранилища.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// S3Uploader кладёт результаты в бакет и отдаёт ссылку вида endpoint/bucket/key.
type S3Uploader struct {
	client   s3iface.S3API
	bucket   string
	endpoint string
}

// NewS3Uploader создаёт клиента S3 со статическими ключами.
func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}

	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	return newS3Uploader(s3.New(sess), cfg.Bucket, cfg.Endpoint), nil
}

func newS3Uploader(client s3iface.S3API, bucket, endpoint string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, endpoint: endpoint}
}

// Upload загружает объект folder/filename. Повторных попыток нет.
func (u *S3Uploader) Upload(ctx context.Context, data []byte, folder, filename, contentType string) (string, error) {
	key := objectKey(folder, filename)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	sum := md5.Sum(data)
	_, err := u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ContentMD5:  aws.String(base64.StdEncoding.EncodeToString(sum[:])),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.endpoint, "/"), u.bucket, key), nil
}

func objectKey(folder, filename string) string {
	return path.Join(strings.Trim(folder, "/"), path.Base(filename))
}

var _ port.Uploader = (*S3Uploader)(nil)
