package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"pothole-vision/internal/domain/port"
)

// LocalUploader сохраняет файлы на диск и отдаёт ссылку относительно baseURL.
// Используется, когда S3 не настроен.
type LocalUploader struct {
	dir     string
	baseURL string
}

func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload пишет файл в dir/folder/filename.
func (u *LocalUploader) Upload(ctx context.Context, data []byte, folder, filename, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := objectKey(folder, filename)
	target := filepath.Join(u.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}

	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return u.baseURL + "/" + strings.Join(parts, "/"), nil
}

// Dir возвращает корень хранилища, чтобы HTTP-сервер мог раздавать файлы.
func (u *LocalUploader) Dir() string {
	return u.dir
}

var _ port.Uploader = (*LocalUploader)(nil)
