package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Стратегии детектора.
const (
	DetectorONNX   = "onnx"
	DetectorRemote = "remote"
)

type Config struct {
	HTTPAddr      string
	TelegramToken string

	Detector         string // onnx | remote
	ModelPath        string
	ModelMetaPath    string // карточка модели в YAML, необязательна
	ONNXLibraryPath  string
	InferenceURL     string
	ConfThreshold    float64
	IoUThreshold     float64
	ImageSize        int
	Workers          int
	WorkerQueue      int
	InferenceTimeout time.Duration
	VideoBackend     string // ffmpeg | gocv

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	UploadDir   string
	UploadURL   string

	DaDataAPIKey     string
	GeocodeURL       string
	GeocodeCacheSize int

	LogLevel    string
	LogFile     string
	CORSOrigins []string

	MaxImageBytes  int64
	MaxVideoBytes  int64
	MaxBatchImages int
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8005"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),

		Detector:         strings.ToLower(getEnv("DETECTOR", DetectorONNX)),
		ModelPath:        getEnv("MODEL_PATH", filepath.Join(".", "cv_models", "best.onnx")),
		ModelMetaPath:    os.Getenv("MODEL_META_PATH"),
		ONNXLibraryPath:  os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"),
		InferenceURL:     os.Getenv("INFERENCE_URL"),
		ConfThreshold:    getEnvAsFloat("CONF_THRESHOLD", 0.15),
		IoUThreshold:     getEnvAsFloat("IOU_THRESHOLD", 0.5),
		ImageSize:        getEnvAsInt("IMAGE_SIZE", 1280),
		Workers:          getEnvAsInt("WORKERS", 4),
		WorkerQueue:      getEnvAsInt("WORKER_QUEUE", 64),
		InferenceTimeout: getEnvAsDuration("INFERENCE_TIMEOUT", 60*time.Second),
		VideoBackend:     strings.ToLower(getEnv("VIDEO_BACKEND", "ffmpeg")),

		S3Endpoint:  os.Getenv("S3_ENDPOINT_URL"),
		S3Region:    getEnv("S3_REGION_NAME", "ru-central1"),
		S3Bucket:    os.Getenv("S3_BUCKET_NAME"),
		S3AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		S3SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		UploadDir:   getEnv("UPLOAD_DIR", filepath.Join(".", "uploads")),
		UploadURL:   getEnv("UPLOAD_BASE_URL", "http://localhost:8005/files"),

		DaDataAPIKey:     os.Getenv("DADATA_API_KEY"),
		GeocodeURL:       os.Getenv("GEOCODE_URL"),
		GeocodeCacheSize: getEnvAsInt("GEOCODE_CACHE_SIZE", 1024),

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     os.Getenv("LOG_FILE"),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),

		MaxImageBytes:  getEnvAsInt64("MAX_IMAGE_MB", 10) << 20,
		MaxVideoBytes:  getEnvAsInt64("MAX_VIDEO_MB", 100) << 20,
		MaxBatchImages: getEnvAsInt("MAX_BATCH_IMAGES", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет диапазоны значений.
func (c *Config) Validate() error {
	var errs []error

	switch c.Detector {
	case DetectorONNX:
	case DetectorRemote:
		if c.InferenceURL == "" {
			errs = append(errs, errors.New("INFERENCE_URL is required for remote detector"))
		}
	default:
		errs = append(errs, fmt.Errorf("DETECTOR must be %q or %q, got %q", DetectorONNX, DetectorRemote, c.Detector))
	}

	if c.ConfThreshold < 0 || c.ConfThreshold >= 1 {
		errs = append(errs, fmt.Errorf("CONF_THRESHOLD must be in [0,1), got %v", c.ConfThreshold))
	}
	if c.IoUThreshold <= 0 || c.IoUThreshold > 1 {
		errs = append(errs, fmt.Errorf("IOU_THRESHOLD must be in (0,1], got %v", c.IoUThreshold))
	}
	if c.ImageSize < 32 {
		errs = append(errs, fmt.Errorf("IMAGE_SIZE must be at least 32, got %d", c.ImageSize))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("WORKERS must be positive, got %d", c.Workers))
	}
	if c.WorkerQueue < 0 {
		errs = append(errs, fmt.Errorf("WORKER_QUEUE must not be negative, got %d", c.WorkerQueue))
	}
	if c.InferenceTimeout < 0 {
		errs = append(errs, fmt.Errorf("INFERENCE_TIMEOUT must not be negative, got %s", c.InferenceTimeout))
	}
	if c.GeocodeCacheSize < 1 {
		errs = append(errs, fmt.Errorf("GEOCODE_CACHE_SIZE must be positive, got %d", c.GeocodeCacheSize))
	}
	if c.MaxImageBytes <= 0 || c.MaxVideoBytes <= 0 {
		errs = append(errs, errors.New("MAX_IMAGE_MB and MAX_VIDEO_MB must be positive"))
	}
	if c.MaxBatchImages < 1 {
		errs = append(errs, fmt.Errorf("MAX_BATCH_IMAGES must be positive, got %d", c.MaxBatchImages))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsDuration понимает и "90s", и просто число секунд.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
