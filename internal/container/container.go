package container

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pothole-vision/config"
	app "pothole-vision/internal/application"
	"pothole-vision/internal/domain/detect"
	"pothole-vision/internal/domain/port"
	"pothole-vision/internal/infrastructure/geo"
	"pothole-vision/internal/infrastructure/storage"
	"pothole-vision/internal/infrastructure/video"
	"pothole-vision/internal/infrastructure/vision"
	"pothole-vision/internal/infrastructure/vision/onnx"
)

const geocodeTimeout = 10 * time.Second

type Container struct {
	UserService      *app.UserService
	DetectionService *app.DetectionService

	// FilesDir: каталог локального хранилища, пустой при загрузке в S3.
	FilesDir string

	detector port.Detector
	pool     *app.WorkerPool
	logger   *zap.SugaredLogger
}

// New собирает все компоненты один раз. Если модель не загрузилась, сервис всё равно
// стартует, а каждый запрос получает ErrModelUnavailable.
func New(cfg *config.Config, logger *zap.SugaredLogger) (*Container, error) {
	thresholds := detect.Thresholds{Confidence: cfg.ConfThreshold, IoU: cfg.IoUThreshold}

	detector := newDetector(cfg, thresholds, logger)

	annotator, err := vision.NewAnnotator()
	if err != nil {
		detector.Close()
		return nil, err
	}

	videoCodec, err := video.NewCodec(cfg.VideoBackend, logger)
	if err != nil {
		detector.Close()
		return nil, err
	}

	uploader, filesDir, err := newUploader(cfg, logger)
	if err != nil {
		detector.Close()
		return nil, err
	}

	var geocoder port.Geocoder
	if cfg.DaDataAPIKey != "" {
		geocoder = geo.NewCache(geo.NewDaData(cfg.GeocodeURL, cfg.DaDataAPIKey, geocodeTimeout), cfg.GeocodeCacheSize)
	} else {
		logger.Warn("DADATA_API_KEY is not set, addresses will not be resolved")
	}

	pool := app.NewWorkerPool(cfg.Workers, cfg.WorkerQueue, logger)
	images := app.NewImagePipeline(detector, annotator, vision.NewImageCodec(), pool, thresholds, cfg.InferenceTimeout)
	batch := app.NewBatchOrchestrator(images, uploader, logger)
	videos := app.NewVideoPipeline(images, videoCodec, logger)

	userRepo := storage.NewMemoryUserRepository()

	return &Container{
		UserService:      app.NewUserService(userRepo),
		DetectionService: app.NewDetectionService(images, batch, videos, uploader, geocoder, logger),
		FilesDir:         filesDir,
		detector:         detector,
		pool:             pool,
		logger:           logger,
	}, nil
}

// Close останавливает пул и освобождает модель.
func (c *Container) Close() error {
	return multierr.Combine(
		c.pool.Close(),
		c.detector.Close(),
	)
}

func newDetector(cfg *config.Config, thresholds detect.Thresholds, logger *zap.SugaredLogger) port.Detector {
	switch cfg.Detector {
	case config.DetectorRemote:
		d := vision.NewRemoteDetector(cfg.InferenceURL, thresholds, cfg.ImageSize, cfg.InferenceTimeout)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.CheckHealth(ctx); err != nil {
			logger.Warnf("ML service not available: %v", err)
		}
		logger.Infof("using remote detector at %s", cfg.InferenceURL)
		return d

	default:
		d, err := onnx.NewDetector(onnx.Options{
			ModelPath:     cfg.ModelPath,
			CardPath:      cfg.ModelMetaPath,
			LibraryPath:   cfg.ONNXLibraryPath,
			ImageSize:     cfg.ImageSize,
			MinConfidence: thresholds.Confidence,
		}, logger)
		if err != nil {
			logger.Errorf("model failed to load, detection is disabled: %v", err)
			return vision.Unavailable(err)
		}
		return d
	}
}

func newUploader(cfg *config.Config, logger *zap.SugaredLogger) (port.Uploader, string, error) {
	if cfg.S3Bucket != "" {
		u, err := storage.NewS3Uploader(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, "", fmt.Errorf("init s3 uploader: %w", err)
		}
		logger.Infof("uploading results to s3 bucket %s", cfg.S3Bucket)
		return u, "", nil
	}

	u, err := storage.NewLocalUploader(cfg.UploadDir, cfg.UploadURL)
	if err != nil {
		return nil, "", fmt.Errorf("init local uploader: %w", err)
	}
	logger.Infof("S3 is not configured, storing results in %s", cfg.UploadDir)
	return u, u.Dir(), nil
}
