package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/domain/port"
)

// ImageRequest: одно изображение и данные о месте съёмки.
type ImageRequest struct {
	UserID   string
	Filename string
	Data     []byte
	Location entity.Location
}

// BatchRequest: пакет изображений с общей геопозицией.
type BatchRequest struct {
	UserID   string
	Items    []entity.BatchItem
	Location entity.Location
}

// VideoRequest: видео и данные о месте съёмки.
type VideoRequest struct {
	UserID   string
	Filename string
	Data     []byte
	Location entity.Location
}

// DetectionService собирает полный ответ: анализ, загрузка результата и адрес.
type DetectionService struct {
	images   *ImagePipeline
	batch    *BatchOrchestrator
	videos   *VideoPipeline
	uploader port.Uploader
	geocoder port.Geocoder
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewDetectionService создаёт сервис. geocoder может быть nil, тогда адрес не определяется.
func NewDetectionService(
	images *ImagePipeline,
	batch *BatchOrchestrator,
	videos *VideoPipeline,
	uploader port.Uploader,
	geocoder port.Geocoder,
	logger *zap.SugaredLogger,
) *DetectionService {
	return &DetectionService{
		images:   images,
		batch:    batch,
		videos:   videos,
		uploader: uploader,
		geocoder: geocoder,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// DetectImage обрабатывает одно изображение. Ошибка загрузки делает запрос неуспешным,
// ошибка геокодирования только оставляет адрес пустым.
func (s *DetectionService) DetectImage(ctx context.Context, req ImageRequest) (*entity.ImageReport, error) {
	result, err := s.images.ProcessImage(ctx, req.Data)
	if err != nil {
		return nil, err
	}

	url, err := s.upload(ctx, result.Annotated, ImagesFolder, req.Filename, "image/jpeg")
	if err != nil {
		return nil, err
	}

	s.logger.Infof("image %s: %d potholes, max risk %.1f", req.Filename, result.Counts.Total(), result.MaxRisk())

	return &entity.ImageReport{
		UserID:        req.UserID,
		Filename:      req.Filename,
		Detections:    result.Counts,
		AverageRisk:   result.AverageRisk(),
		MaxRisk:       result.MaxRisk(),
		TotalPotholes: result.Counts.Total(),
		Priority:      entity.PriorityFor(result.Counts, result.MaxRisk()),
		ImageURL:      url,
		Address:       s.address(ctx, req.Location),
		Latitude:      req.Location.Latitude,
		Longitude:     req.Location.Longitude,
		ProcessedAt:   s.now(),
		Annotated:     result.Annotated,
	}, nil
}

// DetectImages обрабатывает пакет; отдельные ошибки попадают в результаты элементов.
func (s *DetectionService) DetectImages(ctx context.Context, req BatchRequest) (*entity.BatchReport, error) {
	results := s.batch.Process(ctx, req.Items)
	successful, failed := Summary(results)

	reports := make([]entity.BatchImageReport, 0, len(results))
	for _, r := range results {
		reports = append(reports, entity.NewBatchImageReport(r))
	}

	s.logger.Infof("batch of %d images: %d successful, %d failed", len(req.Items), successful, failed)

	return &entity.BatchReport{
		UserID:      req.UserID,
		TotalImages: len(req.Items),
		Successful:  successful,
		Failed:      failed,
		Results:     reports,
		Address:     s.address(ctx, req.Location),
		Latitude:    req.Location.Latitude,
		Longitude:   req.Location.Longitude,
		ProcessedAt: s.now(),
	}, nil
}

// DetectVideo обрабатывает видео целиком.
func (s *DetectionService) DetectVideo(ctx context.Context, req VideoRequest) (*entity.VideoReport, error) {
	result, err := s.videos.Process(ctx, req.Data)
	if err != nil {
		return nil, err
	}

	url, err := s.upload(ctx, result.Video, VideosFolder, req.Filename, "video/mp4")
	if err != nil {
		return nil, err
	}

	return &entity.VideoReport{
		UserID:          req.UserID,
		Filename:        req.Filename,
		TotalFrames:     result.TotalFrames,
		ProcessedFrames: result.ProcessedFrames,
		Detections:      result.Counts,
		AverageRisk:     result.AverageRisk(),
		MaxRisk:         result.MaxRisk(),
		TotalPotholes:   result.Counts.Total(),
		Priority:        entity.PriorityFor(result.Counts, result.MaxRisk()),
		DurationSeconds: result.DurationSeconds(),
		VideoURL:        url,
		Address:         s.address(ctx, req.Location),
		Latitude:        req.Location.Latitude,
		Longitude:       req.Location.Longitude,
		ProcessedAt:     s.now(),
		Video:           result.Video,
	}, nil
}

func (s *DetectionService) upload(ctx context.Context, data []byte, folder, filename, contentType string) (string, error) {
	if s.uploader == nil {
		return "", nil
	}
	url, err := s.uploader.Upload(ctx, data, folder, filename, contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrUpload, err)
	}
	return url, nil
}

// address возвращает nil при любой проблеме: нет геокодера, кривые координаты, ошибка сервиса.
func (s *DetectionService) address(ctx context.Context, loc entity.Location) *string {
	if s.geocoder == nil {
		return nil
	}
	lat, lon, ok := ParseCoordinates(loc)
	if !ok {
		return nil
	}

	addr, err := s.geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		s.logger.Warnf("reverse geocode %s,%s: %v", loc.Latitude, loc.Longitude, err)
		return nil
	}
	if addr == "" {
		return nil
	}
	return &addr
}

// ParseCoordinates разбирает десятичные широту и долготу. Допускается запятая вместо точки.
func ParseCoordinates(loc entity.Location) (lat, lon float64, ok bool) {
	parse := func(s string) (float64, bool) {
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		if s == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(s, 64)
		return v, err == nil
	}

	lat, okLat := parse(loc.Latitude)
	lon, okLon := parse(loc.Longitude)
	if !okLat || !okLon || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}
