// Package rest реализует HTTP API для веб-клиентов и мини-приложения.
package rest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"go.uber.org/zap"

	app "pothole-vision/internal/application"
	"pothole-vision/internal/domain/entity"
)

// DetectionService описывает то, что API требует от слоя приложения.
type DetectionService interface {
	DetectImage(ctx context.Context, req app.ImageRequest) (*entity.ImageReport, error)
	DetectImages(ctx context.Context, req app.BatchRequest) (*entity.BatchReport, error)
	DetectVideo(ctx context.Context, req app.VideoRequest) (*entity.VideoReport, error)
}

// Limits задаёт ограничения на размер входных данных.
type Limits struct {
	MaxImageBytes  int64
	MaxVideoBytes  int64
	MaxBatchImages int
}

type imageInput struct {
	ImageBase64 string `json:"image_base64"`
	UserID      string `json:"user_id"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	Filename    string `json:"filename"`
}

type imagesInput struct {
	ImagesBase64 []string `json:"images_base64"`
	UserID       string   `json:"user_id"`
	Latitude     string   `json:"latitude"`
	Longitude    string   `json:"longitude"`
	Filenames    []string `json:"filenames"`
}

type videoInput struct {
	VideoBase64 string `json:"video_base64"`
	UserID      string `json:"user_id"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	Filename    string `json:"filename"`
}

// badRequest означает ошибку валидации входа, она отдаётся клиенту как 400.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

type Handler struct {
	service DetectionService
	limits  Limits
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewHandler(service DetectionService, limits Limits, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		service: service,
		limits:  limits,
		logger:  logger,
		now:     time.Now,
	}
}

// Routes регистрирует маршруты API. filesDir, если не пуст, раздаётся по /files/.
func (h *Handler) Routes(filesDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/detect/image", h.DetectImage)
	mux.HandleFunc("POST /api/detect/images", h.DetectImages)
	mux.HandleFunc("POST /api/detect/video", h.DetectVideo)
	mux.HandleFunc("GET /health", h.Health)
	if filesDir != "" {
		mux.Handle("GET /files/", http.StripPrefix("/files/", http.FileServer(http.Dir(filesDir))))
	}
	return mux
}

// WithCORS разрешает запросы с указанных источников.
func WithCORS(next http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(next)
}

// DetectImage обрабатывает POST /api/detect/image
func (h *Handler) DetectImage(w http.ResponseWriter, r *http.Request) {
	var in imageInput
	if err := h.decodeBody(w, r, h.limits.MaxImageBytes, &in); err != nil {
		h.fail(w, err)
		return
	}

	data, err := decodeBase64(in.ImageBase64)
	if err != nil {
		h.fail(w, invalid("Ошибка декодирования base64: %v", err))
		return
	}
	if int64(len(data)) > h.limits.MaxImageBytes {
		h.fail(w, invalid("Размер изображения превышает %d MB", h.limits.MaxImageBytes>>20))
		return
	}

	filename := in.Filename
	if filename == "" {
		filename = fmt.Sprintf("pothole_%s_%s.jpg", h.timestamp(), shortID())
	}

	report, err := h.service.DetectImage(r.Context(), app.ImageRequest{
		UserID:   in.UserID,
		Filename: filename,
		Data:     data,
		Location: entity.Location{Latitude: in.Latitude, Longitude: in.Longitude},
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	respondJSON(w, report, http.StatusOK)
}

// DetectImages обрабатывает POST /api/detect/images
func (h *Handler) DetectImages(w http.ResponseWriter, r *http.Request) {
	var in imagesInput
	limit := h.limits.MaxImageBytes * int64(max(h.limits.MaxBatchImages, 1))
	if err := h.decodeBody(w, r, limit, &in); err != nil {
		h.fail(w, err)
		return
	}

	if len(in.ImagesBase64) == 0 {
		h.fail(w, invalid("Не передано ни одного изображения"))
		return
	}
	if len(in.ImagesBase64) > h.limits.MaxBatchImages {
		h.fail(w, invalid("Максимум %d изображений", h.limits.MaxBatchImages))
		return
	}

	ts := h.timestamp()
	items := make([]entity.BatchItem, 0, len(in.ImagesBase64))
	for idx, encoded := range in.ImagesBase64 {
		data, err := decodeBase64(encoded)
		if err != nil {
			h.fail(w, invalid("Ошибка декодирования изображения %d: %v", idx+1, err))
			return
		}
		if int64(len(data)) > h.limits.MaxImageBytes {
			h.fail(w, invalid("Размер изображения %d превышает %d MB", idx+1, h.limits.MaxImageBytes>>20))
			return
		}

		filename := ""
		if idx < len(in.Filenames) {
			filename = in.Filenames[idx]
		}
		if filename == "" {
			filename = fmt.Sprintf("pothole_%s_%s_%d.jpg", ts, shortID(), idx)
		}
		items = append(items, entity.BatchItem{Data: data, Filename: filename})
	}

	report, err := h.service.DetectImages(r.Context(), app.BatchRequest{
		UserID:   in.UserID,
		Items:    items,
		Location: entity.Location{Latitude: in.Latitude, Longitude: in.Longitude},
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	respondJSON(w, report, http.StatusOK)
}

// DetectVideo обрабатывает POST /api/detect/video
func (h *Handler) DetectVideo(w http.ResponseWriter, r *http.Request) {
	var in videoInput
	if err := h.decodeBody(w, r, h.limits.MaxVideoBytes, &in); err != nil {
		h.fail(w, err)
		return
	}

	data, err := decodeBase64(in.VideoBase64)
	if err != nil {
		h.fail(w, invalid("Ошибка декодирования base64: %v", err))
		return
	}
	if int64(len(data)) > h.limits.MaxVideoBytes {
		h.fail(w, invalid("Размер видео превышает %d MB", h.limits.MaxVideoBytes>>20))
		return
	}

	filename := in.Filename
	if filename == "" {
		filename = fmt.Sprintf("pothole_video_%s_%s.mp4", h.timestamp(), shortID())
	}

	report, err := h.service.DetectVideo(r.Context(), app.VideoRequest{
		UserID:   in.UserID,
		Filename: filename,
		Data:     data,
		Location: entity.Location{Latitude: in.Latitude, Longitude: in.Longitude},
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	respondJSON(w, report, http.StatusOK)
}

// Health проверка здоровья сервиса
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// decodeBody читает JSON, ограничивая тело с учётом раздувания base64.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, payloadLimit int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, payloadLimit/3*4+1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return invalid("Слишком большой запрос")
		}
		return invalid("Некорректный JSON: %v", err)
	}
	return nil
}

// fail переводит ошибку в HTTP-статус.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Errorf("request failed: %v", err)
	}
	respondError(w, message, status)
}

func statusFor(err error) (int, string) {
	var bad *badRequest
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest, bad.msg
	case errors.Is(err, entity.ErrDecode):
		return http.StatusBadRequest, fmt.Sprintf("Не удалось прочитать файл: %v", err)
	case errors.Is(err, entity.ErrModelUnavailable):
		return http.StatusServiceUnavailable, "Модель распознавания недоступна"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Превышено время обработки"
	default:
		return http.StatusInternalServerError, fmt.Sprintf("Ошибка при обработке: %v", err)
	}
}

// decodeBase64 убирает префикс data URL и декодирует данные.
func decodeBase64(s string) ([]byte, error) {
	if _, payload, found := strings.Cut(s, ","); found {
		s = payload
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("пустые данные")
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (h *Handler) timestamp() string {
	return h.now().UTC().Format("20060102_150405")
}

func shortID() string {
	return uuid.NewString()[:8]
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}
