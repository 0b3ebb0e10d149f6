package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pothole-vision/internal/domain/detect"
	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/domain/port"
)

// RemoteDetector обращается к внешнему сервису инференса, который сам делает resize и NMS.
// Пороги передаются сервису параметрами запроса.
type RemoteDetector struct {
	url        string
	client     *http.Client
	thresholds detect.Thresholds
	imageSize  int
	codec      *ImageCodec
}

// remoteBox: рамка в координатах отправленного изображения.
type remoteBox struct {
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Confidence float64 `json:"confidence"`
}

type remoteResponse struct {
	Detections []remoteBox `json:"detections"`
}

// NewRemoteDetector создаёт адаптер к сервису по адресу inferenceURL (обычно .../predict).
func NewRemoteDetector(inferenceURL string, thresholds detect.Thresholds, imageSize int, timeout time.Duration) *RemoteDetector {
	return &RemoteDetector{
		url:        inferenceURL,
		client:     &http.Client{Timeout: timeout},
		thresholds: thresholds,
		imageSize:  imageSize,
		codec:      NewImageCodec(),
	}
}

// Predict отправляет уменьшенное изображение и возвращает рамки с масштабом для обратного перевода.
func (d *RemoteDetector) Predict(ctx context.Context, img image.Image) (*entity.Prediction, error) {
	scaled, mapping := Downscale(img, d.imageSize)

	encoded, err := d.codec.Encode(scaled)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(encoded); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}

	fields := map[string]string{
		"conf":  strconv.FormatFloat(d.thresholds.Confidence, 'f', -1, 64),
		"iou":   strconv.FormatFloat(d.thresholds.IoU, 'f', -1, 64),
		"imgsz": strconv.Itoa(d.imageSize),
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	raw := make([]entity.RawDetection, 0, len(result.Detections))
	for _, b := range result.Detections {
		raw = append(raw, entity.RawDetection{
			Box:        entity.Box{X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: b.Y2},
			Confidence: b.Confidence,
		})
	}

	return &entity.Prediction{Detections: raw, Mapping: mapping}, nil
}

// CheckHealth проверяет доступность сервиса инференса.
func (d *RemoteDetector) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, HealthURL(d.url), nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ml service unhealthy: %d", resp.StatusCode)
	}
	return nil
}

// Close закрывает простаивающие keep-alive соединения клиента. Детектор остаётся рабочим.
func (d *RemoteDetector) Close() error {
	d.client.CloseIdleConnections()
	return nil
}

// HealthURL строит адрес проверки здоровья рядом с адресом предсказаний.
func HealthURL(inferenceURL string) string {
	base := strings.TrimRight(inferenceURL, "/")
	base = strings.TrimSuffix(base, "/predict")
	return base + "/health"
}

var _ port.Detector = (*RemoteDetector)(nil)
