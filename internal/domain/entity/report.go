package entity

import "time"

// Location хранит координаты, переданные клиентом, в исходном строковом виде.
type Location struct {
	Latitude  string
	Longitude string
}

// ImageReport: ответ на обработку одного изображения.
type ImageReport struct {
	UserID        string         `json:"user_id"`
	Filename      string         `json:"filename"`
	Detections    SeverityCounts `json:"detections"`
	AverageRisk   float64        `json:"average_risk"`
	MaxRisk       float64        `json:"max_risk"`
	TotalPotholes int            `json:"total_potholes"`
	Priority      Priority       `json:"priority"`
	ImageURL      string         `json:"image_url"`
	Address       *string        `json:"address"`
	Latitude      string         `json:"latitude"`
	Longitude     string         `json:"longitude"`
	ProcessedAt   time.Time      `json:"processed_at"`

	// Annotated нужен боту, чтобы отправить картинку без повторного скачивания.
	Annotated []byte `json:"-"`
}

// BatchImageReport: результат одного изображения внутри пакета.
type BatchImageReport struct {
	Filename      string         `json:"filename"`
	Index         int            `json:"index"`
	Detections    SeverityCounts `json:"detections"`
	AverageRisk   float64        `json:"average_risk"`
	MaxRisk       float64        `json:"max_risk"`
	TotalPotholes int            `json:"total_potholes"`
	ImageURL      *string        `json:"image_url"`
	Error         *string        `json:"error"`
}

// BatchReport: ответ на обработку пакета изображений.
type BatchReport struct {
	UserID      string             `json:"user_id"`
	TotalImages int                `json:"total_images"`
	Successful  int                `json:"successful"`
	Failed      int                `json:"failed"`
	Results     []BatchImageReport `json:"results"`
	Address     *string            `json:"address"`
	Latitude    string             `json:"latitude"`
	Longitude   string             `json:"longitude"`
	ProcessedAt time.Time          `json:"processed_at"`
}

// VideoReport: ответ на обработку видео.
type VideoReport struct {
	UserID          string         `json:"user_id"`
	Filename        string         `json:"filename"`
	TotalFrames     int            `json:"total_frames"`
	ProcessedFrames int            `json:"processed_frames"`
	Detections      SeverityCounts `json:"detections"`
	AverageRisk     float64        `json:"average_risk"`
	MaxRisk         float64        `json:"max_risk"`
	TotalPotholes   int            `json:"total_potholes"`
	Priority        Priority       `json:"priority"`
	DurationSeconds float64        `json:"duration_seconds"`
	VideoURL        string         `json:"video_url"`
	Address         *string        `json:"address"`
	Latitude        string         `json:"latitude"`
	Longitude       string         `json:"longitude"`
	ProcessedAt     time.Time      `json:"processed_at"`

	Video []byte `json:"-"`
}

// NewBatchImageReport переводит результат пакета в ответ, обнуляя статистику при ошибке.
func NewBatchImageReport(r BatchItemResult) BatchImageReport {
	report := BatchImageReport{
		Filename: r.Filename,
		Index:    r.Index,
	}
	if r.Failed() || r.Result == nil {
		msg := "unknown error"
		if r.Err != nil {
			msg = r.Err.Error()
		}
		report.Error = &msg
		return report
	}

	report.Detections = r.Result.Counts
	report.AverageRisk = r.Result.AverageRisk()
	report.MaxRisk = r.Result.MaxRisk()
	report.TotalPotholes = r.Result.Counts.Total()
	if r.ImageURL != "" {
		url := r.ImageURL
		report.ImageURL = &url
	}
	return report
}
