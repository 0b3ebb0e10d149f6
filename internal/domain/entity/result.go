package entity

import (
	"image"
	"time"
)

// Prediction: ответ детектора: сырые рамки и способ вернуть их в координаты изображения.
type Prediction struct {
	Detections []RawDetection
	Mapping    Letterbox
}

// Finding: детекция с посчитанным риском и уровнем опасности.
type Finding struct {
	Detection Detection
	Risk      float64
	Severity  Severity
}

// FrameAnalysis: результат анализа одного декодированного кадра.
type FrameAnalysis struct {
	Findings  []Finding
	Annotated image.Image
}

// Counts сводит находки кадра по уровням.
func (a *FrameAnalysis) Counts() SeverityCounts {
	var c SeverityCounts
	for _, f := range a.Findings {
		c.Add(f.Severity)
	}
	return c
}

// Risks возвращает риски находок в порядке их следования.
func (a *FrameAnalysis) Risks() []float64 {
	risks := make([]float64, 0, len(a.Findings))
	for _, f := range a.Findings {
		risks = append(risks, f.Risk)
	}
	return risks
}

// ImageResult хранит итог анализа изображения.
type ImageResult struct {
	Counts    SeverityCounts
	Risks     []float64
	Annotated []byte
}

// NewImageResult собирает результат из находок и перекодированной картинки.
func NewImageResult(analysis *FrameAnalysis, annotated []byte) *ImageResult {
	return &ImageResult{
		Counts:    analysis.Counts(),
		Risks:     analysis.Risks(),
		Annotated: annotated,
	}
}

// AverageRisk возвращает средний риск или 0, если ям нет.
func (r *ImageResult) AverageRisk() float64 {
	return average(r.Risks)
}

// MaxRisk возвращает максимальный риск или 0, если ям нет.
func (r *ImageResult) MaxRisk() float64 {
	return maximum(r.Risks)
}

// VideoInfo описывает параметры видеопотока.
type VideoInfo struct {
	Width       int
	Height      int
	FPS         float64
	TotalFrames int
}

// VideoResult: агрегат по всем кадрам видео.
type VideoResult struct {
	Counts          SeverityCounts
	Risks           []float64
	Video           []byte
	TotalFrames     int
	ProcessedFrames int
	FailedFrames    int
	FPS             float64
}

// Duration возвращает длительность totalFrames / fps, либо 0 при неизвестном fps.
func (r *VideoResult) Duration() time.Duration {
	return time.Duration(r.DurationSeconds() * float64(time.Second))
}

// DurationSeconds возвращает длительность в секундах.
func (r *VideoResult) DurationSeconds() float64 {
	if r.FPS <= 0 {
		return 0
	}
	return float64(r.TotalFrames) / r.FPS
}

func (r *VideoResult) AverageRisk() float64 { return average(r.Risks) }

func (r *VideoResult) MaxRisk() float64 { return maximum(r.Risks) }

// BatchItem: одно изображение пакета.
type BatchItem struct {
	Data     []byte
	Filename string
}

// BatchItemResult: результат обработки изображения пакета на его исходной позиции.
// При ошибке Result пустой, а Err заполнен.
type BatchItemResult struct {
	Index    int
	Filename string
	Result   *ImageResult
	ImageURL string
	Err      error
}

// Failed сообщает, завершилась ли обработка ошибкой.
func (r BatchItemResult) Failed() bool {
	return r.Err != nil
}

// Counts возвращает статистику или нули при ошибке.
func (r BatchItemResult) Counts() SeverityCounts {
	if r.Failed() || r.Result == nil {
		return SeverityCounts{}
	}
	return r.Result.Counts
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func maximum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
