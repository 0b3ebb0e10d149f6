package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"pothole-vision/internal/domain/detect"
	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/domain/port"
	"pothole-vision/internal/domain/risk"
)

// ImagePipeline превращает изображение в размеченную картинку и статистику по ямам.
// Вся тяжёлая работа выполняется в пуле воркеров.
type ImagePipeline struct {
	detector   port.Detector
	annotator  port.Annotator
	codec      port.ImageCodec
	pool       *WorkerPool
	thresholds detect.Thresholds
	timeout    time.Duration
}

// NewImagePipeline собирает конвейер. timeout ограничивает ожидание одной задачи в пуле,
// 0 означает ожидание без ограничения.
func NewImagePipeline(
	detector port.Detector,
	annotator port.Annotator,
	codec port.ImageCodec,
	pool *WorkerPool,
	thresholds detect.Thresholds,
	timeout time.Duration,
) *ImagePipeline {
	return &ImagePipeline{
		detector:   detector,
		annotator:  annotator,
		codec:      codec,
		pool:       pool,
		thresholds: thresholds,
		timeout:    timeout,
	}
}

// ProcessImage декодирует байты, ищет ямы, рисует разметку и кодирует результат в JPEG.
func (p *ImagePipeline) ProcessImage(ctx context.Context, data []byte) (*entity.ImageResult, error) {
	var result *entity.ImageResult
	err := p.offload(ctx, func() error {
		img, err := p.codec.Decode(data)
		if err != nil {
			if errors.Is(err, entity.ErrDecode) {
				return err
			}
			return fmt.Errorf("%w: %v", entity.ErrDecode, err)
		}

		analysis, err := p.analyze(ctx, img)
		if err != nil {
			return err
		}

		encoded, err := p.codec.Encode(analysis.Annotated)
		if err != nil {
			return fmt.Errorf("encode annotated image: %w", err)
		}

		result = entity.NewImageResult(analysis, encoded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ProcessFrame анализирует уже декодированный кадр видео.
func (p *ImagePipeline) ProcessFrame(ctx context.Context, frame image.Image) (*entity.FrameAnalysis, error) {
	var analysis *entity.FrameAnalysis
	err := p.offload(ctx, func() error {
		var err error
		analysis, err = p.analyze(ctx, frame)
		return err
	})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

func (p *ImagePipeline) analyze(ctx context.Context, img image.Image) (*entity.FrameAnalysis, error) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: empty image", entity.ErrDecode)
	}

	pred, err := p.detector.Predict(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	dets := detect.PostProcess(pred, p.thresholds, width, height)
	findings := risk.Assess(dets, width, height)

	annotated, err := p.annotator.Annotate(img, findings)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}

	return &entity.FrameAnalysis{Findings: findings, Annotated: annotated}, nil
}

func (p *ImagePipeline) offload(ctx context.Context, fn func() error) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.pool.Do(ctx, fn)
}
