package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/domain/port"
)

// VideoPipeline обрабатывает видео покадрово и собирает размеченное видео.
type VideoPipeline struct {
	images *ImagePipeline
	codec  port.VideoCodec
	logger *zap.SugaredLogger
}

func NewVideoPipeline(images *ImagePipeline, codec port.VideoCodec, logger *zap.SugaredLogger) *VideoPipeline {
	return &VideoPipeline{
		images: images,
		codec:  codec,
		logger: logger,
	}
}

// Process читает кадры строго по порядку и отправляет их в пул по одному.
// Кадр, который не удалось обработать, записывается без изменений.
func (v *VideoPipeline) Process(ctx context.Context, data []byte) (_ *entity.VideoResult, err error) {
	reader, err := v.codec.Open(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	defer func() { err = multierr.Append(err, reader.Close()) }()

	info := reader.Info()
	writer, err := v.codec.Create(ctx, info)
	if err != nil {
		return nil, fmt.Errorf("create video writer: %w", err)
	}
	defer func() { err = multierr.Append(err, writer.Close()) }()

	result := &entity.VideoResult{
		Risks: []float64{},
		FPS:   info.FPS,
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", result.ProcessedFrames, err)
		}

		out := frame
		analysis, err := v.images.ProcessFrame(ctx, frame)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			v.logger.Warnf("frame %d passed through unmodified: %v", result.ProcessedFrames, err)
			result.FailedFrames++
		} else {
			out = analysis.Annotated
			result.Counts.Merge(analysis.Counts())
			result.Risks = append(result.Risks, analysis.Risks()...)
		}

		if err := writer.Write(out); err != nil {
			return nil, fmt.Errorf("write frame %d: %w", result.ProcessedFrames, err)
		}
		result.ProcessedFrames++
	}

	encoded, err := writer.Finish()
	if err != nil {
		return nil, fmt.Errorf("finish video: %w", err)
	}
	result.Video = encoded

	result.TotalFrames = info.TotalFrames
	if result.TotalFrames <= 0 {
		result.TotalFrames = result.ProcessedFrames
	}

	v.logger.Infof("video processed: %d/%d frames, %d passed through, %d potholes",
		result.ProcessedFrames, result.TotalFrames, result.FailedFrames, result.Counts.Total())
	return result, nil
}
