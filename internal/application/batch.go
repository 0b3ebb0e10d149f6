package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/domain/port"
)

// Папки хранилища для обработанных файлов.
const (
	ImagesFolder = "processed/images"
	VideosFolder = "processed/videos"
)

// BatchOrchestrator обрабатывает пакет изображений параллельно.
// Ошибка одного изображения не влияет на остальные.
type BatchOrchestrator struct {
	images   *ImagePipeline
	uploader port.Uploader
	logger   *zap.SugaredLogger
}

// NewBatchOrchestrator создаёт оркестратор. Без uploader результаты не загружаются.
func NewBatchOrchestrator(images *ImagePipeline, uploader port.Uploader, logger *zap.SugaredLogger) *BatchOrchestrator {
	return &BatchOrchestrator{
		images:   images,
		uploader: uploader,
		logger:   logger,
	}
}

// Process запускает обработку всех изображений одновременно и возвращает
// результаты в порядке входа: len(результат) == len(items).
func (b *BatchOrchestrator) Process(ctx context.Context, items []entity.BatchItem) []entity.BatchItemResult {
	results := make([]entity.BatchItemResult, len(items))

	var g errgroup.Group
	for i, item := range items {
		g.Go(func() error {
			results[i] = b.processItem(ctx, i, item)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (b *BatchOrchestrator) processItem(ctx context.Context, idx int, item entity.BatchItem) (res entity.BatchItemResult) {
	res = entity.BatchItemResult{Index: idx, Filename: item.Filename}
	defer func() {
		if r := recover(); r != nil {
			res = entity.BatchItemResult{Index: idx, Filename: item.Filename, Err: fmt.Errorf("panic: %v", r)}
		}
		if res.Err != nil {
			b.logger.Warnf("batch item %d (%s) failed: %v", idx, item.Filename, res.Err)
		}
	}()

	result, err := b.images.ProcessImage(ctx, item.Data)
	if err != nil {
		res.Err = err
		return res
	}

	if b.uploader != nil {
		url, err := b.uploader.Upload(ctx, result.Annotated, ImagesFolder, item.Filename, "image/jpeg")
		if err != nil {
			res.Err = fmt.Errorf("%w: %v", entity.ErrUpload, err)
			return res
		}
		res.ImageURL = url
	}

	res.Result = result
	return res
}

// Summary считает успешные и неудачные элементы по наличию ошибки.
func Summary(results []entity.BatchItemResult) (successful, failed int) {
	for _, r := range results {
		if r.Failed() {
			failed++
		} else {
			successful++
		}
	}
	return successful, failed
}
