package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pothole-vision/internal/domain/detect"
	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/domain/port"
	"pothole-vision/internal/infrastructure/vision"
)

// fakeDetector возвращает заданные рамки в координатах изображения.
type fakeDetector struct {
	boxes   []entity.RawDetection
	calls   atomic.Int32
	failOn  int32 // номер вызова (с 1), на котором вернуть ошибку
	predict func(img image.Image) (*entity.Prediction, error)
}

func (d *fakeDetector) Predict(ctx context.Context, img image.Image) (*entity.Prediction, error) {
	n := d.calls.Add(1)
	if d.failOn > 0 && n == d.failOn {
		return nil, errors.New("inference failed")
	}
	if d.predict != nil {
		return d.predict(img)
	}
	return &entity.Prediction{Detections: d.boxes, Mapping: entity.IdentityMapping()}, nil
}

func (d *fakeDetector) Close() error { return nil }

func centredBox() []entity.RawDetection {
	return []entity.RawDetection{{Box: entity.Box{X1: 450, Y1: 450, X2: 550, Y2: 550}, Confidence: 0.9}}
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, imaging.New(w, h, color.Gray{Y: 90}), nil))
	return buf.Bytes()
}

func newTestPipeline(t *testing.T, det port.Detector) *ImagePipeline {
	t.Helper()
	annotator, err := vision.NewAnnotator()
	require.NoError(t, err)

	pool := NewWorkerPool(2, 8, zap.NewNop().Sugar())
	t.Cleanup(func() { _ = pool.Close() })

	return NewImagePipeline(det, annotator, vision.NewImageCodec(), pool, detect.DefaultThresholds, 0)
}

// fakeUploader запоминает загрузки и падает на заданных именах файлов.
type fakeUploader struct {
	mu      sync.Mutex
	uploads map[string][]byte
	failFor map[string]bool
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: map[string][]byte{}, failFor: map[string]bool{}}
}

func (u *fakeUploader) Upload(ctx context.Context, data []byte, folder, filename, contentType string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failFor[filename] {
		return "", errors.New("storage unavailable")
	}
	u.uploads[folder+"/"+filename] = data
	return "https://storage/" + folder + "/" + filename, nil
}

// fakeVideoCodec отдаёт заранее заданные кадры и собирает записанные.
type fakeVideoCodec struct {
	frames  []image.Image
	info    entity.VideoInfo
	written []image.Image
	openErr error
}

func (c *fakeVideoCodec) Open(ctx context.Context, data []byte) (port.VideoReader, error) {
	if c.openErr != nil {
		return nil, c.openErr
	}
	return &fakeVideoReader{codec: c}, nil
}

func (c *fakeVideoCodec) Create(ctx context.Context, info entity.VideoInfo) (port.VideoWriter, error) {
	return &fakeVideoWriter{codec: c}, nil
}

type fakeVideoReader struct {
	codec *fakeVideoCodec
	pos   int
}

func (r *fakeVideoReader) Info() entity.VideoInfo { return r.codec.info }

func (r *fakeVideoReader) Next() (image.Image, error) {
	if r.pos >= len(r.codec.frames) {
		return nil, io.EOF
	}
	f := r.codec.frames[r.pos]
	r.pos++
	return f, nil
}

func (r *fakeVideoReader) Close() error { return nil }

type fakeVideoWriter struct {
	codec *fakeVideoCodec
}

func (w *fakeVideoWriter) Write(frame image.Image) error {
	w.codec.written = append(w.codec.written, frame)
	return nil
}

func (w *fakeVideoWriter) Finish() ([]byte, error) { return []byte("mp4"), nil }

func (w *fakeVideoWriter) Close() error { return nil }
