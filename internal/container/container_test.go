package container

import (
	"bytes"
	"context"
	"image/color"
	"image/jpeg"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pothole-vision/config"
	app "pothole-vision/internal/application"
	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/infrastructure/video"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Detector:         config.DetectorONNX,
		ModelPath:        filepath.Join(dir, "missing.onnx"),
		ConfThreshold:    0.15,
		IoUThreshold:     0.5,
		ImageSize:        640,
		Workers:          1,
		WorkerQueue:      1,
		VideoBackend:     "ffmpeg",
		UploadDir:        filepath.Join(dir, "uploads"),
		UploadURL:        "http://localhost/files",
		GeocodeCacheSize: 8,
	}
}

func TestNew_MissingModelFallsBackToUnavailable(t *testing.T) {
	c, err := New(testConfig(t), zap.NewNop().Sugar())
	require.NoError(t, err)
	defer c.Close()

	require.NotEmpty(t, c.FilesDir)

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, imaging.New(32, 32, color.White), nil))

	_, err = c.DetectionService.DetectImage(context.Background(), app.ImageRequest{
		Filename: "a.jpg",
		Data:     buf.Bytes(),
	})
	require.ErrorIs(t, err, entity.ErrModelUnavailable)
}

func TestNew_UnknownVideoBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.VideoBackend = "vlc"

	_, err := New(cfg, zap.NewNop().Sugar())
	require.Error(t, err)
}

func TestNew_GoCVBackendWithoutBuildTag(t *testing.T) {
	if video.GoCVAvailable {
		t.Skip("built with gocv")
	}
	cfg := testConfig(t)
	cfg.VideoBackend = video.BackendGoCV

	_, err := New(cfg, zap.NewNop().Sugar())
	require.ErrorContains(t, err, "gocv build tag is not enabled")
}
