package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // без .env

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8005", cfg.HTTPAddr)
	require.Equal(t, DetectorONNX, cfg.Detector)
	require.Equal(t, 0.15, cfg.ConfThreshold)
	require.Equal(t, 0.5, cfg.IoUThreshold)
	require.Equal(t, 1280, cfg.ImageSize)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, 64, cfg.WorkerQueue)
	require.Equal(t, 60*time.Second, cfg.InferenceTimeout)
	require.Equal(t, "ffmpeg", cfg.VideoBackend)
	require.Equal(t, 1024, cfg.GeocodeCacheSize)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
	require.Equal(t, int64(10<<20), cfg.MaxImageBytes)
	require.Equal(t, int64(100<<20), cfg.MaxVideoBytes)
	require.Equal(t, 10, cfg.MaxBatchImages)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DETECTOR", "REMOTE")
	t.Setenv("INFERENCE_URL", "http://ml:8000/predict")
	t.Setenv("WORKERS", "8")
	t.Setenv("INFERENCE_TIMEOUT", "90")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("CONF_THRESHOLD", "0.25")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DetectorRemote, cfg.Detector)
	require.Equal(t, 8, cfg.Workers)
	require.Equal(t, 90*time.Second, cfg.InferenceTimeout)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	require.Equal(t, 0.25, cfg.ConfThreshold)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DETECTOR", "remote")
	t.Setenv("IOU_THRESHOLD", "1.5")
	t.Setenv("WORKERS", "0")

	_, err := Load()
	require.Error(t, err)
	require.ErrorContains(t, err, "INFERENCE_URL")
	require.ErrorContains(t, err, "IOU_THRESHOLD")
	require.ErrorContains(t, err, "WORKERS")
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("X_TIMEOUT", "1m30s")
	require.Equal(t, 90*time.Second, getEnvAsDuration("X_TIMEOUT", time.Second))

	t.Setenv("X_TIMEOUT", "garbage")
	require.Equal(t, time.Second, getEnvAsDuration("X_TIMEOUT", time.Second))
}
