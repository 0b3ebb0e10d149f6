//go:build gocv
// +build gocv

package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/domain/port"
)

// GoCVAvailable сообщает, собран ли пакет с OpenCV.
const GoCVAvailable = true

// GoCVCodec читает и пишет видео через OpenCV.
type GoCVCodec struct {
	logger *zap.SugaredLogger
}

// NewGoCVCodec создаёт кодек на OpenCV.
func NewGoCVCodec(logger *zap.SugaredLogger) *GoCVCodec {
	return &GoCVCodec{logger: logger}
}

// Open открывает видео из временного файла.
func (c *GoCVCodec) Open(ctx context.Context, data []byte) (port.VideoReader, error) {
	_ = ctx
	path, err := writeTemp(data, "pothole-in-*.mp4")
	if err != nil {
		return nil, err
	}

	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("%w: open video: %v", entity.ErrDecode, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		os.Remove(path)
		return nil, fmt.Errorf("%w: video cannot be opened", entity.ErrDecode)
	}

	info := entity.VideoInfo{
		Width:       int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height:      int(capture.Get(gocv.VideoCaptureFrameHeight)),
		FPS:         capture.Get(gocv.VideoCaptureFPS),
		TotalFrames: int(capture.Get(gocv.VideoCaptureFrameCount)),
	}
	c.logger.Debugf("video opened: %dx%d, %.2f fps, %d frames", info.Width, info.Height, info.FPS, info.TotalFrames)

	return &gocvReader{capture: capture, path: path, info: info, mat: gocv.NewMat()}, nil
}

// Create создаёт запись MP4 с кодеком mp4v.
func (c *GoCVCodec) Create(ctx context.Context, info entity.VideoInfo) (port.VideoWriter, error) {
	_ = ctx
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", info.Width, info.Height)
	}
	fps := info.FPS
	if fps <= 0 {
		fps = defaultFPS
	}

	out, err := os.CreateTemp("", "pothole-out-*.mp4")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	out.Close()

	writer, err := gocv.VideoWriterFile(out.Name(), "mp4v", fps, info.Width, info.Height, true)
	if err != nil {
		os.Remove(out.Name())
		return nil, fmt.Errorf("open video writer: %w", err)
	}

	return &gocvWriter{writer: writer, path: out.Name(), width: info.Width, height: info.Height}, nil
}

type gocvReader struct {
	capture *gocv.VideoCapture
	path    string
	info    entity.VideoInfo
	mat     gocv.Mat
	closed  bool
}

func (r *gocvReader) Info() entity.VideoInfo { return r.info }

func (r *gocvReader) Next() (image.Image, error) {
	if ok := r.capture.Read(&r.mat); !ok || r.mat.Empty() {
		return nil, io.EOF
	}
	img, err := r.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	return img, nil
}

func (r *gocvReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	err := multierr.Combine(r.mat.Close(), r.capture.Close())
	if rmErr := os.Remove(r.path); rmErr != nil && !os.IsNotExist(rmErr) {
		err = multierr.Append(err, rmErr)
	}
	return err
}

type gocvWriter struct {
	writer        *gocv.VideoWriter
	path          string
	width, height int
	finished      bool
	closed        bool
}

func (w *gocvWriter) Write(frame image.Image) error {
	if w.finished {
		return errWriterClosed
	}
	mat, err := gocv.ImageToMatRGB(fitFrame(frame, w.width, w.height))
	if err != nil {
		return fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()
	return w.writer.Write(mat)
}

func (w *gocvWriter) Finish() ([]byte, error) {
	if w.finished {
		return nil, errWriterClosed
	}
	w.finished = true
	if err := w.writer.Close(); err != nil {
		return nil, fmt.Errorf("close video writer: %w", err)
	}
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("read encoded video: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("encoded video is empty")
	}
	return data, nil
}

func (w *gocvWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	var err error
	if !w.finished {
		w.finished = true
		err = w.writer.Close()
	}
	if rmErr := os.Remove(w.path); rmErr != nil && !os.IsNotExist(rmErr) {
		err = multierr.Append(err, rmErr)
	}
	return err
}

var _ port.VideoCodec = (*GoCVCodec)(nil)
