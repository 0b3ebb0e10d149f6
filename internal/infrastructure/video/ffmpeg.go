package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/domain/port"
)

// defaultFPS используется, если контейнер не сообщает частоту кадров.
const defaultFPS = 25

var errWriterClosed = errors.New("video writer closed")

// FFmpegCodec гоняет кадры через внешний процесс ffmpeg в формате rawvideo rgb24.
type FFmpegCodec struct {
	logger *zap.SugaredLogger
}

func NewFFmpegCodec(logger *zap.SugaredLogger) *FFmpegCodec {
	return &FFmpegCodec{logger: logger}
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NbFrames     string `json:"nb_frames"`
	Tags         struct {
		Rotate string `json:"rotate"`
	} `json:"tags"`
	SideDataList []struct {
		Rotation float64 `json:"rotation"`
	} `json:"side_data_list"`
}

// rotation возвращает поворот дисплея в градусах из side data или старого тега rotate.
func (s probeStream) rotation() int {
	for _, sd := range s.SideDataList {
		if sd.Rotation != 0 {
			return int(math.Round(sd.Rotation))
		}
	}
	r, _ := strconv.Atoi(strings.TrimSpace(s.Tags.Rotate))
	return r
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// parseProbe достаёт из вывода ffprobe параметры первого видеопотока.
func parseProbe(raw string) (entity.VideoInfo, error) {
	var res probeResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return entity.VideoInfo{}, fmt.Errorf("parse probe: %w", err)
	}

	for _, s := range res.Streams {
		if s.CodecType != "video" {
			continue
		}
		if s.Width <= 0 || s.Height <= 0 {
			return entity.VideoInfo{}, fmt.Errorf("video stream has invalid size %dx%d", s.Width, s.Height)
		}

		fps := parseRate(s.AvgFrameRate)
		if fps <= 0 {
			fps = parseRate(s.RFrameRate)
		}

		total, _ := strconv.Atoi(s.NbFrames)
		if total <= 0 && fps > 0 {
			if d, err := strconv.ParseFloat(res.Format.Duration, 64); err == nil {
				total = int(math.Round(d * fps))
			}
		}

		// ffmpeg сам поворачивает кадры при декодировании, поэтому размер берётся после поворота.
		width, height := s.Width, s.Height
		if r := ((s.rotation() % 360) + 360) % 360; r == 90 || r == 270 {
			width, height = height, width
		}

		return entity.VideoInfo{Width: width, Height: height, FPS: fps, TotalFrames: total}, nil
	}
	return entity.VideoInfo{}, errors.New("no video stream")
}

// parseRate разбирает частоту вида "30000/1001" или "25".
func parseRate(rate string) float64 {
	num, den, found := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// Open сохраняет видео во временный файл, читает метаданные и запускает декодирование.
func (c *FFmpegCodec) Open(ctx context.Context, data []byte) (port.VideoReader, error) {
	path, err := writeTemp(data, "pothole-in-*.mp4")
	if err != nil {
		return nil, err
	}

	raw, err := ffmpeg.Probe(path)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("%w: probe video: %v", entity.ErrDecode, err)
	}
	info, err := parseProbe(raw)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("%w: %v", entity.ErrDecode, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	r := &ffmpegReader{
		info:   info,
		path:   path,
		out:    pr,
		cancel: cancel,
		done:   make(chan struct{}),
		frame:  make([]byte, info.Width*info.Height*3),
	}

	go func() {
		defer close(r.done)
		stream := ffmpeg.Input(path).
			Output("pipe:", ffmpeg.KwArgs{"format": "rawvideo", "pix_fmt": "rgb24"})
		stream.Context = ctx
		err := stream.WithOutput(pw).WithErrorOutput(&r.stderr).Run()
		if err != nil && ctx.Err() == nil {
			err = fmt.Errorf("ffmpeg decode: %w: %s", err, lastLine(r.stderr.String()))
		}
		pw.CloseWithError(err)
	}()

	c.logger.Debugf("video opened: %dx%d, %.2f fps, %d frames", info.Width, info.Height, info.FPS, info.TotalFrames)
	return r, nil
}

// Create запускает ffmpeg, который собирает кадры в MP4.
func (c *FFmpegCodec) Create(ctx context.Context, info entity.VideoInfo) (port.VideoWriter, error) {
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

	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	w := &ffmpegWriter{
		width:  info.Width,
		height: info.Height,
		path:   out.Name(),
		in:     pw,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(w.done)
		stream := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
			"format":  "rawvideo",
			"pix_fmt": "rgb24",
			"s":       fmt.Sprintf("%dx%d", info.Width, info.Height),
			"r":       strconv.FormatFloat(fps, 'f', -1, 64),
		}).
			Output(w.path, ffmpeg.KwArgs{"c:v": "mpeg4", "q:v": 3, "pix_fmt": "yuv420p", "movflags": "+faststart"}).
			OverWriteOutput()
		stream.Context = ctx
		err := stream.WithInput(pr).WithErrorOutput(&w.stderr).Run()
		if err != nil {
			err = fmt.Errorf("ffmpeg encode: %w: %s", err, lastLine(w.stderr.String()))
		}
		w.err = err
		// разблокирует Write, если процесс завершился раньше времени
		pr.CloseWithError(errors.Join(errWriterClosed, err))
	}()

	return w, nil
}

type ffmpegReader struct {
	info   entity.VideoInfo
	path   string
	out    *io.PipeReader
	stderr bytes.Buffer
	cancel context.CancelFunc
	done   chan struct{}
	frame  []byte
	once   sync.Once
}

func (r *ffmpegReader) Info() entity.VideoInfo { return r.info }

// Next читает следующий кадр. Неполный последний кадр считается концом потока.
func (r *ffmpegReader) Next() (image.Image, error) {
	_, err := io.ReadFull(r.out, r.frame)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	return fromRGB24(r.frame, r.info.Width, r.info.Height), nil
}

func (r *ffmpegReader) Close() error {
	var err error
	r.once.Do(func() {
		r.cancel()
		err = r.out.Close()
		<-r.done
		if rmErr := os.Remove(r.path); rmErr != nil && !os.IsNotExist(rmErr) {
			err = multierr.Append(err, rmErr)
		}
	})
	return err
}

type ffmpegWriter struct {
	width, height int
	path          string
	in            *io.PipeWriter
	stderr        bytes.Buffer
	cancel        context.CancelFunc
	done          chan struct{}
	buf           []byte
	err           error
	finished      bool
	once          sync.Once
}

func (w *ffmpegWriter) Write(frame image.Image) error {
	if w.finished {
		return errWriterClosed
	}
	w.buf = rgb24(frame, w.width, w.height, w.buf)
	if _, err := w.in.Write(w.buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Finish закрывает вход ffmpeg, ждёт завершения процесса и читает готовый файл.
func (w *ffmpegWriter) Finish() ([]byte, error) {
	if w.finished {
		return nil, errWriterClosed
	}
	w.finished = true

	if err := w.in.Close(); err != nil {
		return nil, err
	}
	<-w.done
	if w.err != nil {
		return nil, w.err
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("read encoded video: %w", err)
	}
	return data, nil
}

// Close прерывает незавершённую запись и удаляет временный файл. Повторный вызов ничего не делает.
func (w *ffmpegWriter) Close() error {
	var err error
	w.once.Do(func() {
		if !w.finished {
			w.finished = true
			w.in.CloseWithError(errWriterClosed)
			w.cancel()
		}
		<-w.done
		w.cancel()
		if rmErr := os.Remove(w.path); rmErr != nil && !os.IsNotExist(rmErr) {
			err = rmErr
		}
	})
	return err
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

var _ port.VideoCodec = (*FFmpegCodec)(nil)
