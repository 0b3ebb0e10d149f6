// Package onnx запускает YOLO-модель локально через onnxruntime.
package onnx

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/domain/port"
	"pothole-vision/internal/infrastructure/vision"
)

// Options задаёт параметры загрузки модели.
type Options struct {
	ModelPath   string
	CardPath    string
	LibraryPath string
	ImageSize   int
	// MinConfidence отсекает заведомо пустые якоря до NMS.
	MinConfidence float64
}

// Detector держит одну сессию onnxruntime. Тензоры создаются на каждый вызов,
// поэтому Predict можно звать из нескольких воркеров одновременно.
type Detector struct {
	session       *ort.DynamicAdvancedSession
	inputName     string
	outputName    string
	size          int
	minConfidence float64
	classes       []string
	logger        *zap.SugaredLogger
}

// NewDetector инициализирует окружение onnxruntime и загружает модель.
func NewDetector(opts Options, logger *zap.SugaredLogger) (*Detector, error) {
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", opts.ModelPath, err)
	}

	card, err := LoadCard(opts.CardPath)
	if err != nil {
		return nil, err
	}

	libPath := resolveSharedLibraryPath(opts.LibraryPath, filepath.Dir(opts.ModelPath))
	if libPath == "" {
		return nil, errors.New("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	inputName, outputName := card.InputName, card.OutputName
	if inputName == "" || outputName == "" {
		inputs, outputs, err := ort.GetInputOutputInfo(opts.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("read model io info: %w", err)
		}
		if len(inputs) == 0 || len(outputs) == 0 {
			return nil, errors.New("model has no inputs or outputs")
		}
		if inputName == "" {
			inputName = inputs[0].Name
		}
		if outputName == "" {
			outputName = outputs[0].Name
		}
	}

	size := opts.ImageSize
	if card.InputSize > 0 {
		size = card.InputSize
	}
	if size <= 0 {
		return nil, fmt.Errorf("invalid model input size %d", size)
	}

	session, err := ort.NewDynamicAdvancedSession(opts.ModelPath, []string{inputName}, []string{outputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	logger.Infof("ONNX модель загружена: %s (вход %s %dx%d, выход %s, классов %d)",
		opts.ModelPath, inputName, size, size, outputName, len(card.Names))

	return &Detector{
		session:       session,
		inputName:     inputName,
		outputName:    outputName,
		size:          size,
		minConfidence: opts.MinConfidence,
		classes:       card.Names,
		logger:        logger,
	}, nil
}

// Predict вписывает изображение во вход модели и возвращает рамки в координатах модели.
func (d *Detector) Predict(ctx context.Context, img image.Image) (*entity.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	boxed, mapping := vision.Letterbox(img, d.size)

	input, err := ort.NewTensor(ort.NewShape(1, 3, int64(d.size), int64(d.size)), vision.Tensor(boxed))
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := d.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("run inference: %w", err)
	}
	defer outputs[0].Destroy()

	output, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", outputs[0])
	}

	raw, err := DecodeOutput(output.GetData(), output.GetShape(), d.minConfidence)
	if err != nil {
		return nil, err
	}

	return &entity.Prediction{Detections: raw, Mapping: mapping}, nil
}

// Classes возвращает имена классов из карточки модели.
func (d *Detector) Classes() []string {
	return d.classes
}

// Close освобождает сессию и окружение onnxruntime.
func (d *Detector) Close() error {
	var err error
	if d.session != nil {
		err = multierr.Append(err, d.session.Destroy())
		d.session = nil
	}
	if ort.IsInitialized() {
		err = multierr.Append(err, ort.DestroyEnvironment())
	}
	return err
}

// resolveSharedLibraryPath ищет библиотеку onnxruntime: явный путь, затем стандартные места.
func resolveSharedLibraryPath(explicit, modelDir string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}

	names := []string{
		"libonnxruntime.so",
		"onnxruntime.so",
		"libonnxruntime.dylib",
		"onnxruntime.dll",
	}
	dirs := []string{
		modelDir,
		filepath.Join(modelDir, "lib"),
		".",
		"/usr/local/lib",
		"/usr/lib",
	}
	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

var _ port.Detector = (*Detector)(nil)
