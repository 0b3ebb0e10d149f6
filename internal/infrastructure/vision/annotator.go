package vision

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/domain/port"
)

const (
	labelFontSize = 16
	labelOffset   = 25 // подпись рисуется на столько пикселей выше рамки
	labelPadding  = 2
)

// Annotator рисует рамки и подписи найденных ям.
type Annotator struct {
	font *truetype.Font
}

// NewAnnotator загружает шрифт Go Regular (в нём есть кириллица).
func NewAnnotator() (*Annotator, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Annotator{font: f}, nil
}

// Annotate возвращает копию изображения с разметкой. Подпись, уходящая за верхний край,
// не переносится.
func (a *Annotator) Annotate(img image.Image, findings []entity.Finding) (image.Image, error) {
	dc := gg.NewContextForImage(img)
	if len(findings) == 0 {
		return dc.Image(), nil
	}

	// Face кэширует глифы, поэтому у каждого вызова свой.
	face := truetype.NewFace(a.font, &truetype.Options{Size: labelFontSize})
	defer face.Close()
	dc.SetFontFace(face)

	for _, f := range findings {
		style := f.Severity.Style()
		x1, y1, x2, y2 := f.Detection.Bounds()

		dc.SetColor(style.Color)
		dc.SetLineWidth(LineWidth(f.Risk))
		dc.DrawRectangle(float64(x1), float64(y1), float64(x2-x1), float64(y2-y1))
		dc.Stroke()

		text := Label(f)
		tw, th := dc.MeasureString(text)
		tx, ty := float64(x1), float64(y1-labelOffset)

		dc.DrawRectangle(tx-labelPadding, ty-labelPadding, tw+2*labelPadding, th+2*labelPadding)
		dc.Fill()

		dc.SetColor(color.Black)
		dc.DrawStringAnchored(text, tx, ty, 0, 1)
	}

	return dc.Image(), nil
}

// LineWidth возвращает толщину рамки: 4 для риска выше 50, иначе 2.
func LineWidth(r float64) float64 {
	if r > 50 {
		return 4
	}
	return 2
}

// Label собирает текст подписи: уровень, риск в процентах и уверенность модели.
func Label(f entity.Finding) string {
	return fmt.Sprintf("%s %.0f%% (conf: %.2f)", f.Severity.Style().Label, f.Risk, f.Detection.Confidence())
}

var _ port.Annotator = (*Annotator)(nil)
