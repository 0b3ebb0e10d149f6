package onnx

import (
	"fmt"

	"pothole-vision/internal/domain/entity"
)

// DecodeOutput разбирает выход YOLO-головы формы [1, 4+nc, N] или [1, N, 4+nc].
// Каждый якорь содержит центр, ширину и высоту рамки и оценки классов;
// уверенность равна максимальной оценке. Якоря с уверенностью не выше minConfidence отбрасываются.
func DecodeOutput(data []float32, shape []int64, minConfidence float64) ([]entity.RawDetection, error) {
	if len(shape) != 3 || shape[0] != 1 {
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}

	channelsFirst := shape[1] <= shape[2]
	channels, anchors := int(shape[2]), int(shape[1])
	if channelsFirst {
		channels, anchors = int(shape[1]), int(shape[2])
	}
	if channels < 5 {
		return nil, fmt.Errorf("output has %d channels, need at least 5", channels)
	}
	if len(data) != channels*anchors {
		return nil, fmt.Errorf("output data length %d does not match shape %v", len(data), shape)
	}

	at := func(anchor, channel int) float64 {
		if channelsFirst {
			return float64(data[channel*anchors+anchor])
		}
		return float64(data[anchor*channels+channel])
	}

	var out []entity.RawDetection
	for i := 0; i < anchors; i++ {
		conf := at(i, 4)
		for c := 5; c < channels; c++ {
			if s := at(i, c); s > conf {
				conf = s
			}
		}
		if conf <= minConfidence {
			continue
		}

		cx, cy, w, h := at(i, 0), at(i, 1), at(i, 2), at(i, 3)
		out = append(out, entity.RawDetection{
			Box: entity.Box{
				X1: cx - w/2,
				Y1: cy - h/2,
				X2: cx + w/2,
				Y2: cy + h/2,
			},
			Confidence: conf,
		})
	}
	return out, nil
}
