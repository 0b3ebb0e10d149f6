package detect

import "pothole-vision/internal/domain/entity"

// PostProcess фильтрует и подавляет дубликаты в координатах модели, затем переводит
// оставшиеся рамки в координаты изображения width×height и прижимает их к его границам.
func PostProcess(pred *entity.Prediction, th Thresholds, width, height int) []entity.Detection {
	if pred == nil {
		return nil
	}

	kept := Suppress(pred.Detections, th)
	out := make([]entity.Detection, 0, len(kept))
	for _, k := range kept {
		box := pred.Mapping.ToImage(k.Box)
		out = append(out, entity.NewDetection(box, k.Confidence, width, height))
	}
	return out
}
