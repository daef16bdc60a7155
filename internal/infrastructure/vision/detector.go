//go:build gocv
// +build gocv

package vision

import (
	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

// LeafDetector выполняет правиловый этап шлюза: сегментацию и проверку формы.
type LeafDetector struct {
	segmenter *Segmenter
	analyzer  *Analyzer
}

// NewLeafDetector создаёт детектор листа по параметрам конвейера.
func NewLeafDetector(params Params) *LeafDetector {
	return &LeafDetector{
		segmenter: NewSegmenter(params.Segmenter),
		analyzer:  NewAnalyzer(params.Analyzer),
	}
}

// Detect проверяет снимок и вырезает лист.
// Слишком маленький снимок отклоняется до построения маски.
func (d *LeafDetector) Detect(img entity.Image) (*entity.GateDecision, error) {
	if d.analyzer.tooSmall(img) {
		return entity.Reject(entity.ReasonTooSmall, entity.GeometryReport{}), nil
	}

	src, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mask := d.segmenter.segmentMat(src)
	defer mask.Close()

	return d.analyzer.analyzeMat(img, mask), nil
}

// Проверка реализации интерфейса
var _ port.LeafDetector = (*LeafDetector)(nil)
