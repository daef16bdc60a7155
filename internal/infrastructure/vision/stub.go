//go:build !gocv
// +build !gocv

package vision

import (
	"image"

	"leaf-doctor/internal/domain/entity"
)

// Segmenter заглушка сегментатора для сборки без OpenCV.
type Segmenter struct {
	params SegmenterParams
}

// NewSegmenter создаёт сегментатор-заглушку (без OpenCV).
func NewSegmenter(params SegmenterParams) *Segmenter {
	return &Segmenter{params: params}
}

// Segment возвращает ошибку, если сборка без тега gocv.
func (s *Segmenter) Segment(img entity.Image) (entity.Mask, error) {
	_ = img
	return entity.Mask{}, ErrVisionDisabled
}

// Analyzer заглушка анализатора формы.
type Analyzer struct {
	params AnalyzerParams
}

// NewAnalyzer создаёт анализатор-заглушку (без OpenCV).
func NewAnalyzer(params AnalyzerParams) *Analyzer {
	return &Analyzer{params: params}
}

// Analyze возвращает ошибку, если сборка без тега gocv.
func (a *Analyzer) Analyze(img entity.Image, mask entity.Mask) (*entity.GateDecision, error) {
	_ = img
	_ = mask
	return nil, ErrVisionDisabled
}

// LeafDetector заглушка детектора листа.
type LeafDetector struct {
	params Params
}

// NewLeafDetector создаёт детектор-заглушку (без OpenCV).
func NewLeafDetector(params Params) *LeafDetector {
	return &LeafDetector{params: params}
}

// Detect возвращает ошибку, если сборка без тега gocv.
func (d *LeafDetector) Detect(img entity.Image) (*entity.GateDecision, error) {
	_ = img
	return nil, ErrVisionDisabled
}

// FeatureExtractor заглушка построителя дескриптора.
type FeatureExtractor struct {
	params DescriptorParams
}

// NewFeatureExtractor создаёт построитель-заглушку (без OpenCV).
func NewFeatureExtractor(params DescriptorParams) *FeatureExtractor {
	return &FeatureExtractor{params: params}
}

// Describe возвращает ошибку, если сборка без тега gocv.
func (e *FeatureExtractor) Describe(img entity.Image, size image.Point) (entity.Descriptor, error) {
	_ = img
	_ = size
	return nil, ErrVisionDisabled
}

// Highlighter заглушка подсветки листа.
type Highlighter struct{}

// NewHighlighter создаёт подсветку-заглушку (без OpenCV).
func NewHighlighter() *Highlighter {
	return &Highlighter{}
}

// Highlight возвращает ошибку, если сборка без тега gocv.
func (h *Highlighter) Highlight(data []byte, box entity.BoundingBox) ([]byte, error) {
	_ = data
	_ = box
	return nil, ErrVisionDisabled
}
