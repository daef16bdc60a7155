//go:build gocv
// +build gocv

package vision

import (
	"image"

	"gocv.io/x/gocv"

	"leaf-doctor/internal/domain/entity"
)

// Segmenter выделяет «растительно-зелёные» пиксели.
type Segmenter struct {
	params SegmenterParams
}

// NewSegmenter создаёт сегментатор с заданным HSV-диапазоном.
func NewSegmenter(params SegmenterParams) *Segmenter {
	return &Segmenter{params: params}
}

// Segment возвращает бинарную маску зелёных областей.
// Маска может быть полностью пустой, это не ошибка.
func (s *Segmenter) Segment(img entity.Image) (entity.Mask, error) {
	src, err := toMat(img)
	if err != nil {
		return entity.Mask{}, err
	}
	defer src.Close()

	mask := s.segmentMat(src)
	defer mask.Close()
	return maskFromMat(mask), nil
}

// segmentMat: BGR -> HSV, порог по диапазону, затем открытие и закрытие
// эллиптическим ядром. Вызывающий закрывает возвращённый Mat.
func (s *Segmenter) segmentMat(src gocv.Mat) gocv.Mat {
	p := s.params

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(src, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	lower := gocv.NewScalar(float64(p.HueMin), float64(p.SatMin), float64(p.ValMin), 0)
	upper := gocv.NewScalar(float64(p.HueMax), 255, 255, 0)
	gocv.InRangeWithScalar(hsv, lower, upper, &mask)

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(p.KernelSize, p.KernelSize))
	defer kernel.Close()

	// Открытие убирает одиночный шум, закрытие заделывает дырки внутри листа.
	if p.OpenIterations > 0 {
		gocv.MorphologyExWithParams(mask, &mask, gocv.MorphOpen, kernel, p.OpenIterations, gocv.BorderConstant)
	}
	if p.CloseIterations > 0 {
		gocv.MorphologyExWithParams(mask, &mask, gocv.MorphClose, kernel, p.CloseIterations, gocv.BorderConstant)
	}

	return mask
}
