//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

// FeatureExtractor строит дескриптор HOG + HSV-гистограмма.
// Не хранит состояния, безопасен для параллельного использования.
type FeatureExtractor struct {
	params DescriptorParams
}

// NewFeatureExtractor создаёт построитель дескриптора.
func NewFeatureExtractor(params DescriptorParams) *FeatureExtractor {
	return &FeatureExtractor{params: params}
}

// Describe приводит изображение к size (нулевой size означает канонический размер)
// интерполяцией по площади и считает дескриптор.
func (e *FeatureExtractor) Describe(img entity.Image, size image.Point) (entity.Descriptor, error) {
	if size == (image.Point{}) {
		size = e.params.Size
	}
	if e.params.HOGLen(size) == 0 {
		return nil, fmt.Errorf("descriptor size %v is smaller than one HOG block", size)
	}
	if img.Empty() {
		return nil, errors.New("empty image")
	}

	src, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(src, &resized, size, 0, 0, gocv.InterpolationArea)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(resized, &gray, gocv.ColorBGRToGray)

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(resized, &hsv, gocv.ColorBGRToHSV)

	hog := HOG(gray.ToBytes(), size.X, size.Y, e.params)
	color := ColorHistogram(hsv.ToBytes(), e.params.ColorBins)
	return concat(hog, color), nil
}

// Проверка реализации интерфейса
var _ port.FeatureExtractor = (*FeatureExtractor)(nil)
