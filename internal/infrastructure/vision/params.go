package vision

import (
	"errors"
	"fmt"
	"image"
)

// ErrVisionDisabled возвращается сборкой без тега gocv.
var ErrVisionDisabled = errors.New("gocv build tag is not enabled")

// SegmenterParams задаёт диапазон «зелёного» в HSV (H в шкале 0–180) и морфологию.
type SegmenterParams struct {
	HueMin          int
	HueMax          int
	SatMin          int
	ValMin          int
	KernelSize      int
	OpenIterations  int
	CloseIterations int
}

// AnalyzerParams пороги проверки формы листа.
type AnalyzerParams struct {
	MinSide       int
	MinGreenRatio float64
	MinAreaRatio  float64
	MinSolidity   float64
	PadFraction   float64
}

// DescriptorParams параметры HOG и цветовой гистограммы.
type DescriptorParams struct {
	Size         image.Point
	Orientations int
	CellSize     int
	BlockSize    int
	ClipValue    float64
	ColorBins    int
}

// Params объединяет все настройки конвейера.
type Params struct {
	Segmenter  SegmenterParams
	Analyzer   AnalyzerParams
	Descriptor DescriptorParams
}

// DefaultParams возвращает пороги, подобранные под разнородный свет и фон.
func DefaultParams() Params {
	return Params{
		Segmenter: SegmenterParams{
			HueMin:          25,
			HueMax:          95,
			SatMin:          30,
			ValMin:          30,
			KernelSize:      7,
			OpenIterations:  1,
			CloseIterations: 2,
		},
		Analyzer: AnalyzerParams{
			MinSide:       40,
			MinGreenRatio: 0.08,
			MinAreaRatio:  0.03,
			MinSolidity:   0.35,
			PadFraction:   0.08,
		},
		Descriptor: DescriptorParams{
			Size:         image.Pt(96, 96),
			Orientations: 9,
			CellSize:     8,
			BlockSize:    2,
			ClipValue:    0.2,
			ColorBins:    8,
		},
	}
}

// Validate проверяет согласованность параметров.
func (p Params) Validate() error {
	s := p.Segmenter
	if s.HueMin < 0 || s.HueMax > 180 || s.HueMin > s.HueMax {
		return fmt.Errorf("invalid hue band [%d, %d]", s.HueMin, s.HueMax)
	}
	if s.SatMin < 0 || s.SatMin > 255 || s.ValMin < 0 || s.ValMin > 255 {
		return fmt.Errorf("invalid saturation/value floor %d/%d", s.SatMin, s.ValMin)
	}
	if s.KernelSize < 1 || s.OpenIterations < 0 || s.CloseIterations < 0 {
		return fmt.Errorf("invalid morphology kernel %d (open %d, close %d)", s.KernelSize, s.OpenIterations, s.CloseIterations)
	}

	a := p.Analyzer
	if a.MinSide < 1 {
		return fmt.Errorf("invalid min side %d", a.MinSide)
	}
	if a.MinGreenRatio < 0 || a.MinAreaRatio < 0 || a.MinSolidity < 0 || a.MinSolidity > 1 {
		return fmt.Errorf("invalid analyzer thresholds %+v", a)
	}
	if a.PadFraction < 0 {
		return fmt.Errorf("invalid pad fraction %f", a.PadFraction)
	}

	return p.Descriptor.Validate()
}

// Validate проверяет, что сетка HOG помещается в канонический размер.
func (d DescriptorParams) Validate() error {
	if d.Orientations < 1 || d.CellSize < 1 || d.BlockSize < 1 || d.ColorBins < 1 {
		return fmt.Errorf("invalid descriptor params %+v", d)
	}
	if d.ClipValue <= 0 {
		return fmt.Errorf("invalid HOG clip value %f", d.ClipValue)
	}
	if d.Size.X/d.CellSize < d.BlockSize || d.Size.Y/d.CellSize < d.BlockSize {
		return fmt.Errorf("descriptor size %v too small for %dx%d-cell blocks of %dpx cells",
			d.Size, d.BlockSize, d.BlockSize, d.CellSize)
	}
	return nil
}

// HOGLen возвращает длину HOG-части дескриптора для размера size.
func (d DescriptorParams) HOGLen(size image.Point) int {
	cellsX := size.X / d.CellSize
	cellsY := size.Y / d.CellSize
	blocksX := cellsX - d.BlockSize + 1
	blocksY := cellsY - d.BlockSize + 1
	if blocksX <= 0 || blocksY <= 0 {
		return 0
	}
	return blocksX * blocksY * d.BlockSize * d.BlockSize * d.Orientations
}

// Len возвращает полную длину дескриптора для размера size.
func (d DescriptorParams) Len(size image.Point) int {
	return d.HOGLen(size) + d.ColorBins*d.ColorBins*d.ColorBins
}
