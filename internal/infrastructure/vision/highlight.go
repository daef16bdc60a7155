//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"errors"
	"image/color"
	"image/jpeg"

	"gocv.io/x/gocv"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

// Highlighter рисует рамку листа поверх загруженного снимка.
type Highlighter struct{}

// NewHighlighter создаёт подсветку.
func NewHighlighter() *Highlighter {
	return &Highlighter{}
}

// Highlight декодирует снимок, обводит box (обрезанный по границам) и кодирует JPEG.
func (h *Highlighter) Highlight(data []byte, box entity.BoundingBox) ([]byte, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil || mat.Empty() {
		if !mat.Empty() {
			mat.Close()
		}
		return nil, entity.ErrInvalidImage
	}
	defer mat.Close()

	rect := box.Rect().Intersect(fromMatBounds(mat))
	if rect.Empty() {
		return nil, errors.New("leaf box is outside the image")
	}

	green := color.RGBA{G: 255, A: 255}
	gocv.Rectangle(&mat, rect, green, 2)

	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Проверка реализации интерфейса
var _ port.LeafHighlighter = (*Highlighter)(nil)
