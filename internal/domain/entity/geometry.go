package entity

import (
	"encoding/json"
	"image"
)

// BoundingBox прямоугольник области листа, координаты [X0, X1) x [Y0, Y1)
type BoundingBox struct {
	X0 int // левая граница
	Y0 int // верхняя граница
	X1 int // правая граница (не включая)
	Y1 int // нижняя граница (не включая)
}

// BoxFromRect переводит image.Rectangle в BoundingBox.
func BoxFromRect(r image.Rectangle) BoundingBox {
	return BoundingBox{X0: r.Min.X, Y0: r.Min.Y, X1: r.Max.X, Y1: r.Max.Y}
}

// Rect возвращает прямоугольник в виде image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X0, b.Y0, b.X1, b.Y1)
}

// MarshalJSON кодирует рамку как [x0, y0, x1, y1].
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{b.X0, b.Y0, b.X1, b.Y1})
}

// UnmarshalJSON читает рамку из [x0, y0, x1, y1].
func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var v [4]int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = BoundingBox{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}
	return nil
}

// GeometryReport хранит измерения, сделанные при поиске листа.
// Заполняются только поля, дошедшие до проверки.
type GeometryReport struct {
	Reason     string       `json:"reason,omitempty"`
	GreenRatio *float64     `json:"green_ratio,omitempty"`
	AreaRatio  *float64     `json:"area_ratio,omitempty"`
	Solidity   *float64     `json:"solidity,omitempty"`
	BBox       *BoundingBox `json:"bbox,omitempty"`
}

// Float возвращает указатель на копию значения, для необязательных полей отчёта.
func Float(v float64) *float64 {
	return &v
}
