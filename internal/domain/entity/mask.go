package entity

import "fmt"

// MaskForeground значение пикселя переднего плана в маске.
const MaskForeground = 255

// Mask одноканальная бинарная маска того же размера, что и исходное изображение.
type Mask struct {
	Width  int
	Height int
	Pix    []byte
}

// NewMask создаёт пустую (фоновую) маску.
func NewMask(width, height int) Mask {
	return Mask{Width: width, Height: height, Pix: make([]byte, width*height)}
}

// Validate проверяет, что буфер маски точно соответствует размеру.
func (m Mask) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("invalid mask size %dx%d", m.Width, m.Height)
	}
	if want := m.Width * m.Height; len(m.Pix) != want {
		return fmt.Errorf("mask buffer has %d bytes, want %d", len(m.Pix), want)
	}
	return nil
}

// Set помечает пиксель как передний план.
func (m Mask) Set(x, y int) {
	m.Pix[y*m.Width+x] = MaskForeground
}

// Ratio возвращает долю пикселей переднего плана.
func (m Mask) Ratio() float64 {
	total := m.Width * m.Height
	if total <= 0 {
		return 0
	}
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return float64(n) / float64(total)
}
