package entity

import (
	"fmt"
	"image"
)

// Image цветное изображение в порядке каналов BGR, по 8 бит на канал.
// Пиксели лежат построчно без выравнивания: stride = Width*3.
// После создания изображение не изменяется, все этапы возвращают новые.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// NewImage проверяет размер буфера и создаёт изображение.
func NewImage(width, height int, pix []byte) (Image, error) {
	if width <= 0 || height <= 0 {
		return Image{}, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if len(pix) != width*height*3 {
		return Image{}, fmt.Errorf("pixel buffer has %d bytes, want %d", len(pix), width*height*3)
	}
	return Image{Width: width, Height: height, Pix: pix}, nil
}

// NewSolidImage создаёт изображение, залитое одним цветом.
func NewSolidImage(width, height int, b, g, r uint8) Image {
	pix := make([]byte, width*height*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i] = b
		pix[i+1] = g
		pix[i+2] = r
	}
	return Image{Width: width, Height: height, Pix: pix}
}

// Empty сообщает, что изображение не содержит пикселей.
func (img Image) Empty() bool {
	return img.Width <= 0 || img.Height <= 0 || len(img.Pix) == 0
}

// Validate проверяет, что буфер точно соответствует размеру.
// Поля экспортированы, поэтому изображение могли собрать в обход NewImage.
func (img Image) Validate() error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", img.Width, img.Height)
	}
	if want := img.Width * img.Height * 3; len(img.Pix) != want {
		return fmt.Errorf("pixel buffer has %d bytes, want %d", len(img.Pix), want)
	}
	return nil
}

// Bounds возвращает прямоугольник изображения.
func (img Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// At возвращает каналы пикселя (x, y).
func (img Image) At(x, y int) (b, g, r uint8) {
	i := (y*img.Width + x) * 3
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2]
}

// Crop копирует область rect (обрезанную по границам) в новое изображение.
func (img Image) Crop(rect image.Rectangle) Image {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return Image{}
	}

	w, h := rect.Dx(), rect.Dy()
	pix := make([]byte, w*h*3)
	rowLen := w * 3
	for y := 0; y < h; y++ {
		src := ((rect.Min.Y+y)*img.Width + rect.Min.X) * 3
		copy(pix[y*rowLen:(y+1)*rowLen], img.Pix[src:src+rowLen])
	}
	return Image{Width: w, Height: h, Pix: pix}
}
