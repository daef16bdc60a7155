//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"leaf-doctor/internal/domain/entity"
)

// Decoder декодирует снимки чистым Go, когда OpenCV недоступен.
// Так проверка входных данных работает и в сборке без тега gocv.
type Decoder struct{}

// NewDecoder создаёт декодер.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode превращает байты изображения в BGR-изображение.
func (d *Decoder) Decode(data []byte) (entity.Image, error) {
	if len(data) == 0 {
		return entity.Image{}, fmt.Errorf("%w: empty upload", entity.ErrInvalidImage)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return entity.Image{}, fmt.Errorf("%w: %v", entity.ErrInvalidImage, err)
	}

	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)

	pix := make([]byte, 0, b.Dx()*b.Dy()*3)
	for i := 0; i < len(rgba.Pix); i += 4 {
		pix = append(pix, rgba.Pix[i+2], rgba.Pix[i+1], rgba.Pix[i])
	}
	img, err := entity.NewImage(b.Dx(), b.Dy(), pix)
	if err != nil {
		return entity.Image{}, fmt.Errorf("%w: %v", entity.ErrInvalidImage, err)
	}
	return img, nil
}
