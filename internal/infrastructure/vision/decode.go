//go:build gocv
// +build gocv

package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

// Decoder декодирует загруженные снимки средствами OpenCV.
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

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil || mat.Empty() {
		if !mat.Empty() {
			mat.Close()
		}
		return entity.Image{}, entity.ErrInvalidImage
	}
	defer mat.Close()

	return fromMat(mat), nil
}

// Проверка реализации интерфейса
var _ port.ImageDecoder = (*Decoder)(nil)
