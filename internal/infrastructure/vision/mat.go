//go:build gocv
// +build gocv

package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"leaf-doctor/internal/domain/entity"
)

// toMat оборачивает BGR-буфер изображения в gocv.Mat без копирования.
// Полученный Mat используется только для чтения. Длина буфера проверяется
// до обёртки: OpenCV читает память по заявленному размеру.
func toMat(img entity.Image) (gocv.Mat, error) {
	if err := img.Validate(); err != nil {
		return gocv.NewMat(), err
	}
	mat, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, img.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("wrap image: %w", err)
	}
	return mat, nil
}

// maskToMat оборачивает маску в одноканальный gocv.Mat.
func maskToMat(mask entity.Mask) (gocv.Mat, error) {
	if err := mask.Validate(); err != nil {
		return gocv.NewMat(), err
	}
	mat, err := gocv.NewMatFromBytes(mask.Height, mask.Width, gocv.MatTypeCV8UC1, mask.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("wrap mask: %w", err)
	}
	return mat, nil
}

// fromMat копирует трёхканальный Mat в entity.Image.
func fromMat(mat gocv.Mat) entity.Image {
	return entity.Image{Width: mat.Cols(), Height: mat.Rows(), Pix: mat.ToBytes()}
}

// maskFromMat копирует одноканальный Mat в entity.Mask.
func maskFromMat(mat gocv.Mat) entity.Mask {
	return entity.Mask{Width: mat.Cols(), Height: mat.Rows(), Pix: mat.ToBytes()}
}

// fromMatBounds возвращает прямоугольник Mat.
func fromMatBounds(mat gocv.Mat) image.Rectangle {
	return image.Rect(0, 0, mat.Cols(), mat.Rows())
}
