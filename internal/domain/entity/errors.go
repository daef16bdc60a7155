package entity

import "errors"

// Ошибки валидации входных данных. Они прерывают запрос и не повторяются.
var (
	ErrUnsupportedCrop = errors.New("unsupported crop")
	ErrInvalidImage    = errors.New("invalid image uploaded")
	ErrModelNotFound   = errors.New("model file not found")
)
