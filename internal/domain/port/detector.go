package port

import (
	"image"

	"leaf-doctor/internal/domain/entity"
)

// LeafDetector интерфейс первого (правилового) этапа шлюза листа
type LeafDetector interface {
	// Detect сегментирует зелёные области и проверяет их геометрию.
	// Отказ шлюза возвращается как решение, ошибка означает только сбой инфраструктуры.
	Detect(img entity.Image) (*entity.GateDecision, error)
}

// FeatureExtractor интерфейс построителя дескриптора
type FeatureExtractor interface {
	// Describe приводит изображение к размеру size и строит дескриптор
	Describe(img entity.Image, size image.Point) (entity.Descriptor, error)
}

// ImageDecoder интерфейс декодера загруженных снимков
type ImageDecoder interface {
	// Decode превращает байты файла в BGR-изображение или возвращает entity.ErrInvalidImage
	Decode(data []byte) (entity.Image, error)
}

// LeafHighlighter интерфейс подсветки найденного листа на исходном снимке
type LeafHighlighter interface {
	// Highlight рисует рамку box на снимке и возвращает JPEG
	Highlight(data []byte, box entity.BoundingBox) ([]byte, error)
}
