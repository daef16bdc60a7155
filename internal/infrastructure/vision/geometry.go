package vision

import "image"

// padBox расширяет рамку на долю pad её ширины/высоты с каждой стороны
// и обрезает по границам изображения w x h.
func padBox(r image.Rectangle, pad float64, w, h int) image.Rectangle {
	px := int(float64(r.Dx()) * pad)
	py := int(float64(r.Dy()) * pad)
	return image.Rect(
		max(0, r.Min.X-px),
		max(0, r.Min.Y-py),
		min(w, r.Max.X+px),
		min(h, r.Max.Y+py),
	)
}
