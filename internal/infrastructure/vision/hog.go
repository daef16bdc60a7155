package vision

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	hogEpsilon   = 1e-5
	colorEpsilon = 1e-8
)

// HOG строит гистограмму ориентированных градиентов по полутоновому изображению
// width x height (один байт на пиксель).
//
// Градиенты считаются центральными разностями, на краях нулевые. Ориентации беззнаковые
// (0–180°), голос пикселя равен модулю градиента, без интерполяции между корзинами.
// Гистограмма ячейки делится на число пикселей в ячейке. Блоки идут с шагом
// в одну ячейку и нормируются по L2-Hys. Порядок элементов: блок (строка,
// столбец), ячейка внутри блока (строка, столбец), ориентация.
func HOG(gray []byte, width, height int, p DescriptorParams) []float64 {
	cs := p.CellSize
	cellsX, cellsY := width/cs, height/cs
	blocksX, blocksY := cellsX-p.BlockSize+1, cellsY-p.BlockSize+1
	if blocksX <= 0 || blocksY <= 0 {
		return nil
	}

	cells := cellHistograms(gray, width, height, p)

	blockLen := p.BlockSize * p.BlockSize * p.Orientations
	out := make([]float64, 0, blocksX*blocksY*blockLen)
	block := make([]float64, blockLen)
	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			n := 0
			for r := 0; r < p.BlockSize; r++ {
				for c := 0; c < p.BlockSize; c++ {
					off := ((by+r)*cellsX + bx + c) * p.Orientations
					n += copy(block[n:], cells[off:off+p.Orientations])
				}
			}
			l2Hys(block, p.ClipValue)
			out = append(out, block...)
		}
	}
	return out
}

// cellHistograms считает гистограммы ориентаций для всех целых ячеек.
func cellHistograms(gray []byte, width, height int, p DescriptorParams) []float64 {
	cs := p.CellSize
	cellsX, cellsY := width/cs, height/cs
	hist := make([]float64, cellsX*cellsY*p.Orientations)
	binWidth := 180.0 / float64(p.Orientations)

	at := func(x, y int) float64 { return float64(gray[y*width+x]) }

	for y := 0; y < cellsY*cs; y++ {
		for x := 0; x < cellsX*cs; x++ {
			var gx, gy float64
			if x > 0 && x < width-1 {
				gx = at(x+1, y) - at(x-1, y)
			}
			if y > 0 && y < height-1 {
				gy = at(x, y+1) - at(x, y-1)
			}
			mag := math.Hypot(gx, gy)
			if mag == 0 {
				continue
			}

			angle := math.Mod(math.Atan2(gy, gx)*180/math.Pi, 180)
			if angle < 0 {
				angle += 180
			}
			bin := int(angle / binWidth)
			if bin >= p.Orientations {
				bin = p.Orientations - 1
			}

			cell := (y/cs)*cellsX + x/cs
			hist[cell*p.Orientations+bin] += mag
		}
	}

	floats.Scale(1/float64(cs*cs), hist)
	return hist
}

// l2Hys: L2-нормировка, отсечение по clip, повторная L2-нормировка.
func l2Hys(block []float64, clip float64) {
	floats.Scale(1/math.Sqrt(floats.Dot(block, block)+hogEpsilon*hogEpsilon), block)
	for i, v := range block {
		if v > clip {
			block[i] = clip
		}
	}
	floats.Scale(1/math.Sqrt(floats.Dot(block, block)+hogEpsilon*hogEpsilon), block)
}

// ColorHistogram строит совместную гистограмму H x S x V по HSV-буферу
// (три байта на пиксель, H в шкале 0–180) и нормирует её на сумму отсчётов.
// Индекс корзины: h*bins*bins + s*bins + v.
func ColorHistogram(hsv []byte, bins int) []float64 {
	hist := make([]float64, bins*bins*bins)
	for i := 0; i+2 < len(hsv); i += 3 {
		hb := int(hsv[i]) * bins / 180
		if hb >= bins {
			hb = bins - 1
		}
		sb := int(hsv[i+1]) * bins / 256
		vb := int(hsv[i+2]) * bins / 256
		hist[hb*bins*bins+sb*bins+vb]++
	}
	floats.Scale(1/(floats.Sum(hist)+colorEpsilon), hist)
	return hist
}

// concat склеивает HOG и цветовую гистограмму в дескриптор float32.
func concat(hog, color []float64) []float32 {
	out := make([]float32, 0, len(hog)+len(color))
	for _, v := range hog {
		out = append(out, float32(v))
	}
	for _, v := range color {
		out = append(out, float32(v))
	}
	return out
}
