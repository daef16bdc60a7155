//go:build gocv
// +build gocv

package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"leaf-doctor/internal/domain/entity"
)

const geometryEpsilon = 1e-9

// Analyzer проверяет, похожа ли крупнейшая зелёная область на один лист.
type Analyzer struct {
	params AnalyzerParams
}

// NewAnalyzer создаёт анализатор формы с заданными порогами.
func NewAnalyzer(params AnalyzerParams) *Analyzer {
	return &Analyzer{params: params}
}

// Analyze применяет проверки по порядку; первая проваленная даёт отказ
// с заполненными к этому моменту полями отчёта.
func (a *Analyzer) Analyze(img entity.Image, mask entity.Mask) (*entity.GateDecision, error) {
	if a.tooSmall(img) {
		return entity.Reject(entity.ReasonTooSmall, entity.GeometryReport{}), nil
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if mask.Width != img.Width || mask.Height != img.Height {
		return nil, fmt.Errorf("mask size %dx%d does not match image %dx%d",
			mask.Width, mask.Height, img.Width, img.Height)
	}

	m, err := maskToMat(mask)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	return a.analyzeMat(img, m), nil
}

func (a *Analyzer) tooSmall(img entity.Image) bool {
	return img.Width < a.params.MinSide || img.Height < a.params.MinSide
}

func (a *Analyzer) analyzeMat(img entity.Image, mask gocv.Mat) *entity.GateDecision {
	p := a.params
	w, h := img.Width, img.Height
	imgArea := float64(w * h)

	greenRatio := float64(gocv.CountNonZero(mask)) / (imgArea + geometryEpsilon)
	if greenRatio < p.MinGreenRatio {
		return entity.Reject(entity.ReasonNotEnoughGreen, entity.GeometryReport{GreenRatio: entity.Float(greenRatio)})
	}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() == 0 {
		return entity.Reject(entity.ReasonNoGreenRegion, entity.GeometryReport{})
	}

	best, area := 0, -1.0
	for i := 0; i < contours.Size(); i++ {
		if ca := gocv.ContourArea(contours.At(i)); ca > area {
			best, area = i, ca
		}
	}
	cnt := contours.At(best)

	areaRatio := area / (imgArea + geometryEpsilon)
	if areaRatio < p.MinAreaRatio {
		return entity.Reject(entity.ReasonRegionTooSmall, entity.GeometryReport{AreaRatio: entity.Float(areaRatio)})
	}

	// Рваные, звёздчатые и шумовые области имеют низкую плотность.
	solidity := area / (hullArea(cnt) + geometryEpsilon)
	if solidity < p.MinSolidity {
		return entity.Reject(entity.ReasonLowSolidity, entity.GeometryReport{Solidity: entity.Float(solidity)})
	}

	box := padBox(gocv.BoundingRect(cnt), p.PadFraction, w, h)
	bbox := entity.BoxFromRect(box)
	return entity.Accept(img.Crop(box), entity.GeometryReport{
		GreenRatio: entity.Float(greenRatio),
		AreaRatio:  entity.Float(areaRatio),
		Solidity:   entity.Float(solidity),
		BBox:       &bbox,
	})
}

// hullArea возвращает площадь выпуклой оболочки контура.
func hullArea(cnt gocv.PointVector) float64 {
	hull := gocv.NewMat()
	defer hull.Close()
	gocv.ConvexHull(cnt, &hull, false, true)

	pts := gocv.NewPointVectorFromMat(hull)
	defer pts.Close()
	return gocv.ContourArea(pts)
}
