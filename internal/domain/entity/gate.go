package entity

// Причины отказа шлюза листа.
const (
	ReasonTooSmall        = "Image too small."
	ReasonNotEnoughGreen  = "Not enough green pixels (likely not a leaf)."
	ReasonNoGreenRegion   = "No green region found."
	ReasonRegionTooSmall  = "Green region too small (likely background/no leaf)."
	ReasonLowSolidity     = "Green region shape doesn't look leaf-like (low solidity)."
	ReasonLearnedNotALeaf = "Learned gate: not a leaf image."
)

// GateDecision — итог проверки изображения шлюзом листа.
// Создаётся на каждый входящий снимок и сразу отдаётся вызывающему.
type GateDecision struct {
	OK         bool           `json:"ok"`
	Reason     string         `json:"reason,omitempty"`
	Report     GeometryReport `json:"info"`
	Crop       Image          `json:"-"`
	Confidence *float64       `json:"ml_confidence,omitempty"` // nil, если обученный шлюз не дал вероятность
}

// Accept создаёт положительное решение с вырезанным листом.
func Accept(crop Image, report GeometryReport) *GateDecision {
	return &GateDecision{OK: true, Report: report, Crop: crop}
}

// Reject создаёт отказ с причиной; причина дублируется в отчёт.
func Reject(reason string, report GeometryReport) *GateDecision {
	report.Reason = reason
	return &GateDecision{OK: false, Reason: reason, Report: report}
}

// Descriptor вектор признаков: HOG, затем нормированная цветовая гистограмма.
type Descriptor []float32
