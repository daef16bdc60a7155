package entity

import (
	"encoding/json"
	"time"
)

// MsgUploadLeafOnly ошибка для пользователя, когда шлюз отклонил снимок.
const MsgUploadLeafOnly = "Please upload a clear leaf photo only."

// LabelScore метка болезни с оценкой.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// LeafGateInfo диагностика шлюза в успешном ответе.
type LeafGateInfo struct {
	OpenCVInfo   GeometryReport `json:"opencv_info"`
	MLConfidence *float64       `json:"ml_confidence"`
}

// Diagnosis результат обработки снимка для выбранной культуры.
// При отказе шлюза заполнены Error и Details, иначе предсказание.
type Diagnosis struct {
	ID         string        `json:"id,omitempty"`
	Crop       string        `json:"crop"`
	Model      string        `json:"model,omitempty"`
	Prediction string        `json:"prediction,omitempty"`
	Confidence *float64      `json:"confidence,omitempty"`
	TopK       []LabelScore  `json:"topk,omitempty"`
	LeafGate   *LeafGateInfo `json:"leaf_gate,omitempty"`
	Error      string        `json:"error,omitempty"`
	Details    *GateDecision `json:"details,omitempty"`
}

// Rejected сообщает, что снимок не прошёл шлюз листа.
func (d *Diagnosis) Rejected() bool {
	return d.Details != nil && !d.Details.OK
}

// MarshalJSON отдаёт при отказе только error и details, а при успехе
// всегда пишет confidence (возможно null) и topk (возможно пустой).
func (d Diagnosis) MarshalJSON() ([]byte, error) {
	if d.Rejected() {
		return json.Marshal(struct {
			ID      string        `json:"id,omitempty"`
			Error   string        `json:"error"`
			Details *GateDecision `json:"details"`
		}{d.ID, d.Error, d.Details})
	}

	topk := d.TopK
	if topk == nil {
		topk = []LabelScore{}
	}
	return json.Marshal(struct {
		ID         string        `json:"id,omitempty"`
		Crop       string        `json:"crop"`
		Model      string        `json:"model"`
		Prediction string        `json:"prediction"`
		Confidence *float64      `json:"confidence"`
		TopK       []LabelScore  `json:"topk"`
		LeafGate   *LeafGateInfo `json:"leaf_gate"`
	}{d.ID, d.Crop, d.Model, d.Prediction, d.Confidence, topk, d.LeafGate})
}

// DiagnosisRecord запись истории диагнозов.
type DiagnosisRecord struct {
	ID         string    `json:"id"`
	Crop       string    `json:"crop"`
	Model      string    `json:"model,omitempty"`
	Prediction string    `json:"prediction,omitempty"`
	Confidence *float64  `json:"confidence,omitempty"`
	Accepted   bool      `json:"accepted"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Record сворачивает диагноз в запись истории.
func (d *Diagnosis) Record() DiagnosisRecord {
	rec := DiagnosisRecord{
		ID:         d.ID,
		Crop:       d.Crop,
		Model:      d.Model,
		Prediction: d.Prediction,
		Confidence: d.Confidence,
		Accepted:   !d.Rejected(),
	}
	if d.Details != nil {
		rec.Reason = d.Details.Reason
	}
	return rec
}
