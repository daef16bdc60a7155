package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

type fakeDetector struct {
	decision *entity.GateDecision
	err      error
	calls    int
}

func (d *fakeDetector) Detect(img entity.Image) (*entity.GateDecision, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	dec := *d.decision
	return &dec, nil
}

type fakeExtractor struct {
	sizes []image.Point
}

func (e *fakeExtractor) Describe(img entity.Image, size image.Point) (entity.Descriptor, error) {
	e.sizes = append(e.sizes, size)
	return entity.Descriptor{1, 2, 3}, nil
}

// plainClassifier умеет только Predict.
type plainClassifier struct {
	class int
	seen  []float32
}

func (c *plainClassifier) Predict(features []float32) (int, error) {
	c.seen = features
	return c.class, nil
}

type probaClassifier struct {
	plainClassifier
	proba []float64
}

func (c *probaClassifier) PredictProba(features []float32) ([]float64, error) {
	return c.proba, nil
}

type scoreClassifier struct {
	plainClassifier
	scores []float64
}

func (c *scoreClassifier) DecisionFunction(features []float32) ([]float64, error) {
	return c.scores, nil
}

// doubleScaler умножает признаки на два.
type doubleScaler struct{}

func (doubleScaler) Transform(features []float32) ([]float32, error) {
	out := make([]float32, len(features))
	for i, v := range features {
		out[i] = v * 2
	}
	return out, nil
}

type fakeRegistry struct {
	models map[string]*port.DiseaseModel
}

func (r *fakeRegistry) Crops() []string {
	crops := make([]string, 0, len(r.models))
	for c := range r.models {
		crops = append(crops, c)
	}
	return crops
}

func (r *fakeRegistry) Supports(crop string) bool {
	_, ok := r.models[crop]
	return ok
}

func (r *fakeRegistry) DiseaseModel(crop string) (*port.DiseaseModel, error) {
	m, ok := r.models[crop]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", entity.ErrUnsupportedCrop, crop)
	}
	return m, nil
}

type fakeDecoder struct{}

func (fakeDecoder) Decode(data []byte) (entity.Image, error) {
	if string(data) != "jpeg" {
		return entity.Image{}, entity.ErrInvalidImage
	}
	return entity.NewSolidImage(100, 100, 43, 200, 43), nil
}

type fakeHistory struct {
	mu      sync.Mutex
	records []entity.DiagnosisRecord
	err     error
}

func (h *fakeHistory) Save(ctx context.Context, rec *entity.DiagnosisRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	rec.ID = fmt.Sprintf("rec-%d", len(h.records)+1)
	h.records = append(h.records, *rec)
	return nil
}

func (h *fakeHistory) Recent(ctx context.Context, limit int) ([]entity.DiagnosisRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit > len(h.records) {
		limit = len(h.records)
	}
	return h.records[:limit], nil
}

var errBroken = errors.New("broken")

func acceptingDetector() *fakeDetector {
	report := entity.GeometryReport{
		GreenRatio: entity.Float(0.6),
		AreaRatio:  entity.Float(0.5),
		Solidity:   entity.Float(0.9),
		BBox:       &entity.BoundingBox{X0: 5, Y0: 5, X1: 95, Y1: 95},
	}
	return &fakeDetector{decision: entity.Accept(entity.NewSolidImage(90, 90, 43, 200, 43), report)}
}

func rejectingDetector(reason string) *fakeDetector {
	return &fakeDetector{decision: entity.Reject(reason, entity.GeometryReport{GreenRatio: entity.Float(0.01)})}
}
