package app

import (
	"context"
	"errors"
	"fmt"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

// GateService двухэтапный шлюз листа: правиловый детектор и,
// если настроен, обученный бинарный классификатор лист/не лист.
type GateService struct {
	detector  port.LeafDetector
	extractor port.FeatureExtractor
	learned   *port.LearnedGate
}

// NewGateService создаёт шлюз. learned может быть nil.
func NewGateService(detector port.LeafDetector, extractor port.FeatureExtractor, learned *port.LearnedGate) *GateService {
	return &GateService{
		detector:  detector,
		extractor: extractor,
		learned:   learned,
	}
}

// HasLearnedGate сообщает, подключён ли обученный этап.
func (s *GateService) HasLearnedGate() bool {
	return s.learned != nil && s.learned.Classifier != nil
}

// Gate прогоняет снимок через оба этапа.
// Отказ правилового этапа окончательный, второй этап его не переопределяет.
func (s *GateService) Gate(ctx context.Context, img entity.Image) (*entity.GateDecision, error) {
	if s.detector == nil {
		return nil, errors.New("leaf detector is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decision, err := s.detector.Detect(img)
	if err != nil {
		return nil, fmt.Errorf("detect leaf: %w", err)
	}
	if !decision.OK || !s.HasLearnedGate() {
		return decision, nil
	}

	return s.learnedStage(ctx, decision)
}

func (s *GateService) learnedStage(ctx context.Context, decision *entity.GateDecision) (*entity.GateDecision, error) {
	if s.extractor == nil {
		return nil, errors.New("feature extractor is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := s.learned
	features, err := s.extractor.Describe(decision.Crop, g.InputSize)
	if err != nil {
		return nil, fmt.Errorf("describe crop for learned gate: %w", err)
	}

	x := []float32(features)
	if g.Scaler != nil {
		if x, err = g.Scaler.Transform(x); err != nil {
			return nil, fmt.Errorf("scale learned gate features: %w", err)
		}
	}

	pred, err := g.Classifier.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("learned gate predict: %w", err)
	}

	// отчёт первого этапа отдаётся как есть, без причины второго
	if pred != g.LeafClass {
		return &entity.GateDecision{OK: false, Reason: entity.ReasonLearnedNotALeaf, Report: decision.Report}, nil
	}

	// уверенность есть только у вероятностных классификаторов
	var confidence *float64
	if pc, ok := g.Classifier.(port.ProbabilisticClassifier); ok {
		proba, err := pc.PredictProba(x)
		if err != nil {
			return nil, fmt.Errorf("learned gate probabilities: %w", err)
		}
		if g.LeafClass >= 0 && g.LeafClass < len(proba) {
			confidence = entity.Float(proba[g.LeafClass])
		}
	}

	decision.Confidence = confidence
	return decision, nil
}
