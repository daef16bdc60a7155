package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gonum.org/v1/gonum/floats"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

const defaultHistoryLimit = 20

// DiagnosisService ведёт снимок от байтов файла до метки болезни.
type DiagnosisService struct {
	models    port.ModelRegistry
	decoder   port.ImageDecoder
	gate      *GateService
	extractor port.FeatureExtractor
	history   port.DiagnosisHistory
}

// HealthStatus состояние сервиса для /health.
type HealthStatus struct {
	Status         string   `json:"status"`
	SupportedCrops []string `json:"supported_crops"`
	LeafGateLoaded bool     `json:"leaf_gate_model_loaded"`
}

// NewDiagnosisService создаёт сервис диагностики. history может быть nil.
func NewDiagnosisService(models port.ModelRegistry, decoder port.ImageDecoder, gate *GateService,
	extractor port.FeatureExtractor, history port.DiagnosisHistory) *DiagnosisService {
	return &DiagnosisService{
		models:    models,
		decoder:   decoder,
		gate:      gate,
		extractor: extractor,
		history:   history,
	}
}

// NormalizeCrop приводит название культуры к виду ключа реестра.
func NormalizeCrop(crop string) string {
	return strings.ToLower(strings.TrimSpace(crop))
}

// Supports сообщает, есть ли модель для культуры.
func (s *DiagnosisService) Supports(crop string) bool {
	return s.models != nil && s.models.Supports(NormalizeCrop(crop))
}

// Diagnose проверяет снимок шлюзом листа и классифицирует болезнь.
// Неподдерживаемая культура и битый файл возвращаются ошибкой,
// отказ шлюза возвращается диагнозом с Error и Details.
func (s *DiagnosisService) Diagnose(ctx context.Context, crop string, data []byte) (*entity.Diagnosis, error) {
	if s.models == nil || s.decoder == nil || s.gate == nil || s.extractor == nil {
		return nil, errors.New("diagnosis service is not configured")
	}

	crop = NormalizeCrop(crop)
	model, err := s.models.DiseaseModel(crop)
	if err != nil {
		return nil, err
	}

	img, err := s.decoder.Decode(data)
	if err != nil {
		return nil, err
	}

	decision, err := s.gate.Gate(ctx, img)
	if err != nil {
		return nil, err
	}
	if !decision.OK {
		d := &entity.Diagnosis{Crop: crop, Error: entity.MsgUploadLeafOnly, Details: decision}
		s.remember(ctx, d)
		return d, nil
	}

	d, err := s.classify(model, decision)
	if err != nil {
		return nil, err
	}
	d.Crop = crop
	s.remember(ctx, d)
	return d, nil
}

func (s *DiagnosisService) classify(model *port.DiseaseModel, decision *entity.GateDecision) (*entity.Diagnosis, error) {
	features, err := s.extractor.Describe(decision.Crop, model.InputSize)
	if err != nil {
		return nil, fmt.Errorf("describe leaf: %w", err)
	}

	x := []float32(features)
	if model.RequiresScaling && model.Scaler != nil {
		if x, err = model.Scaler.Transform(x); err != nil {
			return nil, fmt.Errorf("scale features: %w", err)
		}
	}

	idx, err := model.Classifier.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	probs, err := probabilities(model.Classifier, x)
	if err != nil {
		return nil, err
	}

	d := &entity.Diagnosis{
		Model:      model.Name,
		Prediction: model.Label(idx),
		TopK:       []entity.LabelScore{},
		LeafGate: &entity.LeafGateInfo{
			OpenCVInfo:   decision.Report,
			MLConfidence: decision.Confidence,
		},
	}
	if len(probs) > 0 {
		d.Confidence = entity.Float(floats.Max(probs))
		d.TopK = TopK(probs, model.Labels, topK)
	}
	return d, nil
}

// probabilities берёт родные вероятности классификатора или нормирует
// оценки решающей функции через softmax. Без обеих возможностей возвращает nil.
func probabilities(c port.Classifier, x []float32) ([]float64, error) {
	switch m := c.(type) {
	case port.ProbabilisticClassifier:
		probs, err := m.PredictProba(x)
		if err != nil {
			return nil, fmt.Errorf("predict probabilities: %w", err)
		}
		return probs, nil
	case port.ScoreClassifier:
		scores, err := m.DecisionFunction(x)
		if err != nil {
			return nil, fmt.Errorf("decision function: %w", err)
		}
		return Softmax(scores), nil
	default:
		return nil, nil
	}
}

// remember пишет исход в историю; сбой хранилища только логируется.
func (s *DiagnosisService) remember(ctx context.Context, d *entity.Diagnosis) {
	if s.history == nil {
		return
	}
	rec := d.Record()
	if err := s.history.Save(ctx, &rec); err != nil {
		log.Printf("Error saving diagnosis history: %v", err)
		return
	}
	d.ID = rec.ID
}

// Health возвращает состояние сервиса.
func (s *DiagnosisService) Health() HealthStatus {
	h := HealthStatus{Status: "ok", SupportedCrops: []string{}}
	if s.models != nil {
		h.SupportedCrops = s.models.Crops()
	}
	if s.gate != nil {
		h.LeafGateLoaded = s.gate.HasLearnedGate()
	}
	return h
}

// History возвращает последние диагнозы. limit <= 0 заменяется значением по умолчанию.
func (s *DiagnosisService) History(ctx context.Context, limit int) ([]entity.DiagnosisRecord, error) {
	if s.history == nil {
		return []entity.DiagnosisRecord{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.history.Recent(ctx, limit)
}
