package port

import "image"

// Classifier обученный классификатор, предсказывающий индекс класса
type Classifier interface {
	Predict(features []float32) (int, error)
}

// ProbabilisticClassifier умеет отдавать откалиброванные вероятности классов
type ProbabilisticClassifier interface {
	Classifier
	PredictProba(features []float32) ([]float64, error)
}

// ScoreClassifier отдаёт только значения решающей функции по классам
type ScoreClassifier interface {
	Classifier
	DecisionFunction(features []float32) ([]float64, error)
}

// FeatureScaler преобразование признаков, парное классификатору
type FeatureScaler interface {
	Transform(features []float32) ([]float32, error)
}

// LearnedGate обученный бинарный шлюз лист/не лист.
// nil означает, что шлюз не настроен и работает только правиловый этап.
type LearnedGate struct {
	Classifier Classifier
	Scaler     FeatureScaler // может быть nil
	InputSize  image.Point
	LeafClass  int
}

// DiseaseModel загруженная модель болезней для одной культуры
type DiseaseModel struct {
	Name            string
	Classifier      Classifier
	Scaler          FeatureScaler
	RequiresScaling bool
	Labels          []string
	InputSize       image.Point
}

// Label возвращает метку по индексу класса
func (m *DiseaseModel) Label(idx int) string {
	if idx >= 0 && idx < len(m.Labels) {
		return m.Labels[idx]
	}
	return ""
}

// ModelRegistry реестр загруженных моделей. Модели неизменяемы после загрузки.
type ModelRegistry interface {
	Crops() []string
	Supports(crop string) bool
	DiseaseModel(crop string) (*DiseaseModel, error)
}
