package classifier

import (
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"gonum.org/v1/gonum/floats"

	"leaf-doctor/internal/domain/port"
)

// ErrModelClosed возвращается моделью после Close.
var ErrModelClosed = errors.New("onnx model is closed")

// OnnxModel классификатор, экспортированный в ONNX, с выходом вероятностей
// формы [1, classes]. Тензоры сессии общие, поэтому запуск сериализуется.
type OnnxModel struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	features     int
	classes      int
}

// NewOnnxModel открывает модель. Среда onnxruntime должна быть инициализирована.
func NewOnnxModel(modelPath, inputName, outputName string, features, classes int) (*OnnxModel, error) {
	if features <= 0 || classes <= 0 {
		return nil, fmt.Errorf("invalid onnx model shape: %d features, %d classes", features, classes)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(features)))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(classes)))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{inputName}, []string{outputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &OnnxModel{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		features:     features,
		classes:      classes,
	}, nil
}

// PredictProba запускает модель и возвращает вероятности классов.
func (m *OnnxModel) PredictProba(features []float32) ([]float64, error) {
	if len(features) != m.features {
		return nil, fmt.Errorf("got %d features, model expects %d", len(features), m.features)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil, ErrModelClosed
	}

	copy(m.inputTensor.GetData(), features)
	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := m.outputTensor.GetData()
	proba := make([]float64, len(out))
	for i, v := range out {
		proba[i] = float64(v)
	}
	return proba, nil
}

// Predict возвращает наиболее вероятный класс.
func (m *OnnxModel) Predict(features []float32) (int, error) {
	proba, err := m.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(proba), nil
}

// Close освобождает сессию и тензоры.
func (m *OnnxModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inputTensor != nil {
		m.inputTensor.Destroy()
		m.inputTensor = nil
	}
	if m.outputTensor != nil {
		m.outputTensor.Destroy()
		m.outputTensor = nil
	}
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	return nil
}

// Проверка реализации интерфейса
var _ port.ProbabilisticClassifier = (*OnnxModel)(nil)
