package classifier

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"path/filepath"
	"slices"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

// LeafGateFile имя манифеста обученного шлюза листа.
const LeafGateFile = "leaf_gate.json"

// Registry хранит модели, загружаемые из каталога манифестов.
// Модель культуры грузится при первом обращении и дальше не меняется;
// неудачная загрузка не кешируется.
type Registry struct {
	dir     string
	crops   []string
	onnxLib string
	entries map[string]*entry

	ortOnce sync.Once
	ortErr  error

	mu      sync.Mutex
	closers []io.Closer
}

type entry struct {
	mu    sync.Mutex
	model *port.DiseaseModel
}

// NewRegistry создаёт реестр для фиксированного набора культур.
func NewRegistry(dir string, crops []string, onnxLib string) *Registry {
	r := &Registry{
		dir:     dir,
		crops:   append([]string(nil), crops...),
		onnxLib: onnxLib,
		entries: make(map[string]*entry, len(crops)),
	}
	for _, c := range crops {
		r.entries[c] = &entry{}
	}
	return r
}

// Crops возвращает поддерживаемые культуры.
func (r *Registry) Crops() []string {
	return slices.Clone(r.crops)
}

// Supports сообщает, поддерживается ли культура.
func (r *Registry) Supports(crop string) bool {
	_, ok := r.entries[crop]
	return ok
}

// DiseaseModel возвращает модель болезней для культуры.
func (r *Registry) DiseaseModel(crop string) (*port.DiseaseModel, error) {
	e, ok := r.entries[crop]
	if !ok {
		return nil, fmt.Errorf("%w '%s'. Use one of: %v", entity.ErrUnsupportedCrop, crop, r.crops)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model != nil {
		return e.model, nil
	}

	path := filepath.Join(r.dir, crop+".json")
	m, err := ReadManifest(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w for '%s': %s", entity.ErrModelNotFound, crop, path)
		}
		return nil, err
	}

	model, err := r.build(m)
	if err != nil {
		return nil, fmt.Errorf("load model for '%s': %w", crop, err)
	}

	log.Printf("Loaded %s model %q (%d labels) from %s", crop, model.Name, len(model.Labels), path)
	e.model = model
	return model, nil
}

// LearnedGate загружает обученный шлюз листа. Отсутствие файла не ошибка:
// возвращается nil, и работает только правиловый этап.
func (r *Registry) LearnedGate() (*port.LearnedGate, error) {
	path := filepath.Join(r.dir, LeafGateFile)
	m, err := ReadManifest(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	model, err := r.build(m)
	if err != nil {
		return nil, fmt.Errorf("load leaf gate: %w", err)
	}

	leafClass := 1
	if m.LeafClass != nil {
		leafClass = *m.LeafClass
	}

	log.Printf("Loaded learned leaf gate %q from %s", model.Name, path)
	return &port.LearnedGate{
		Classifier: model.Classifier,
		Scaler:     model.Scaler,
		InputSize:  model.InputSize,
		LeafClass:  leafClass,
	}, nil
}

// build собирает модель по манифесту.
func (r *Registry) build(m *Manifest) (*port.DiseaseModel, error) {
	size, err := m.InputSize()
	if err != nil {
		return nil, err
	}

	var clf port.Classifier
	switch m.Kind {
	case KindLinear:
		lm, err := NewLinearModel(m.Coef, m.Intercept)
		if err != nil {
			return nil, err
		}
		if err := checkLabels(m, lm.NumClasses()); err != nil {
			return nil, err
		}
		clf = lm
	case KindLogistic:
		lm, err := NewLogisticModel(m.Coef, m.Intercept)
		if err != nil {
			return nil, err
		}
		if err := checkLabels(m, lm.NumClasses()); err != nil {
			return nil, err
		}
		clf = lm
	case KindOnnx:
		om, err := r.openOnnx(m)
		if err != nil {
			return nil, err
		}
		clf = om
	default:
		return nil, fmt.Errorf("unknown model kind %q", m.Kind)
	}

	model := &port.DiseaseModel{
		Name:            m.ModelName,
		Classifier:      clf,
		RequiresScaling: m.RequiresScaling,
		Labels:          m.Labels,
		InputSize:       size,
	}
	if m.Scaler != nil {
		scaler, err := NewStandardScaler(m.Scaler.Mean, m.Scaler.Scale)
		if err != nil {
			return nil, err
		}
		model.Scaler = scaler
	}
	return model, nil
}

func checkLabels(m *Manifest, classes int) error {
	if len(m.Labels) > 0 && len(m.Labels) != classes {
		return fmt.Errorf("manifest has %d labels, model has %d classes", len(m.Labels), classes)
	}
	return nil
}

func (r *Registry) openOnnx(m *Manifest) (*OnnxModel, error) {
	path, err := m.onnxPath(r.dir)
	if err != nil {
		return nil, err
	}

	r.ortOnce.Do(func() {
		if r.onnxLib != "" {
			ort.SetSharedLibraryPath(r.onnxLib)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			r.ortErr = fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	})
	if r.ortErr != nil {
		return nil, r.ortErr
	}

	input, output := m.Onnx.Input, m.Onnx.Output
	if input == "" {
		input = "input"
	}
	if output == "" {
		output = "probabilities"
	}

	om, err := NewOnnxModel(path, input, output, m.Onnx.Features, m.classes())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.closers = append(r.closers, om)
	r.mu.Unlock()
	return om, nil
}

// Close освобождает ONNX-сессии и среду onnxruntime.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	r.closers = nil

	if ort.IsInitialized() {
		errs = append(errs, ort.DestroyEnvironment())
	}
	return errors.Join(errs...)
}

// Проверка реализации интерфейса
var _ port.ModelRegistry = (*Registry)(nil)
