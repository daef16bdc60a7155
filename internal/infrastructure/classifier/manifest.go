package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
)

// Виды моделей в манифесте.
const (
	KindLinear   = "linear"
	KindLogistic = "logistic"
	KindOnnx     = "onnx"
)

// Manifest описывает сохранённую модель: классификатор, скейлер и метки.
type Manifest struct {
	ModelName       string      `json:"model_name"`
	Kind            string      `json:"kind"`
	ImgSize         []int       `json:"img_size"`
	Labels          []string    `json:"labels"`
	RequiresScaling bool        `json:"requires_scaling"`
	Scaler          *ScalerSpec `json:"scaler,omitempty"`
	Coef            [][]float64 `json:"coef,omitempty"`
	Intercept       []float64   `json:"intercept,omitempty"`
	Onnx            *OnnxSpec   `json:"onnx,omitempty"`
	LeafClass       *int        `json:"leaf_class,omitempty"`
}

// ScalerSpec параметры StandardScaler.
type ScalerSpec struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// OnnxSpec описывает файл ONNX-модели и имена её входа/выхода.
type OnnxSpec struct {
	Path     string `json:"path"`
	Input    string `json:"input"`
	Output   string `json:"output"`
	Features int    `json:"features"`
}

// ReadManifest читает манифест из JSON-файла.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if m.ModelName == "" {
		m.ModelName = "Unknown"
	}
	return &m, nil
}

// InputSize возвращает размер входа модели, по умолчанию 96x96.
func (m *Manifest) InputSize() (image.Point, error) {
	switch len(m.ImgSize) {
	case 0:
		return image.Pt(96, 96), nil
	case 2:
		if m.ImgSize[0] <= 0 || m.ImgSize[1] <= 0 {
			return image.Point{}, fmt.Errorf("invalid img_size %v", m.ImgSize)
		}
		return image.Pt(m.ImgSize[0], m.ImgSize[1]), nil
	default:
		return image.Point{}, fmt.Errorf("img_size must have 2 values, got %v", m.ImgSize)
	}
}

// classes возвращает число классов, заявленное манифестом.
func (m *Manifest) classes() int {
	if len(m.Labels) > 0 {
		return len(m.Labels)
	}
	return 2
}

// onnxPath разрешает путь к ONNX-файлу относительно каталога манифеста.
func (m *Manifest) onnxPath(dir string) (string, error) {
	if m.Onnx == nil || m.Onnx.Path == "" {
		return "", errors.New("onnx section is missing")
	}
	if filepath.IsAbs(m.Onnx.Path) {
		return m.Onnx.Path, nil
	}
	return filepath.Join(dir, m.Onnx.Path), nil
}
