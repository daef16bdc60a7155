package classifier

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"leaf-doctor/internal/domain/port"
)

// StandardScaler центрирует признаки и делит на стандартное отклонение.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// NewStandardScaler создаёт скейлер. Нулевой масштаб заменяется на 1,
// чтобы признаки с нулевой дисперсией проходили без изменений.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 || len(mean) != len(scale) {
		return nil, fmt.Errorf("scaler mean has %d values, scale has %d", len(mean), len(scale))
	}
	s := append([]float64(nil), scale...)
	for i, v := range s {
		if v == 0 {
			s[i] = 1
		}
	}
	return &StandardScaler{mean: append([]float64(nil), mean...), scale: s}, nil
}

// Transform возвращает (x - mean) / scale.
func (s *StandardScaler) Transform(features []float32) ([]float32, error) {
	if len(features) != len(s.mean) {
		return nil, fmt.Errorf("got %d features, scaler expects %d", len(features), len(s.mean))
	}
	x := toFloat64(features)
	floats.Sub(x, s.mean)
	floats.Div(x, s.scale)

	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out, nil
}

// Проверка реализации интерфейса
var _ port.FeatureScaler = (*StandardScaler)(nil)
