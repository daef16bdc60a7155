package classifier

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"leaf-doctor/internal/domain/port"
)

// LinearModel линейный классификатор (например, линейный SVM),
// отдающий только значения решающей функции.
//
// Бинарная модель хранит одну строку коэффициентов: класс 1 предсказывается
// при положительном значении.
type LinearModel struct {
	coef      *mat.Dense
	intercept *mat.VecDense
	features  int
}

// NewLinearModel создаёт модель из матрицы коэффициентов (классы x признаки)
// и свободных членов.
func NewLinearModel(coef [][]float64, intercept []float64) (*LinearModel, error) {
	if len(coef) == 0 || len(coef[0]) == 0 {
		return nil, errors.New("empty coefficient matrix")
	}
	if len(intercept) != len(coef) {
		return nil, fmt.Errorf("intercept has %d values, want %d", len(intercept), len(coef))
	}

	rows, cols := len(coef), len(coef[0])
	data := make([]float64, 0, rows*cols)
	for i, row := range coef {
		if len(row) != cols {
			return nil, fmt.Errorf("coefficient row %d has %d values, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}

	return &LinearModel{
		coef:      mat.NewDense(rows, cols, data),
		intercept: mat.NewVecDense(rows, append([]float64(nil), intercept...)),
		features:  cols,
	}, nil
}

// NumFeatures возвращает ожидаемую длину вектора признаков.
func (m *LinearModel) NumFeatures() int {
	return m.features
}

// NumClasses возвращает число классов модели.
func (m *LinearModel) NumClasses() int {
	if r, _ := m.coef.Dims(); r > 1 {
		return r
	}
	return 2
}

func (m *LinearModel) rawScores(features []float32) ([]float64, error) {
	if len(features) != m.features {
		return nil, fmt.Errorf("got %d features, model expects %d", len(features), m.features)
	}
	x := mat.NewVecDense(len(features), toFloat64(features))

	rows, _ := m.coef.Dims()
	out := mat.NewVecDense(rows, nil)
	out.MulVec(m.coef, x)
	out.AddVec(out, m.intercept)
	return out.RawVector().Data, nil
}

// DecisionFunction возвращает оценки по классам. Для бинарной модели
// оценка s разворачивается в [0, s], чтобы softmax давал сигмоиду.
func (m *LinearModel) DecisionFunction(features []float32) ([]float64, error) {
	scores, err := m.rawScores(features)
	if err != nil {
		return nil, err
	}
	if len(scores) == 1 {
		return []float64{0, scores[0]}, nil
	}
	return scores, nil
}

// Predict возвращает индекс класса с наибольшей оценкой.
func (m *LinearModel) Predict(features []float32) (int, error) {
	scores, err := m.DecisionFunction(features)
	if err != nil {
		return 0, err
	}
	// при равенстве выбирается первый класс, как для s == 0 в бинарном случае
	return floats.MaxIdx(scores), nil
}

// LogisticModel логистическая регрессия с откалиброванными вероятностями.
type LogisticModel struct {
	*LinearModel
}

// NewLogisticModel создаёт логистическую модель.
func NewLogisticModel(coef [][]float64, intercept []float64) (*LogisticModel, error) {
	lm, err := NewLinearModel(coef, intercept)
	if err != nil {
		return nil, err
	}
	return &LogisticModel{LinearModel: lm}, nil
}

// PredictProba возвращает вероятности классов: сигмоида для бинарной модели,
// softmax для многоклассовой.
func (m *LogisticModel) PredictProba(features []float32) ([]float64, error) {
	scores, err := m.rawScores(features)
	if err != nil {
		return nil, err
	}
	if len(scores) == 1 {
		p := 1 / (1 + math.Exp(-scores[0]))
		return []float64{1 - p, p}, nil
	}
	return softmax(scores), nil
}

// Predict возвращает наиболее вероятный класс.
func (m *LogisticModel) Predict(features []float32) (int, error) {
	proba, err := m.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(proba), nil
}

// softmaxEpsilon совпадает с нормировкой оценок в сервисе диагностики.
const softmaxEpsilon = 1e-12

func softmax(scores []float64) []float64 {
	out := append([]float64(nil), scores...)
	floats.AddConst(-floats.Max(out), out)
	for i, v := range out {
		out[i] = math.Exp(v)
	}
	floats.Scale(1/(floats.Sum(out)+softmaxEpsilon), out)
	return out
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

// Проверка реализации интерфейсов
var (
	_ port.ScoreClassifier         = (*LinearModel)(nil)
	_ port.ProbabilisticClassifier = (*LogisticModel)(nil)
)
