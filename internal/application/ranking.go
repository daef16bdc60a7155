package app

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"leaf-doctor/internal/domain/entity"
)

const (
	topK           = 5
	softmaxEpsilon = 1e-12
)

// Softmax переводит оценки решающей функции в вероятности.
// Перед экспонентой вычитается максимум, знаменатель защищён эпсилоном.
func Softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	out := make([]float64, len(scores))
	copy(out, scores)
	floats.AddConst(-floats.Max(out), out)
	for i, v := range out {
		out[i] = math.Exp(v)
	}
	floats.Scale(1/(floats.Sum(out)+softmaxEpsilon), out)
	return out
}

// TopK возвращает k лучших меток по убыванию оценки.
// Классы без метки пропускаются, при равенстве порядок классов сохраняется.
func TopK(probs []float64, labels []string, k int) []entity.LabelScore {
	n := len(probs)
	if len(labels) < n {
		n = len(labels)
	}

	ranked := make([]entity.LabelScore, 0, n)
	for i := 0; i < n; i++ {
		ranked = append(ranked, entity.LabelScore{Label: labels[i], Score: probs[i]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	if k >= 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
