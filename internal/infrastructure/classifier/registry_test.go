package classifier

import (
	"encoding/json"
	"errors"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

func writeManifest(t *testing.T, dir, name string, m Manifest) {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestRegistry_SupportsAndCrops(t *testing.T) {
	r := NewRegistry(t.TempDir(), []string{"rice", "jute"}, "")
	require.Equal(t, []string{"rice", "jute"}, r.Crops())
	require.True(t, r.Supports("rice"))
	require.False(t, r.Supports("banana"))

	_, err := r.DiseaseModel("banana")
	require.True(t, errors.Is(err, entity.ErrUnsupportedCrop))
}

func TestRegistry_MissingModel(t *testing.T) {
	r := NewRegistry(t.TempDir(), []string{"rice"}, "")
	_, err := r.DiseaseModel("rice")
	require.True(t, errors.Is(err, entity.ErrModelNotFound), "got %v", err)
}

func TestRegistry_LoadsAndMemoizes(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "tomato.json", Manifest{
		ModelName:       "LogReg",
		Kind:            KindLogistic,
		ImgSize:         []int{64, 48},
		Labels:          []string{"healthy", "blight", "mosaic"},
		RequiresScaling: true,
		Scaler:          &ScalerSpec{Mean: []float64{0, 0}, Scale: []float64{1, 1}},
		Coef:            [][]float64{{1, 0}, {0, 1}, {1, 1}},
		Intercept:       []float64{0, 0, 0},
	})

	r := NewRegistry(dir, []string{"tomato"}, "")

	var wg sync.WaitGroup
	models := make([]*port.DiseaseModel, 8)
	errs := make([]error, len(models))
	for i := range models {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			models[i], errs[i] = r.DiseaseModel("tomato")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	for _, m := range models[1:] {
		require.Same(t, models[0], m)
	}

	m := models[0]
	require.Equal(t, "LogReg", m.Name)
	require.Equal(t, image.Pt(64, 48), m.InputSize)
	require.True(t, m.RequiresScaling)
	require.NotNil(t, m.Scaler)
	require.Equal(t, "blight", m.Label(1))
	require.Empty(t, m.Label(7))
	_, ok := m.Classifier.(port.ProbabilisticClassifier)
	require.True(t, ok)
}

func TestRegistry_FailedLoadIsNotCached(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(dir, []string{"potato"}, "")

	_, err := r.DiseaseModel("potato")
	require.Error(t, err)

	writeManifest(t, dir, "potato.json", Manifest{
		Kind:      KindLinear,
		Labels:    []string{"healthy", "late_blight"},
		Coef:      [][]float64{{1}},
		Intercept: []float64{0},
	})
	m, err := r.DiseaseModel("potato")
	require.NoError(t, err)
	require.Equal(t, "Unknown", m.Name)
	require.Equal(t, image.Pt(96, 96), m.InputSize)
	_, ok := m.Classifier.(port.ScoreClassifier)
	require.True(t, ok)
	_, ok = m.Classifier.(port.ProbabilisticClassifier)
	require.False(t, ok)
}

func TestRegistry_BadManifests(t *testing.T) {
	tests := []struct {
		name string
		m    Manifest
	}{
		{"unknown kind", Manifest{Kind: "forest"}},
		{"label mismatch", Manifest{Kind: KindLinear, Labels: []string{"a", "b", "c"}, Coef: [][]float64{{1}}, Intercept: []float64{0}}},
		{"bad size", Manifest{Kind: KindLinear, ImgSize: []int{96}, Coef: [][]float64{{1}}, Intercept: []float64{0}}},
		{"onnx without section", Manifest{Kind: KindOnnx}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, "jute.json", tt.m)
			_, err := NewRegistry(dir, []string{"jute"}, "").DiseaseModel("jute")
			require.Error(t, err)
		})
	}
}

func TestRegistry_LearnedGate(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(dir, nil, "")

	gate, err := r.LearnedGate()
	require.NoError(t, err)
	require.Nil(t, gate)

	writeManifest(t, dir, LeafGateFile, Manifest{
		ModelName: "LeafGate",
		Kind:      KindLogistic,
		ImgSize:   []int{64, 64},
		Scaler:    &ScalerSpec{Mean: []float64{0}, Scale: []float64{2}},
		Coef:      [][]float64{{1}},
		Intercept: []float64{0},
	})
	gate, err = r.LearnedGate()
	require.NoError(t, err)
	require.NotNil(t, gate)
	require.Equal(t, 1, gate.LeafClass)
	require.Equal(t, image.Pt(64, 64), gate.InputSize)
	require.NotNil(t, gate.Scaler)

	require.NoError(t, r.Close())
}
