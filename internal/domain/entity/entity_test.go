package entity

import (
	"encoding/json"
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewImage_ValidatesBuffer(t *testing.T) {
	_, err := NewImage(2, 2, make([]byte, 12))
	require.NoError(t, err)

	_, err = NewImage(2, 2, make([]byte, 11))
	require.Error(t, err)

	_, err = NewImage(0, 2, nil)
	require.Error(t, err)
}

func TestImage_Validate(t *testing.T) {
	tests := []struct {
		name string
		img  Image
		ok   bool
	}{
		{"solid", NewSolidImage(4, 3, 1, 2, 3), true},
		{"short buffer", Image{Width: 100, Height: 100, Pix: make([]byte, 10)}, false},
		{"long buffer", Image{Width: 2, Height: 2, Pix: make([]byte, 13)}, false},
		{"zero size", Image{Pix: make([]byte, 3)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.img.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestMask_Validate(t *testing.T) {
	require.NoError(t, NewMask(5, 4).Validate())
	require.Error(t, Mask{Width: 100, Height: 100, Pix: make([]byte, 10)}.Validate())
	require.Error(t, Mask{}.Validate())
}

func TestImage_CropCopiesRegion(t *testing.T) {
	img := NewSolidImage(4, 3, 0, 0, 0)
	// помечаем пиксель (2, 1)
	i := (1*4 + 2) * 3
	img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 1, 2, 3

	crop := img.Crop(image.Rect(1, 1, 3, 3))
	require.Equal(t, 2, crop.Width)
	require.Equal(t, 2, crop.Height)
	b, g, r := crop.At(1, 0)
	require.Equal(t, []uint8{1, 2, 3}, []uint8{b, g, r})

	// исходник не разделяет память с вырезкой
	crop.Pix[3] = 9
	require.Equal(t, uint8(1), img.Pix[i])
}

func TestImage_CropClampsToBounds(t *testing.T) {
	img := NewSolidImage(10, 10, 5, 5, 5)
	crop := img.Crop(image.Rect(-5, -5, 4, 20))
	require.Equal(t, 4, crop.Width)
	require.Equal(t, 10, crop.Height)

	require.True(t, img.Crop(image.Rect(20, 20, 30, 30)).Empty())
}

func TestMask_Ratio(t *testing.T) {
	m := NewMask(4, 4)
	require.Zero(t, m.Ratio())
	m.Set(0, 0)
	m.Set(3, 3)
	require.InDelta(t, 2.0/16.0, m.Ratio(), 1e-12)
	require.Zero(t, Mask{}.Ratio())
}

func TestBoundingBox_RectAndJSON(t *testing.T) {
	b := BoundingBox{X0: 10, Y0: 20, X1: 18, Y1: 26}
	require.Equal(t, image.Rect(10, 20, 18, 26), b.Rect())
	require.Equal(t, b, BoxFromRect(b.Rect()))

	data, err := json.Marshal(b)
	require.NoError(t, err)
	require.JSONEq(t, `[10,20,18,26]`, string(data))

	var back BoundingBox
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, b, back)
}

func TestReject_CopiesReasonIntoReport(t *testing.T) {
	d := Reject(ReasonNotEnoughGreen, GeometryReport{GreenRatio: Float(0.01)})
	require.False(t, d.OK)
	require.Equal(t, ReasonNotEnoughGreen, d.Reason)
	require.Equal(t, ReasonNotEnoughGreen, d.Report.Reason)
	require.Nil(t, d.Confidence)
}

func TestDiagnosis_Record(t *testing.T) {
	rejected := &Diagnosis{Crop: "rice", Error: MsgUploadLeafOnly, Details: Reject(ReasonTooSmall, GeometryReport{})}
	rec := rejected.Record()
	require.False(t, rec.Accepted)
	require.Equal(t, ReasonTooSmall, rec.Reason)

	ok := &Diagnosis{Crop: "rice", Prediction: "blast", Confidence: Float(0.9)}
	rec = ok.Record()
	require.True(t, rec.Accepted)
	require.Equal(t, "blast", rec.Prediction)
}

func TestDiagnosis_JSONShape(t *testing.T) {
	rejected := &Diagnosis{
		ID:      "r1",
		Crop:    "rice",
		Error:   MsgUploadLeafOnly,
		Details: Reject(ReasonNotEnoughGreen, GeometryReport{GreenRatio: Float(0.5)}),
	}
	data, err := json.Marshal(rejected)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"id": "r1",
		"error": "Please upload a clear leaf photo only.",
		"details": {
			"ok": false,
			"reason": "Not enough green pixels (likely not a leaf).",
			"info": {"reason": "Not enough green pixels (likely not a leaf).", "green_ratio": 0.5}
		}
	}`, string(data))

	// модель без вероятностей и оценок: confidence null, topk пустой
	accepted := Diagnosis{
		Crop:       "rice",
		Model:      "RandomForest",
		Prediction: "blast",
		LeafGate:   &LeafGateInfo{OpenCVInfo: GeometryReport{Solidity: Float(1)}},
	}
	data, err = json.Marshal(accepted)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"crop": "rice",
		"model": "RandomForest",
		"prediction": "blast",
		"confidence": null,
		"topk": [],
		"leaf_gate": {"opencv_info": {"solidity": 1}, "ml_confidence": null}
	}`, string(data))
}
