package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	app "leaf-doctor/internal/application"
	"leaf-doctor/internal/domain/entity"
)

type fakeDiagnoser struct {
	gotCrop  string
	gotData  []byte
	gotLimit int
	err      error
	reject   bool
}

func (f *fakeDiagnoser) Diagnose(ctx context.Context, crop string, data []byte) (*entity.Diagnosis, error) {
	f.gotCrop, f.gotData = crop, data
	if f.err != nil {
		return nil, f.err
	}
	if f.reject {
		return &entity.Diagnosis{
			Crop:    crop,
			Error:   entity.MsgUploadLeafOnly,
			Details: entity.Reject(entity.ReasonNotEnoughGreen, entity.GeometryReport{GreenRatio: entity.Float(0.02)}),
		}, nil
	}
	return &entity.Diagnosis{
		Crop:       crop,
		Model:      "LogReg",
		Prediction: "blast",
		Confidence: entity.Float(0.8),
		TopK:       []entity.LabelScore{{Label: "blast", Score: 0.8}, {Label: "healthy", Score: 0.2}},
		LeafGate:   &entity.LeafGateInfo{OpenCVInfo: entity.GeometryReport{Solidity: entity.Float(0.9)}},
	}, nil
}

func (f *fakeDiagnoser) Health() app.HealthStatus {
	return app.HealthStatus{Status: "ok", SupportedCrops: []string{"rice", "jute"}}
}

func (f *fakeDiagnoser) History(ctx context.Context, limit int) ([]entity.DiagnosisRecord, error) {
	f.gotLimit = limit
	return []entity.DiagnosisRecord{{ID: "1", Crop: "rice", Accepted: true}}, nil
}

func uploadRequest(t *testing.T, crop string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if crop != "" {
		require.NoError(t, mw.WriteField("crop", crop))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "leaf.jpg")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/predict", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthHandler(t *testing.T) {
	h := NewHandler(&fakeDiagnoser{})
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","supported_crops":["rice","jute"],"leaf_gate_model_loaded":false}`, rec.Body.String())
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPredictHandler_Success(t *testing.T) {
	fake := &fakeDiagnoser{}
	h := NewHandler(fake)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, uploadRequest(t, "rice", []byte("jpeg-bytes")))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "rice", fake.gotCrop)
	require.Equal(t, []byte("jpeg-bytes"), fake.gotData)

	body := decodeBody(t, rec)
	require.Equal(t, "blast", body["prediction"])
	require.InDelta(t, 0.8, body["confidence"], 1e-12)
	require.Len(t, body["topk"], 2)

	gate := body["leaf_gate"].(map[string]any)
	require.Contains(t, gate, "ml_confidence")
	require.Nil(t, gate["ml_confidence"])
}

func TestPredictHandler_GateRejection(t *testing.T) {
	h := NewHandler(&fakeDiagnoser{reject: true})
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, uploadRequest(t, "rice", []byte("x")))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, entity.MsgUploadLeafOnly, body["error"])

	require.NotContains(t, body, "prediction")
	details := body["details"].(map[string]any)
	require.NotContains(t, details, "ml_confidence")
	require.Equal(t, false, details["ok"])
	require.Equal(t, entity.ReasonNotEnoughGreen, details["reason"])
	info := details["info"].(map[string]any)
	require.InDelta(t, 0.02, info["green_ratio"], 1e-12)
}

func TestPredictHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		req    func(t *testing.T) *http.Request
		err    error
		status int
	}{
		{
			name:   "wrong method",
			req:    func(t *testing.T) *http.Request { return httptest.NewRequest(http.MethodGet, "/predict", nil) },
			status: http.StatusMethodNotAllowed,
		},
		{
			name:   "missing crop",
			req:    func(t *testing.T) *http.Request { return uploadRequest(t, "", []byte("x")) },
			status: http.StatusBadRequest,
		},
		{
			name:   "missing image",
			req:    func(t *testing.T) *http.Request { return uploadRequest(t, "rice", nil) },
			status: http.StatusBadRequest,
		},
		{
			name:   "unsupported crop",
			req:    func(t *testing.T) *http.Request { return uploadRequest(t, "banana", []byte("x")) },
			err:    fmt.Errorf("%w 'banana'", entity.ErrUnsupportedCrop),
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid image",
			req:    func(t *testing.T) *http.Request { return uploadRequest(t, "rice", []byte("x")) },
			err:    entity.ErrInvalidImage,
			status: http.StatusBadRequest,
		},
		{
			name:   "model missing",
			req:    func(t *testing.T) *http.Request { return uploadRequest(t, "rice", []byte("x")) },
			err:    fmt.Errorf("%w for 'rice'", entity.ErrModelNotFound),
			status: http.StatusServiceUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeDiagnoser{err: tt.err})
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, tt.req(t))

			require.Equal(t, tt.status, rec.Code)
			require.NotEmpty(t, decodeBody(t, rec)["error"])
		})
	}
}

func TestPredictHandler_Preflight(t *testing.T) {
	h := NewHandler(&fakeDiagnoser{})
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/predict", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "POST, GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestHistoryHandler(t *testing.T) {
	fake := &fakeDiagnoser{}
	h := NewHandler(fake)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history?limit=7", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 7, fake.gotLimit)

	var records []entity.DiagnosisRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)

	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history?limit=abc", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
