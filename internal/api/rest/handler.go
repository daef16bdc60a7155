package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	app "leaf-doctor/internal/application"
	"leaf-doctor/internal/domain/entity"
)

const maxUploadSize = 10 << 20 // 10MB

// Diagnoser то, что HTTP-слою нужно от сервиса диагностики
type Diagnoser interface {
	Diagnose(ctx context.Context, crop string, data []byte) (*entity.Diagnosis, error)
	Health() app.HealthStatus
	History(ctx context.Context, limit int) ([]entity.DiagnosisRecord, error)
}

type Handler struct {
	diagnoser Diagnoser
}

func NewHandler(diagnoser Diagnoser) *Handler {
	return &Handler{diagnoser: diagnoser}
}

// Routes регистрирует обработчики с CORS
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", enableCORS(h.HealthHandler))
	mux.HandleFunc("/predict", enableCORS(h.PredictHandler))
	mux.HandleFunc("/history", enableCORS(h.HistoryHandler))
	return mux
}

// HealthHandler обрабатывает GET /health
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.diagnoser.Health(), http.StatusOK)
}

// PredictHandler обрабатывает POST /predict (multipart: crop, image)
func (h *Handler) PredictHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	crop := r.FormValue("crop")
	if crop == "" {
		respondError(w, "Field 'crop' is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, "No image file provided. Use 'image' as the form field name", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, "Failed to read file", http.StatusBadRequest)
		return
	}

	log.Printf("Received %s for %s: %d bytes", header.Filename, crop, len(data))

	result, err := h.diagnoser.Diagnose(r.Context(), crop, data)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	// отказ шлюза отдаётся штатным ответом с error и details
	respondJSON(w, result, http.StatusOK)
}

// HistoryHandler обрабатывает GET /history?limit=N
func (h *Handler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.diagnoser.History(r.Context(), limit)
	if err != nil {
		log.Printf("History error: %v", err)
		respondError(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	respondJSON(w, records, http.StatusOK)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrUnsupportedCrop), errors.Is(err, entity.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrModelNotFound):
		return http.StatusServiceUnavailable
	default:
		log.Printf("Prediction error: %v", err)
		return http.StatusInternalServerError
	}
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}
