package config

import (
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"leaf-doctor/internal/infrastructure/vision"
)

type Config struct {
	TelegramToken  string // если пусто, бот не запускается
	HTTPAddr       string
	ModelDir       string
	HistoryDB      string // если пусто, история не ведётся
	OnnxRuntimeLib string
	Crops          []string
	Vision         vision.Params
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		ModelDir:       getEnv("MODEL_DIR", "./models_out"),
		HistoryDB:      "./leaf-doctor.db",
		OnnxRuntimeLib: os.Getenv("ONNXRUNTIME_LIB"),
		Crops:          splitList(getEnv("SUPPORTED_CROPS", "rice,jute,potato,tomato")),
		Vision:         vision.DefaultParams(),
	}

	// HISTORY_DB= явно отключает историю
	if v, ok := os.LookupEnv("HISTORY_DB"); ok {
		cfg.HistoryDB = strings.TrimSpace(v)
	}

	if len(cfg.Crops) == 0 {
		return nil, fmt.Errorf("SUPPORTED_CROPS is empty")
	}

	if err := loadVision(&cfg.Vision); err != nil {
		return nil, err
	}
	if err := cfg.Vision.Validate(); err != nil {
		return nil, fmt.Errorf("vision params: %w", err)
	}

	return cfg, nil
}

func loadVision(p *vision.Params) error {
	s, a, d := &p.Segmenter, &p.Analyzer, &p.Descriptor

	ints := []struct {
		key string
		dst *int
	}{
		{"LEAF_HUE_MIN", &s.HueMin},
		{"LEAF_HUE_MAX", &s.HueMax},
		{"LEAF_SAT_MIN", &s.SatMin},
		{"LEAF_VAL_MIN", &s.ValMin},
		{"LEAF_KERNEL_SIZE", &s.KernelSize},
		{"LEAF_OPEN_ITERATIONS", &s.OpenIterations},
		{"LEAF_CLOSE_ITERATIONS", &s.CloseIterations},
		{"LEAF_MIN_SIDE", &a.MinSide},
		{"HOG_ORIENTATIONS", &d.Orientations},
		{"HOG_CELL_SIZE", &d.CellSize},
		{"HOG_BLOCK_SIZE", &d.BlockSize},
		{"COLOR_BINS", &d.ColorBins},
	}
	for _, v := range ints {
		if err := getInt(v.key, v.dst); err != nil {
			return err
		}
	}

	fls := []struct {
		key string
		dst *float64
	}{
		{"LEAF_MIN_GREEN_RATIO", &a.MinGreenRatio},
		{"LEAF_MIN_AREA_RATIO", &a.MinAreaRatio},
		{"LEAF_MIN_SOLIDITY", &a.MinSolidity},
		{"LEAF_PAD_FRACTION", &a.PadFraction},
		{"HOG_CLIP", &d.ClipValue},
	}
	for _, v := range fls {
		if err := getFloat(v.key, v.dst); err != nil {
			return err
		}
	}

	return getSize("DESCRIPTOR_SIZE", &d.Size)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, dst *int) error {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func getFloat(key string, dst *float64) error {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

// getSize читает размер вида "96" или "128x96"
func getSize(key string, dst *image.Point) error {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if val == "" {
		return nil
	}

	w, h, found := strings.Cut(val, "x")
	if !found {
		h = w
	}
	x, err := strconv.Atoi(w)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	y, err := strconv.Atoi(h)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = image.Pt(x, y)
	return nil
}

func splitList(val string) []string {
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}
