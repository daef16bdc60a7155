package container

import (
	app "leaf-doctor/internal/application"
	"leaf-doctor/internal/domain/port"
)

// Deps инфраструктура, из которой собираются сервисы
type Deps struct {
	Users       port.UserRepository
	Models      port.ModelRegistry
	Decoder     port.ImageDecoder
	Detector    port.LeafDetector
	Extractor   port.FeatureExtractor
	Learned     *port.LearnedGate     // nil, если обученный шлюз не настроен
	History     port.DiagnosisHistory // nil, если история отключена
	Highlighter port.LeafHighlighter  // nil, если подсветка не нужна
}

type Container struct {
	UserService      *app.UserService
	GateService      *app.GateService
	DiagnosisService *app.DiagnosisService
	Highlighter      port.LeafHighlighter
}

func New(deps Deps) *Container {
	userService := app.NewUserService(deps.Users)
	gateService := app.NewGateService(deps.Detector, deps.Extractor, deps.Learned)
	diagnosisService := app.NewDiagnosisService(deps.Models, deps.Decoder, gateService, deps.Extractor, deps.History)

	return &Container{
		UserService:      userService,
		GateService:      gateService,
		DiagnosisService: diagnosisService,
		Highlighter:      deps.Highlighter,
	}
}
