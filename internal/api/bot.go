package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"leaf-doctor/internal/container"
	"leaf-doctor/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для диагностики болезней растений по фото листа.

🌱 Выберите культуру командой /crop, затем отправьте фото листа.

📋 Команды:
/crops — список культур
/crop <название> — выбрать культуру
/check — начать проверку листа
/history — последние диагнозы
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Выберите культуру: /crop rice
2️⃣ Отправьте фото листа (культуру можно указать в подписи)
3️⃣ Вы получите диагноз и уверенность модели

💡 Рекомендации:
• В кадре должен быть один лист
• Снимайте при хорошем освещении
• Фото должно быть чётким

📋 Команды:
/crops — список культур
/check — начать проверку
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото листа для диагностики."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото листа."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgChooseCrop      = "🌱 Сначала выберите культуру: /crop <название>. Доступны: %s"
	msgUnsupportedCrop = "⚠️ Культура «%s» не поддерживается. Доступны: %s"
	msgCropSelected    = "✅ Культура выбрана: %s. Теперь отправьте фото листа."
	msgInvalidImage    = "⚠️ Не удалось прочитать изображение. Отправьте фото в формате JPEG или PNG."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgHistoryError    = "⚠️ Не удалось загрузить историю."
)

const historySize = 5

// Bot представляет Telegram-бота
type Bot struct {
	api *tgbotapi.BotAPI
	app *container.Container
}

// NewBot создаёт нового бота
func NewBot(token string, app *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api: api,
		app: app,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.app.UserService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg, user)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	switch msg.Command() {
	case "start":
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "crops":
		b.sendMessage(msg.Chat.ID, "🌱 Доступные культуры: "+b.cropList())

	case "crop":
		b.selectCrop(ctx, msg, user, msg.CommandArguments())

	case "check":
		if user.Crop == "" {
			b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgChooseCrop, b.cropList()))
			return
		}
		b.setState(ctx, user, entity.StateAwaitingPhoto)
		b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)

	case "cancel":
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(msg.Chat.ID, msgCancelled)

	case "history":
		records, err := b.app.DiagnosisService.History(ctx, historySize)
		if err != nil {
			log.Printf("Error loading history: %v", err)
			b.sendMessage(msg.Chat.ID, msgHistoryError)
			return
		}
		b.sendMessage(msg.Chat.ID, formatHistory(records))

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// selectCrop проверяет и запоминает культуру пользователя
func (b *Bot) selectCrop(ctx context.Context, msg *tgbotapi.Message, user *entity.User, name string) bool {
	crop := cropFromText(name)
	if crop == "" {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgChooseCrop, b.cropList()))
		return false
	}
	if !b.app.DiagnosisService.Supports(crop) {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgUnsupportedCrop, crop, b.cropList()))
		return false
	}

	updated, err := b.app.UserService.SetCrop(ctx, user.ID, user.ChatID, crop)
	if err != nil {
		log.Printf("Error saving crop: %v", err)
		return false
	}
	*user = *updated

	if msg.IsCommand() {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgCropSelected, crop))
	}
	return true
}

// handlePhoto обрабатывает входящее фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	// культура из подписи важнее сохранённой
	if msg.Caption != "" && !b.selectCrop(ctx, msg, user, msg.Caption) {
		return
	}
	if user.Crop == "" {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgChooseCrop, b.cropList()))
		return
	}

	// Устанавливаем состояние "обработка"
	b.setState(ctx, user, entity.StateProcessing)
	defer b.setState(ctx, user, entity.StateMainMenu)

	b.sendMessage(msg.Chat.ID, msgProcessing)

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		log.Printf("Error downloading photo: %v", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	log.Printf("Received image from %d: %d bytes, crop %s", user.ID, len(imageData), user.Crop)

	result, err := b.app.DiagnosisService.Diagnose(ctx, user.Crop, imageData)
	switch {
	case errors.Is(err, entity.ErrInvalidImage):
		b.sendMessage(msg.Chat.ID, msgInvalidImage)
	case err != nil:
		log.Printf("Error diagnosing photo: %v", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
	default:
		b.sendDiagnosis(msg.Chat.ID, imageData, result)
	}
}

// sendDiagnosis отправляет диагноз; принятый лист приходит фото с рамкой
func (b *Bot) sendDiagnosis(chatID int64, imageData []byte, result *entity.Diagnosis) {
	text := formatDiagnosis(result)

	box := leafBox(result)
	if box == nil || b.app.Highlighter == nil {
		b.sendMessage(chatID, text)
		return
	}

	highlighted, err := b.app.Highlighter.Highlight(imageData, *box)
	if err != nil {
		log.Printf("Error highlighting leaf: %v", err)
		b.sendMessage(chatID, text)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "leaf.jpg", Bytes: highlighted})
	photo.Caption = text
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("Error sending photo: %v", err)
		b.sendMessage(chatID, text)
	}
}

func (b *Bot) setState(ctx context.Context, user *entity.User, state entity.UserState) {
	user.SetState(state)
	if _, err := b.app.UserService.SetState(ctx, user.ID, user.ChatID, state); err != nil {
		log.Printf("Error saving user state: %v", err)
	}
}

func (b *Bot) cropList() string {
	return strings.Join(b.app.DiagnosisService.Health().SupportedCrops, ", ")
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
