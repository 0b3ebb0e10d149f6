package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "pothole-vision/internal/application"
	"pothole-vision/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для поиска ям на дороге.

📸 Отправьте мне фото или видео дорожного покрытия, и я отмечу найденные ямы и оценю их опасность.
📍 Пришлите геопозицию, чтобы в отчёте появился адрес.

📋 Команды:
/check — начать проверку дороги
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте геопозицию места (необязательно)
2️⃣ Отправьте фото или короткое видео дороги
3️⃣ Вы получите размеченный снимок и оценку опасности

💡 Рекомендации:
• Снимайте при дневном свете
• Держите камеру по ходу движения
• Видео — не длиннее минуты

📋 Команды:
/check — начать проверку
/cancel — отменить операцию`

	msgAwaitingMedia    = "📸 Отправьте фото или видео дороги для проверки."
	msgCancelled        = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendMedia        = "📸 Пожалуйста, отправьте фото или видео дороги."
	msgUnknownCommand   = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing       = "⏳ Обрабатываю изображение..."
	msgProcessingVideo  = "⏳ Обрабатываю видео, это может занять несколько минут..."
	msgBusy             = "⏳ Предыдущий файл ещё обрабатывается, подождите."
	msgLocationSaved    = "📍 Геопозиция сохранена. Теперь отправьте фото или видео."
	msgTooLarge         = "⚠️ Файл слишком большой."
	msgProcessingError  = "⚠️ Не удалось обработать файл. Попробуйте другой снимок."
	msgModelUnavailable = "⚠️ Модель распознавания сейчас недоступна. Попробуйте позже."
	msgLocationButton   = "📍 Отправить геопозицию"
)

// telegramFileLimit: ограничение Bot API на скачивание файлов.
const telegramFileLimit = 20 << 20

// DetectionService содержит операции распознавания, которые нужны боту.
type DetectionService interface {
	DetectImage(ctx context.Context, req app.ImageRequest) (*entity.ImageReport, error)
	DetectVideo(ctx context.Context, req app.VideoRequest) (*entity.VideoReport, error)
}

// Limits задаёт ограничения на размер присылаемых файлов.
type Limits struct {
	MaxImageBytes int64
	MaxVideoBytes int64
}

// Bot представляет Telegram-бота
type Bot struct {
	api        *tgbotapi.BotAPI
	users      *app.UserService
	detections DetectionService
	limits     Limits
	client     *http.Client
	logger     *zap.SugaredLogger
	wg         sync.WaitGroup
}

// NewBot создаёт нового бота
func NewBot(token string, users *app.UserService, detections DetectionService, limits Limits, logger *zap.SugaredLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.Infof("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:        api,
		users:      users,
		detections: detections,
		limits:     limits,
		client:     &http.Client{Timeout: 2 * time.Minute},
		logger:     logger,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.wg.Wait()
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

			msg := update.Message
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleMessage(ctx, msg)
			}()
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.logger.Errorf("Error getting user: %v", err)
		return
	}

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case msg.Location != nil:
		b.handleLocation(ctx, msg)
	case len(msg.Photo) > 0, msg.Video != nil:
		acquired, err := b.users.BeginProcessing(ctx, user.ID, msg.Chat.ID)
		if err != nil {
			b.logger.Errorf("Error updating user state: %v", err)
			return
		}
		if !acquired {
			b.sendMessage(msg.Chat.ID, msgBusy)
			return
		}
		b.handleMedia(ctx, msg, user)
	default:
		b.sendMessage(msg.Chat.ID, msgSendMedia)
	}
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.setState(ctx, userID, chatID, entity.StateMainMenu)
		b.send(locationRequest(chatID, msgStart))

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		if _, err := b.users.BeginCheck(ctx, userID, chatID); err != nil {
			b.logger.Errorf("Error saving user state: %v", err)
		}
		b.send(locationRequest(chatID, msgAwaitingMedia))

	case "cancel":
		if _, err := b.users.Cancel(ctx, userID, chatID); err != nil {
			b.logger.Errorf("Error saving user state: %v", err)
		}
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleLocation запоминает геопозицию для следующих снимков.
func (b *Bot) handleLocation(ctx context.Context, msg *tgbotapi.Message) {
	loc := msg.Location
	if _, err := b.users.SaveLocation(ctx, msg.From.ID, msg.Chat.ID, loc.Latitude, loc.Longitude); err != nil {
		b.logger.Errorf("Error saving location: %v", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, msgLocationSaved)
	reply.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	b.send(reply)
}

// handleMedia обрабатывает фото или видео
func (b *Bot) handleMedia(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID

	// Состояние "обработка" уже занято в handleMessage
	defer b.setState(ctx, user.ID, chatID, entity.StateMainMenu)

	if msg.Video != nil {
		b.handleVideo(ctx, msg, user)
		return
	}

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]
	if int64(photo.FileSize) > b.limits.MaxImageBytes {
		b.sendMessage(chatID, msgTooLarge)
		return
	}

	b.sendMessage(chatID, msgProcessing)

	data, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.logger.Errorf("Error downloading photo: %v", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	report, err := b.detections.DetectImage(ctx, app.ImageRequest{
		UserID:   strconv.FormatInt(user.ID, 10),
		Filename: fmt.Sprintf("tg_%d_%d.jpg", chatID, msg.MessageID),
		Data:     data,
		Location: user.LocationOrEmpty(),
	})
	if err != nil {
		b.reportError(chatID, err)
		return
	}

	reply := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: report.Filename, Bytes: report.Annotated})
	reply.Caption = imageCaption(report)
	b.send(reply)
}

func (b *Bot) handleVideo(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID
	limit := min(b.limits.MaxVideoBytes, telegramFileLimit)
	if int64(msg.Video.FileSize) > limit {
		b.sendMessage(chatID, fmt.Sprintf("%s Максимум %d MB.", msgTooLarge, limit>>20))
		return
	}

	b.sendMessage(chatID, msgProcessingVideo)

	data, err := b.downloadFile(ctx, msg.Video.FileID)
	if err != nil {
		b.logger.Errorf("Error downloading video: %v", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	report, err := b.detections.DetectVideo(ctx, app.VideoRequest{
		UserID:   strconv.FormatInt(user.ID, 10),
		Filename: fmt.Sprintf("tg_%d_%d.mp4", chatID, msg.MessageID),
		Data:     data,
		Location: user.LocationOrEmpty(),
	})
	if err != nil {
		b.reportError(chatID, err)
		return
	}

	reply := tgbotapi.NewVideo(chatID, tgbotapi.FileBytes{Name: report.Filename, Bytes: report.Video})
	reply.Caption = videoCaption(report)
	b.send(reply)
}

func (b *Bot) reportError(chatID int64, err error) {
	b.logger.Warnf("detection failed for chat %d: %v", chatID, err)
	if errors.Is(err, entity.ErrModelUnavailable) {
		b.sendMessage(chatID, msgModelUnavailable)
		return
	}
	b.sendMessage(chatID, msgProcessingError)
}

func (b *Bot) setState(ctx context.Context, userID, chatID int64, state entity.UserState) {
	if _, err := b.users.SetState(ctx, userID, chatID, state); err != nil {
		b.logger.Errorf("Error saving user state: %v", err)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, telegramFileLimit+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Errorf("Error sending message: %v", err)
	}
}

// locationRequest строит сообщение с кнопкой отправки геопозиции.
func locationRequest(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonLocation(msgLocationButton)),
	)
	keyboard.OneTimeKeyboard = true
	keyboard.ResizeKeyboard = true
	msg.ReplyMarkup = keyboard
	return msg
}
