package main

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"trovabenzina-bot/api"
	"trovabenzina-bot/db"
)

// step identifies where a chat is inside a conversation flow
type step int

const (
	stepIdle step = iota
	stepStartLanguage
	stepStartFuel
	stepStartService
	stepFindLocation
	stepFavoriteName
	stepFavoriteLocation
)

// session holds the in-flight conversation state for one chat
type session struct {
	step step

	// profile being assembled by /start or a profile edit
	lang        string
	fuelCode    string
	serviceCode string
	editOnly    bool

	// pending favorite
	favName string
}

// Bot wires the Telegram update loop to the search pipeline and storage
type Bot struct {
	tg       *tgbotapi.BotAPI
	db       *db.DB
	geocoder *api.Geocoder
	stations *api.StationClient
	catalog  *Catalog
	cfg      *Config
	log      *zap.SugaredLogger

	mu       sync.Mutex
	sessions map[int64]*session
	locks    map[int64]*sync.Mutex
}

// NewBot creates the bot and its Telegram API client
func NewBot(cfg *Config, database *db.DB, geocoder *api.Geocoder, stations *api.StationClient, catalog *Catalog, log *zap.SugaredLogger) (*Bot, error) {
	tg, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Bot{
		tg:       tg,
		db:       database,
		geocoder: geocoder,
		stations: stations,
		catalog:  catalog,
		cfg:      cfg,
		log:      log,
		sessions: make(map[int64]*session),
		locks:    make(map[int64]*sync.Mutex),
	}, nil
}

// Start runs the long-polling update loop until the updates channel closes.
// Each update is handled on its own goroutine; handlers take the chat lock
// first, so different chats run concurrently while a single user's flow
// stays sequential.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tg.GetUpdatesChan(u)

	b.log.Infof("Bot started. Username: %s", b.tg.Self.UserName)

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			go b.handleCallback(ctx, update.CallbackQuery)
		case update.Message != nil:
			go b.handleMessage(ctx, update.Message)
		}
	}

	return nil
}

// lockChat returns the lock serializing update handling for one chat.
// Handlers hold it for the whole read-modify-write on the chat's session.
func (b *Bot) lockChat(chatID int64) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		b.locks[chatID] = l
	}
	return l
}

// session returns the conversation state for a chat, creating it if needed
func (b *Bot) session(chatID int64) *session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = &session{}
		b.sessions[chatID] = s
	}
	return s
}

// resetSession drops a chat back to the idle state
func (b *Bot) resetSession(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, chatID)
}

// userLanguage returns the stored language for a user, or the default
func (b *Bot) userLanguage(ctx context.Context, userID int64) string {
	profile, err := b.db.GetUser(ctx, userID)
	if err != nil {
		b.log.Warnw("failed to load user profile", "user_id", userID, "error", err)
		return defaultLanguage
	}
	if profile == nil {
		return defaultLanguage
	}
	return profile.LanguageCode
}

func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.tg.Send(msg); err != nil {
		b.log.Warnw("failed to send message", "chat_id", chatID, "error", err)
	}
}

// sendHTML sends an HTML-formatted message with an optional keyboard
func (b *Bot) sendHTML(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.tg.Send(msg); err != nil {
		b.log.Warnw("failed to send message", "chat_id", chatID, "error", err)
	}
}

// sendKeyboard sends text with a one-time reply keyboard built from rows of labels
func (b *Bot) sendKeyboard(chatID int64, text string, rows ...[]string) {
	var kbRows [][]tgbotapi.KeyboardButton
	for _, row := range rows {
		var buttons []tgbotapi.KeyboardButton
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		kbRows = append(kbRows, buttons)
	}
	kb := tgbotapi.NewOneTimeReplyKeyboard(kbRows...)
	kb.ResizeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.tg.Send(msg); err != nil {
		b.log.Warnw("failed to send keyboard", "chat_id", chatID, "error", err)
	}
}

// sendLocationKeyboard sends the location request keyboard for /find, with
// one extra button per saved favorite
func (b *Bot) sendLocationKeyboard(ctx context.Context, chatID, userID int64, lang string) {
	rows := [][]tgbotapi.KeyboardButton{
		{tgbotapi.NewKeyboardButtonLocation(t(lang, "send_location"))},
	}

	favorites, err := b.db.ListFavorites(ctx, userID)
	if err != nil {
		b.log.Warnw("failed to list favorites", "user_id", userID, "error", err)
	}
	for _, fav := range favorites {
		rows = append(rows, []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(fav.Name)})
	}

	kb := tgbotapi.NewOneTimeReplyKeyboard(rows...)
	kb.ResizeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, t(lang, "ask_location"))
	msg.ReplyMarkup = kb
	if _, err := b.tg.Send(msg); err != nil {
		b.log.Warnw("failed to send location keyboard", "chat_id", chatID, "error", err)
	}
}

// editMessage replaces the text of a previously sent message
func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.tg.Send(edit); err != nil {
		b.log.Warnw("failed to edit message", "chat_id", chatID, "error", err)
	}
}
