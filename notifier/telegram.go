package notifier

import (
	"fmt"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"zonaprop-watcher/utils"
)

// maxMessageRunes is Telegram's limit on the text of one message.
const maxMessageRunes = 4096

// sender is the part of tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends plain-text messages to one chat through the Bot API.
type Telegram struct {
	api    sender
	chatID int64
	logger *utils.Logger
}

// NewTelegram authenticates the bot token against the Bot API.
func NewTelegram(token string, chatID int64, logger *utils.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	logger.Info("[telegram] Authorized as @%s", api.Self.UserName)
	return &Telegram{api: api, chatID: chatID, logger: logger}, nil
}

// Send delivers text, split into several messages when it is too long.
func (t *Telegram) Send(text string) error {
	for _, part := range splitMessage(text, maxMessageRunes) {
		msg := tgbotapi.NewMessage(t.chatID, part)
		msg.DisableWebPagePreview = true
		if _, err := t.api.Send(msg); err != nil {
			return fmt.Errorf("telegram: send: %w", err)
		}
	}
	t.logger.Debug("[telegram] Sent message to chat %d", t.chatID)
	return nil
}

// splitMessage cuts text into parts of at most limit runes, preferring to
// cut after a newline.
func splitMessage(text string, limit int) []string {
	var parts []string
	for utf8.RuneCountInString(text) > limit {
		cut := byteOffset(text, limit)
		for i := cut - 1; i > 0; i-- {
			if text[i] == '\n' {
				cut = i + 1
				break
			}
		}
		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	return append(parts, text)
}

// byteOffset returns the byte index of the n-th rune of s.
func byteOffset(s string, n int) int {
	i := 0
	for pos := range s {
		if i == n {
			return pos
		}
		i++
	}
	return len(s)
}
