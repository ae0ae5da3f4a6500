// Package notifier delivers listing summaries to the user.
package notifier

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"zonaprop-watcher/config"
	"zonaprop-watcher/utils"
)

// Notifier sends one text message.
type Notifier interface {
	Send(text string) error
}

// New returns a Telegram notifier when a bot token and chat id are
// configured, and a Writer notifier on out otherwise.
func New(cfg *config.Config, out io.Writer, logger *utils.Logger) (Notifier, error) {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		logger.Warn("[notifier] Telegram not configured, printing summaries instead")
		return NewWriter(out), nil
	}
	return NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, logger)
}

// Writer prints messages to an io.Writer, separated by a rule.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) Send(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintf(w.out, "%s\n%s\n", strings.Repeat("─", 40), text); err != nil {
		return fmt.Errorf("notifier: write: %w", err)
	}
	return nil
}
