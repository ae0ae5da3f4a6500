package notifier

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonaprop-watcher/config"
	"zonaprop-watcher/utils"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestNewFallsBackToWriter(t *testing.T) {
	var buf bytes.Buffer
	n, err := New(config.Defaults(), &buf, utils.NewDiscardLogger())
	require.NoError(t, err)

	require.NoError(t, n.Send("🏠 Tipo: Nuevo (0-20 años)"))
	assert.Contains(t, buf.String(), "🏠 Tipo: Nuevo (0-20 años)\n")
}

func TestTelegramSend(t *testing.T) {
	api := &fakeSender{}
	tg := &Telegram{api: api, chatID: 42, logger: utils.NewDiscardLogger()}

	require.NoError(t, tg.Send("hola"))
	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(42), api.sent[0].ChatID)
	assert.Equal(t, "hola", api.sent[0].Text)
	assert.True(t, api.sent[0].DisableWebPagePreview)
}

func TestTelegramSendError(t *testing.T) {
	tg := &Telegram{api: &fakeSender{err: errors.New("chat not found")}, chatID: 1, logger: utils.NewDiscardLogger()}

	err := tg.Send("hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"corto"}, splitMessage("corto", 10))

	parts := splitMessage("línea uno\nlínea dos\nlínea tres", 12)
	assert.Equal(t, []string{"línea uno\n", "línea dos\n", "línea tres"}, parts)

	long := strings.Repeat("ñ", 25)
	parts = splitMessage(long, 10)
	require.Len(t, parts, 3)
	assert.Equal(t, long, strings.Join(parts, ""))
	assert.Equal(t, strings.Repeat("ñ", 10), parts[0])
}
