package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"manga-translator/api/internal/handle"
	"manga-translator/api/internal/service"
	"manga-translator/api/internal/util"
)

// Telegram caps messages at 4096 characters.
const maxReplyRunes = 4000

const usageText = "Send me a manga panel or speech balloon as a photo and I will reply with its translation.\nCommands: /health"

type ImageTranslator interface {
	TranslateImage(ctx context.Context, img []byte) (service.Result, error)
}

// botAPI is the subset of *tgbotapi.BotAPI the bot uses.
type botAPI interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	GetFileDirectURL(fileID string) (string, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api            botAPI
	svc            ImageTranslator
	httpc          *http.Client
	requestTimeout time.Duration
}

func New(token string, httpc *http.Client, svc ImageTranslator, requestTimeout time.Duration) (*Bot, error) {
	return newWithEndpoint(token, tgbotapi.APIEndpoint, httpc, svc, requestTimeout)
}

func newWithEndpoint(token, endpoint string, httpc *http.Client, svc ImageTranslator, requestTimeout time.Duration) (*Bot, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	logrus.WithField("bot", api.Self.UserName).Info("telegram bot authorized")
	return newBot(api, httpc, svc, requestTimeout), nil
}

func newBot(api botAPI, httpc *http.Client, svc ImageTranslator, requestTimeout time.Duration) *Bot {
	return &Bot{api: api, svc: svc, httpc: httpc, requestTimeout: requestTimeout}
}

func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		return
	}
	cid := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			b.reply(msg, usageText)
		case "health":
			b.reply(msg, "✅ OK")
		default:
			b.reply(msg, "Unknown command")
		}
		return
	}

	if len(msg.Photo) == 0 {
		b.reply(msg, usageText)
		return
	}

	log := logrus.WithField("chat_id", cid)
	ph := msg.Photo[len(msg.Photo)-1]
	img, err := b.downloadFile(ctx, ph.FileID)
	if err != nil {
		log.WithError(err).Error("photo download failed")
		b.reply(msg, "Could not download the photo: "+err.Error())
		return
	}

	if b.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.requestTimeout)
		defer cancel()
	}

	res, err := b.svc.TranslateImage(ctx, img)
	b.reply(msg, replyText(res, err))
}

// replyText uses the same messages as the HTTP endpoint.
func replyText(res service.Result, err error) string {
	_, text := handle.Respond(res, err)
	if strings.TrimSpace(text) == "" {
		text = "(empty)"
	}
	return util.Truncate(text, maxReplyRunes)
}

func (b *Bot) reply(to *tgbotapi.Message, text string) {
	m := tgbotapi.NewMessage(to.Chat.ID, text)
	m.ReplyToMessageID = to.MessageID
	if _, err := b.api.Send(m); err != nil {
		logrus.WithError(err).WithField("chat_id", to.Chat.ID).Warn("telegram send failed")
	}
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(x))
	}
	return io.ReadAll(resp.Body)
}
