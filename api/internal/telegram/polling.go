package telegram

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// long polling timeout (sec); kept short so shutdown is not held up
const pollTimeout = 10

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") || strings.Contains(s, "retry after") { // HTTP 429
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

// Run polls Telegram for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	const maxDelay = 15 * time.Second
	offset := 0

	logrus.Info("telegram polling started")
	for {
		select {
		case <-ctx.Done():
			logrus.Info("telegram polling stopped")
			return nil
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = pollTimeout

		updates, err := b.api.GetUpdates(u)
		if err != nil {
			d := min(retryDelayFromError(err), maxDelay)
			logrus.WithError(err).Warnf("polling error; next poll in %v", d)
			if !sleep(ctx, d) {
				return nil
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			b.HandleUpdate(ctx, upd)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
