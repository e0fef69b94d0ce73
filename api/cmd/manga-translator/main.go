package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"manga-translator/api/internal/config"
	"manga-translator/api/internal/handle"
	"manga-translator/api/internal/httpclient"
	"manga-translator/api/internal/httpserver"
	"manga-translator/api/internal/logger"
	"manga-translator/api/internal/ocr"
	"manga-translator/api/internal/ocr/gemini"
	"manga-translator/api/internal/ocr/vision"
	"manga-translator/api/internal/ocr/yandex"
	"manga-translator/api/internal/service"
	"manga-translator/api/internal/telegram"
	"manga-translator/api/internal/translate/deepl"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		logrus.Fatalf("logger: %v", err)
	}

	httpc := httpclient.New(cfg.HTTP.Timeout)

	engines := ocr.NewEngines(
		vision.New(cfg.OCR.CredentialsFile, cfg.OCR.Endpoint),
		gemini.New(cfg.Gemini.APIKey, cfg.Gemini.Model),
		yandex.New(httpc, yandex.Options{
			OAuthToken: cfg.Yandex.OAuthToken,
			FolderID:   cfg.Yandex.FolderID,
			Languages:  cfg.Yandex.Languages,
		}),
	)
	engine, err := engines.GetEngine(cfg.OCR.Provider)
	if err != nil {
		logrus.Fatal(err)
	}

	translator := deepl.New(httpc, cfg.DeepL.APIKey, cfg.DeepL.APIURL, cfg.DeepL.TargetLang)
	svc := service.New(engine, translator)

	srv := httpserver.New(httpserver.Options{
		Port:           cfg.Server.Port,
		Mode:           cfg.Server.Mode,
		RequestTimeout: cfg.Server.RequestTimeout,
		OCRName:        engine.Name(),
	}, handle.New(svc))

	// The bot authorizes against Telegram before anything is listening, so a
	// bad token stops the process before the server has to be shut down.
	bot, err := newBot(cfg, httpc, svc)
	if err != nil {
		logrus.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if bot != nil {
		g.Go(func() error { return bot.Run(gctx) })
	}

	logrus.WithFields(logrus.Fields{
		"ocr":         engine.Name(),
		"target_lang": cfg.DeepL.TargetLang,
		"telegram":    cfg.Telegram.Enabled(),
	}).Info("manga translator started")

	if err := g.Wait(); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}

// newBot returns nil when no bot token is configured.
func newBot(cfg *config.Config, httpc *http.Client, svc telegram.ImageTranslator) (*telegram.Bot, error) {
	if !cfg.Telegram.Enabled() {
		return nil, nil
	}
	return telegram.New(cfg.Telegram.BotToken, httpc, svc, cfg.Server.RequestTimeout)
}
