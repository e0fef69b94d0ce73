package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"manga-translator/api/internal/handle"
)

type Options struct {
	Port           string
	Mode           string
	RequestTimeout time.Duration
	// OCRName is reported by /healthz.
	OCRName string
}

type Server struct {
	httpServer *http.Server
}

func New(opts Options, h *handle.Handle) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + opts.Port,
			Handler:           NewRouter(opts, h),
			MaxHeaderBytes:    1 << 20,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			IdleTimeout:       120 * time.Second,
			ErrorLog:          log.New(logrus.StandardLogger().WriterLevel(logrus.ErrorLevel), "", 0),
		},
	}
}

func NewRouter(opts Options, h *handle.Handle) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CORS())
	router.Use(RequestID())
	router.Use(Logger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ocr": opts.OCRName})
	})

	api := router.Group("/api/manga")
	api.Use(Timeout(opts.RequestTimeout))
	{
		api.POST("/translate", h.Translate)
	}
	return router
}

// Run blocks until the server stops. A graceful Shutdown is not reported as an error.
func (s *Server) Run() error {
	logrus.WithField("addr", s.httpServer.Addr).Info("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
