// Package server exposes the assessment flow over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tbxark/cardioagent/agent"
	"golang.org/x/sync/errgroup"
)

const (
	sessionCookie = "cardio_session"
	maxBodyBytes  = 1 << 20
)

type chatRequest struct {
	Msg              string  `json:"msg"`
	TypeConversation *string `json:"type_conversation"`
}

type chatResponse struct {
	Msg              string  `json:"msg"`
	TypeConversation *string `json:"type_conversation"`
}

type Server struct {
	flow    *agent.Flow
	tokens  *TokenIssuer
	origins []string
	ttl     time.Duration
}

func New(flow *agent.Flow, tokens *TokenIssuer, origins []string, ttl time.Duration) *Server {
	return &Server{flow: flow, tokens: tokens, origins: origins, ttl: ttl}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		limitBodySize(maxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins:     s.origins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "CardioAgent backend ativo.")
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.flow.Sessions().Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"store":  fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": "ok"})
	})

	router.POST("/chat", s.handleChat)

	return router
}

// sessionID reads the session cookie, issuing a new session when it is
// missing or invalid.
func (s *Server) sessionID(c *gin.Context) (string, error) {
	if raw, err := c.Cookie(sessionCookie); err == nil && raw != "" {
		if id, err := s.tokens.Parse(raw); err == nil {
			return id, nil
		}
		slog.Debug("Discarding invalid session cookie")
	}
	id, token, err := s.tokens.NewSession()
	if err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(s.ttl.Seconds()), "/", "", false, true)
	return id, nil
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	id, err := s.sessionID(c)
	if err != nil {
		slog.Error("Failed to issue session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}

	ctx := agent.WithSessionKey(c.Request.Context(), id)
	resp, err := s.flow.Invoke(ctx, &agent.Request{
		UserInput: req.Msg,
		ResetStep: req.TypeConversation == nil || *req.TypeConversation == "",
	})
	if err != nil {
		slog.Error("Failed to handle chat", "session", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	out := chatResponse{Msg: resp.Message}
	if !resp.Ended {
		step := string(resp.Step)
		out.TypeConversation = &step
	}
	c.PureJSON(http.StatusOK, out)
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// Run serves handler on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}
