package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	liblog "trpc.group/trpc-go/trpc-a2a-go/log"

	"github.com/tuannvm/jira-story/internal/agents"
	"github.com/tuannvm/jira-story/internal/api"
	"github.com/tuannvm/jira-story/internal/common"
	"github.com/tuannvm/jira-story/internal/config"
	"github.com/tuannvm/jira-story/internal/jira"
	"github.com/tuannvm/jira-story/internal/llm"
	log "github.com/tuannvm/jira-story/internal/logging"
)

func main() {
	defer log.Sync()

	if err := config.ReadConfigFile(config.GetViper()); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}
	cfg := config.NewConfig()

	if err := log.SetLevel(cfg.LogLevel); err != nil {
		log.Warnf("%v, keeping info level", err)
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Route tRPC-A2A-Go internal logs through a console logger at our level
	liblog.Default = zap.New(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
				TimeKey:      "ts",
				LevelKey:     "lvl",
				MessageKey:   "message",
				CallerKey:    "caller",
				EncodeLevel:  zapcore.CapitalColorLevelEncoder,
				EncodeTime:   zapcore.RFC3339TimeEncoder,
				EncodeCaller: zapcore.ShortCallerEncoder,
			}),
			zapcore.AddSync(os.Stdout),
			log.Level(),
		),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
	).Sugar()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	source, err := jira.NewAtlassianClient(cfg)
	if err != nil {
		log.Fatalf("Failed to create Jira client: %v", err)
	}
	agent := agents.NewStoryAgent(cfg, source)

	var generator *llm.Generator
	if cfg.LLMEnabled {
		llmClient, err := llm.NewClient(cfg)
		if err != nil {
			log.Fatalf("Failed to create LLM client: %v", err)
		}
		generator = llm.NewGenerator(llmClient)
		log.Infof("Test generation enabled with %s model %s", cfg.LLMProvider, cfg.LLMModel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	if cfg.A2AEnabled {
		srv, err := agent.SetupA2AServer()
		if err != nil {
			log.Fatalf("Failed to setup A2A server: %v", err)
		}
		go func() {
			errCh <- agent.StartA2AServer(ctx, srv)
		}()
	}

	webhookAuth, err := common.NewAuthProvider(common.SetupServerOptions{
		AgentName: "webhook endpoint",
		AuthType:  cfg.AuthType,
		JWTSecret: cfg.JWTSecret,
		APIKey:    cfg.APIKey,
	})
	if err != nil {
		log.Fatalf("Failed to configure webhook authentication: %v", err)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           api.NewRouter(api.NewHandlers(agent, generator), webhookAuth),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("Starting HTTP server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Errorf("%v", err)
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Infof("Shutting down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Failed to shutdown HTTP server: %v", err)
	}
	log.Infof("Server shutdown complete")
}
