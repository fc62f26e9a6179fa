package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/PabloGalante/zap-agent/internal/adapters/http"
	"github.com/PabloGalante/zap-agent/internal/adapters/llm"
	memstore "github.com/PabloGalante/zap-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/zap-agent/internal/app/simulator"
	"github.com/PabloGalante/zap-agent/internal/config"
	"github.com/PabloGalante/zap-agent/internal/domain"
	"github.com/PabloGalante/zap-agent/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	log := observability.Logger()

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		// A missing LLM credential is fatal here, before any traffic.
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var chatSvc domain.ChatService
	if cfg.UseMockLLM {
		log.Info("using mock chat service")
		chatSvc = llm.NewMockChatService()
	} else {
		log.Info("using gemini chat service", "model", cfg.ModelName)
		chatSvc, err = llm.NewGeminiChatService(ctx, cfg.GeminiAPIKey, cfg.ModelName)
		if err != nil {
			log.Error("failed to initialize gemini chat service", "error", err)
			os.Exit(1)
		}
	}

	agentStore := memstore.NewAgentStore()
	if err := agentStore.CreateAgent(demoAgent(time.Now())); err != nil {
		log.Error("failed to seed demo agent", "error", err)
		os.Exit(1)
	}

	sim := simulator.NewService(chatSvc, agentStore, memstore.NewMessageLog())

	handler := httpadapter.NewServer(agentStore, sim, httpadapter.Options{
		RequireAuth: cfg.RequireAuth,
		CORSOrigin:  cfg.CORSOrigin,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket conversations stay open
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("zap-agent api listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

// demoAgent seeds a ready-to-try sales assistant so a fresh server is
// usable before any configuration happens.
func demoAgent(now time.Time) *domain.AgentConfig {
	return &domain.AgentConfig{
		ID:                 "1",
		LastModified:       now,
		Name:               "Ana",
		CompanyName:        "Tech Solutions",
		Role:               "Vendas",
		Tone:               "Amigável e Casual",
		SystemInstructions: "O objetivo é ajudar o cliente a escolher o melhor produto. Sempre termine a conversa perguntando se o cliente tem mais dúvidas.",
		MaxResponseLength:  200,
		ResponseDelayMin:   1,
		ResponseDelayMax:   3,
		Examples: []domain.TrainingExample{{
			ID:            "1",
			UserQuery:     "Qual o valor do frete?",
			AgentResponse: "O frete é calculado no checkout! Geralmente fica em torno de R$15,00 para a capital.",
		}},
		Documents: []domain.KnowledgeDocument{{
			ID:         "1",
			Name:       "Exemplo: Horário de Funcionamento",
			Text:       "Estamos abertos de Segunda a Sexta das 09:00 às 18:00. Sábados das 09:00 às 13:00. Não abrimos feriados.",
			Type:       domain.DocumentText,
			MIMEType:   "text/plain",
			UploadDate: now,
		}},
		Websites:              []string{"https://google.com"},
		IntegrationType:       domain.IntegrationEvolution,
		EvolutionURL:          "https://api.seuserver.com",
		EvolutionInstanceName: "minha_instancia",
	}
}
