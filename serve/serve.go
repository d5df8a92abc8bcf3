// Package serve implements the onboard serve command: it wires the
// checklist, the agent router and the websocket hub behind one HTTP server.
package serve

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DarlingtonDeveloper/onboarding-agent/agent"
	"github.com/DarlingtonDeveloper/onboarding-agent/api"
	"github.com/DarlingtonDeveloper/onboarding-agent/checklist"
	"github.com/DarlingtonDeveloper/onboarding-agent/config"
	"github.com/DarlingtonDeveloper/onboarding-agent/gateway"
	"github.com/DarlingtonDeveloper/onboarding-agent/usage"
	"github.com/DarlingtonDeveloper/onboarding-agent/ws"
)

// ShutdownTimeout bounds how long in-flight requests get after a stop signal
const ShutdownTimeout = 10 * time.Second

// EventBudgetWarning is emitted on the usage topic when the token budget
// crosses a threshold
const EventBudgetWarning = "budget_warning"

// App is the fully wired service
type App struct {
	Store   *checklist.Store
	Usage   *usage.Accumulator
	Hub     *ws.Hub
	Gateway *gateway.OpenAI
	Router  *agent.Router
	Handler http.Handler
}

// Build wires every component from cfg. Nothing is started.
func Build(cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	hub := ws.NewHub(logger)
	store := checklist.NewDefaultStore()

	acc := usage.NewAccumulator(cfg.LLM.TokenBudget, func(model string, budget, used, remaining int) {
		logger.Warn("token budget threshold crossed",
			zap.String("model", model),
			zap.Int("budget", budget),
			zap.Int("used", used),
			zap.Int("remaining", remaining))
		hub.BroadcastRaw(ws.TopicUsage, EventBudgetWarning, map[string]interface{}{
			"model":     model,
			"budget":    budget,
			"used":      used,
			"remaining": remaining,
		})
	})

	gw := gateway.NewOpenAI(gateway.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}, acc, logger.Named("gateway"))

	router := agent.NewRouter(gw,
		agent.WithMaxTokens(cfg.LLM.MaxOutputTokens),
		agent.WithLogger(logger.Named("agent")),
		agent.WithNotifier(hub),
	)

	// --- State provider for initial sync ---
	hub.SetStateProvider(func() interface{} {
		return map[string]interface{}{"tasks": store.ListTasks()}
	})

	apiServer := api.NewServer(api.Options{
		Store:          store,
		Agent:          router,
		Usage:          acc,
		Notifier:       hub,
		WebSocket:      http.HandlerFunc(hub.HandleWebSocket),
		KeyStatus:      cfg.KeyStatus(),
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger.Named("http"),
	})

	return &App{
		Store:   store,
		Usage:   acc,
		Hub:     hub,
		Gateway: gw,
		Router:  router,
		Handler: apiServer.Routes(),
	}
}

// Run starts the server and blocks until ctx is cancelled, SIGINT or
// SIGTERM arrives, or the listener fails.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := Build(cfg, logger)
	status := cfg.KeyStatus()
	if !status.HasOpenAIKey {
		logger.Warn("no usable OpenAI API key configured; /api/agent/respond will fail")
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", server.Addr),
			zap.String("model", app.Gateway.Model()),
			zap.Int("max_output_tokens", app.Router.MaxTokens()),
			zap.Int("tasks", app.Store.Len()),
			zap.Bool("has_openai_key", status.HasOpenAIKey))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
