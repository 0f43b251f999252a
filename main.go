package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vitalmech/assistant/agent/chatbot"
	contractx "github.com/vitalmech/assistant/agent/contract"
	leadx "github.com/vitalmech/assistant/agent/lead"
	promptx "github.com/vitalmech/assistant/agent/prompt"
	statex "github.com/vitalmech/assistant/agent/state"
	toolx "github.com/vitalmech/assistant/agent/tool"
	completionx "github.com/vitalmech/assistant/pkg/completion"
	configx "github.com/vitalmech/assistant/pkg/config"
	_ "github.com/vitalmech/assistant/pkg/logger/autoload"
	notifyx "github.com/vitalmech/assistant/pkg/notify"
	serverx "github.com/vitalmech/assistant/server"
)

type AppConfig struct {
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:":5000"`
	LeadFile    string `envconfig:"LEAD_FILE" default:"data/leads.json"`
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
	MaxSessions int    `envconfig:"MAX_SESSIONS" default:"1024"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")
	completionCfg := configx.MustNew[completionx.Config]("COMPLETION")
	notifyCfg := configx.MustNew[notifyx.Config]("NOTIFY")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	completer, err := completionx.NewClient(*completionCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("completion client init failed")
	}

	ledger, closeLedger, err := buildLedger(ctx, appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("ledger init failed")
	}
	defer closeLedger()

	notifier, err := notifyx.NewWebhook(*notifyCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("notifier init failed")
	}

	profile, err := promptx.LoadCompanyProfile()
	if err != nil {
		log.Fatal().Err(err).Msg("company profile load failed")
	}

	sessions := statex.NewRegistry(statex.WithMaxSessions(appCfg.MaxSessions))
	gateway := toolx.NewGateway(ledger, asNotifier(notifier))

	bot, err := chatbot.New(completer, gateway, sessions, promptx.BuildSystemPrompt(profile))
	if err != nil {
		log.Fatal().Err(err).Msg("chatbot init failed")
	}

	srv := &http.Server{
		Addr:    appCfg.ListenAddr,
		Handler: serverx.NewHandler(bot, ledger, sessions),
	}

	go func() {
		log.Info().Str("addr", appCfg.ListenAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

func buildLedger(ctx context.Context, cfg *AppConfig) (contractx.Ledger, func(), error) {
	if cfg.PostgresDSN != "" {
		pg, err := leadx.NewPostgresLedger(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("using postgres lead ledger")
		return pg, func() { _ = pg.Close() }, nil
	}

	fl, err := leadx.NewFileLedger(cfg.LeadFile)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("path", cfg.LeadFile).Msg("using file lead ledger")
	return fl, func() {}, nil
}

// asNotifier keeps a disabled webhook (typed nil) from turning into a
// non-nil interface value in the gateway.
func asNotifier(w *notifyx.Webhook) contractx.Notifier {
	if w == nil {
		return nil
	}
	return w
}
