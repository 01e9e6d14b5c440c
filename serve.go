package main

import (
	"context"
	"errors"
	"fmt"
	"innbot/internal/adapters/handler"
	"innbot/internal/adapters/metrics"
	"innbot/internal/adapters/registry"
	"innbot/internal/adapters/sender"
	"innbot/internal/core/domain"
	"innbot/internal/core/domain/command"
	"innbot/internal/core/port"
	"innbot/internal/core/service"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	log.Info().Msg("starting innbot...")

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	token := viper.GetString("telegram.bot_token")
	if token == "" {
		return errors.New("telegram.bot_token is not configured")
	}

	handlerTimeout, err := time.ParseDuration(viper.GetString("handler.timeout"))
	if err != nil {
		return fmt.Errorf("invalid timeout for handler in config: %w", err)
	}

	// handlers run one at a time so the per-chat queues see updates in arrival order
	b, err := bot.New(token, bot.WithDefaultHandler(noOpHandler), bot.WithNotAsyncHandlers())
	if err != nil {
		return fmt.Errorf("failed initializing telegram bot: %w", err)
	}

	s := sender.NewTelegram(b)
	prom := metrics.NewPrometheus()

	p, err := newPipeline(ctx, prom)
	if err != nil {
		return err
	}
	defer p.Close()

	auth, err := service.NewAuthorizer(s)
	if err != nil {
		return fmt.Errorf("failed initializing authorizer: %w", err)
	}

	commandRegistry := newCommandRegistry(s, p.lookup, service.NewLookupQuota(ctx, s))

	router := command.NewRouter(command.RouterParams{
		Registry:   commandRegistry,
		TextSender: s,
		Store:      service.NewConversationStore(),
		Auth:       auth,
		Metrics:    prom,
		Timeout:    handlerTimeout,
	})

	commandHandler := handler.NewCommand(router, s, handlerTimeout)
	b.RegisterHandlerMatchFunc(matchAll, commandHandler.Handle)

	if addr := viper.GetString("metrics.addr"); addr != "" {
		var checks []metrics.HealthCheck
		if p.redis != nil {
			checks = append(checks, p.redis.Ping)
		}

		go func() {
			if err := metrics.Serve(ctx, addr, metrics.NewHandler(prom.Registry(), checks...)); err != nil {
				log.Err(err).Msg("metrics server stopped")
			}
		}()
	}

	log.Info().Msg("bot listening")
	b.Start(ctx)
	commandHandler.Wait()
	log.Info().Msg("bot stopped")

	return nil
}

func newCommandRegistry(s port.TextSender, looker command.BatchLooker, quota service.Quota) *command.Registry {
	registryURL := viper.GetString("registry.home_url")
	if registryURL == "" {
		registryURL = registry.DefaultHomeURL
	}

	r := &command.Registry{}
	r.Register(command.NewStart(s, domain.CommandStart))
	r.Register(command.NewInlineKeyboard(s, domain.CommandInline, registryURL))
	r.Register(command.NewReplyKeyboard(s, domain.CommandReply))
	r.Register(command.NewHideKeyboard(s, domain.CommandHide))
	r.Register(command.NewHelp(s, domain.CommandHelp))
	r.Register(command.NewHello(s, domain.CommandHello))
	r.Register(command.NewLookup(command.LookupParams{
		Looker:     looker,
		Quota:      quota,
		TextSender: s,
		Command:    domain.CommandLookup,
	}))

	return r
}

func matchAll(_ *models.Update) bool {
	return true
}

func noOpHandler(_ context.Context, _ *bot.Bot, _ *models.Update) {}
