package app

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
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "greenleaf/docs"
	"greenleaf/internal/config"
	"greenleaf/internal/handlers"
	"greenleaf/internal/logger"
	"greenleaf/internal/menu"
	"greenleaf/internal/metrics"
	"greenleaf/internal/middleware"
	"greenleaf/internal/pdf"
	"greenleaf/internal/queue"
	"greenleaf/internal/repositories"
	"greenleaf/internal/routes"
	"greenleaf/internal/services"
)

const defaultConfigPath = "config/config.yaml"

// Run wires every component and serves until SIGINT or SIGTERM.
func Run() error {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === БД ===
	db, err := repositories.OpenPostgres(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "close database", "error", err)
		}
	}()
	leadRepo := repositories.NewLeadRepository(db)
	if err := leadRepo.EnsureSchema(ctx); err != nil {
		return err
	}

	// === Уведомления ===
	labels := cfg.Menu
	formatter := menu.NewFormatter(labels)
	notifiers := services.NewMultiNotifier()

	var (
		bot *tgbotapi.BotAPI
		tg  *services.TelegramService
	)
	if cfg.Telegram.Token != "" {
		bot, err = tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return fmt.Errorf("telegram bot: %w", err)
		}
		bot.Debug = cfg.Telegram.Debug
		tg = services.NewTelegramService(bot, cfg.Telegram.OperatorChatIDs)
		notifiers.Add("telegram", tg)
		logger.Info(ctx, "telegram bot authorized", "username", bot.Self.UserName, "operators", len(cfg.Telegram.OperatorChatIDs))
	} else {
		logger.Warn(ctx, "telegram disabled: no bot token")
	}

	if cfg.Email.Enabled {
		notifiers.Add("email", services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
			cfg.Email.To,
		))
	}

	opts := []services.LeadServiceOption{
		services.WithNotifier(notifiers),
		services.WithAlerts(formatter),
	}

	// === События ===
	if cfg.AMQP.URL != "" {
		rabbit, err := queue.NewRabbitMQ(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		defer rabbit.Close()
		opts = append(opts, services.WithEvents(queue.NewProducer(rabbit.Ch, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)))
		logger.Info(ctx, "lead events enabled", "exchange", cfg.AMQP.Exchange)
	}

	// === Сервисы ===
	leadService := services.NewLeadService(leadRepo, cfg.Leads.MaxCompletedRetained, opts...)
	if cfg.Leads.CleanupOnStart {
		res := leadService.Cleanup(ctx)
		logger.Info(ctx, "startup cleanup done", "deleted", res.Deleted)
	}
	builder := menu.NewBuilder(leadService, labels)

	reportLabels := pdf.DefaultReportLabels()
	reportLabels.Kind = labels.Kind
	report := pdf.NewHistoryReport(cfg.Reports.FontPath, reportLabels)

	// === Handlers ===
	healthHandler := handlers.NewHealthHandler(leadRepo)
	intakeHandler := handlers.NewIntakeHandler(leadService)
	leadHandler := handlers.NewLeadHandler(leadService)
	reportHandler := handlers.NewReportHandler(leadService, report)
	authHandler := handlers.NewAuthHandler(cfg, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)

	var integrationsHandler *handlers.IntegrationsHandler
	if tg != nil {
		integrationsHandler = handlers.NewIntegrationsHandler(tg, builder, cfg.IsOperator, cfg.Telegram.WebhookSecret)
	}

	// === Gin ===
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(metrics.Middleware())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		middleware.AuthMiddleware([]byte(cfg.Auth.JWTSecret)),
		// у формы и логина свои счётчики
		middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		healthHandler,
		intakeHandler,
		leadHandler,
		reportHandler,
		authHandler,
		webhookHandler(cfg.Telegram, integrationsHandler),
	)

	// === Telegram updates ===
	if integrationsHandler != nil {
		if err := startUpdates(ctx, cfg.Telegram, bot, tg, integrationsHandler); err != nil {
			return err
		}
	}

	// === Запуск ===
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info(context.Background(), "shutting down server...")

	if bot != nil && cfg.Telegram.Mode != modeWebhook {
		bot.StopReceivingUpdates()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info(context.Background(), "server exited gracefully")
	return nil
}
