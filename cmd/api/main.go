package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/xavierca1/ligue-leads/internal/config"
	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/database"
	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/kommo"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/whatsapp"
	"github.com/xavierca1/ligue-leads/internal/infra/mail"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("⚠️ .env: %v", err)
	}
	cfg := config.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Repositório
	var (
		db       *sql.DB
		leadRepo entity.LeadRepositoryInterface
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.NewDBConnection(cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ database: %v", err)
		}
		defer db.Close()

		if cfg.RunMigrations {
			if err := database.Migrate(ctx, db); err != nil {
				log.Fatalf("❌ migrations: %v", err)
			}
		}
		leadRepo = database.NewLeadRepository(db)
	} else {
		log.Println("⚠️ DATABASE_URL vazio: usando repositório em memória")
		leadRepo = database.NewMemoryLeadRepository()
	}

	// 2. Fila + worker (Kommo, WhatsApp e alerta por email)
	kommoClient := kommo.NewClient(cfg.KommoBaseURL, cfg.KommoAPIToken, cfg.KommoStatusID)

	var (
		publisher usecase.LeadEventPublisher
		rabbit    *queue.RabbitMQ
	)
	if cfg.AMQPURL != "" {
		var err error
		rabbit, err = queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("❌ rabbitmq: %v", err)
		}
		defer rabbit.Close()
		publisher = queue.NewProducer(rabbit.Ch)

		consumerCh, err := rabbit.Conn.Channel()
		if err != nil {
			log.Fatalf("❌ rabbitmq consumer channel: %v", err)
		}
		defer consumerCh.Close()

		var leadHandlers []queue.LeadHandler
		if kommoClient.Configured() {
			leadHandlers = append(leadHandlers, kommoClient)
		}
		if wa := whatsapp.NewClient(cfg.WhatsAppBaseURL, cfg.WhatsAppToken, cfg.WhatsAppPhoneID, cfg.WhatsAppTmpl); wa.Configured() {
			leadHandlers = append(leadHandlers, wa)
		}
		if cfg.MailEnabled() {
			leadHandlers = append(leadHandlers, mail.NewEmailSender(
				cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPassword, cfg.MailFrom, cfg.NotifyTo,
			))
		}

		worker := queue.NewWorker(consumerCh, leadHandlers...)
		go func() {
			if err := worker.Start(ctx, queue.QueueName); err != nil {
				log.Printf("❌ worker: %v", err)
			}
		}()
	} else {
		log.Println("⚠️ AMQP_URL vazio: eventos lead.created desativados")
	}

	// 3. UseCases
	createUC := usecase.NewCreateLeadUseCase(leadRepo, publisher)
	webhookUC := usecase.NewIngestWebhookUseCase(leadRepo, publisher, cfg.WebhookSecret)
	listUC := usecase.NewListLeadsUseCase(leadRepo)
	lifecycleUC := usecase.NewLeadLifecycleUseCase(leadRepo)
	exportUC := usecase.NewExportLeadsUseCase(leadRepo)

	if cfg.WebhookSecret == "" {
		log.Println("⚠️ WEBHOOK_SECRET vazio: webhooks aceitos sem assinatura")
	}

	// 4. Handlers + router
	var crm handlers.CRMPinger
	if kommoClient.Configured() {
		crm = kommoClient
	}
	health := handlers.NewHealthHandler(nil, nil, crm)
	if db != nil {
		health.DB = db
	}
	if rabbit != nil {
		health.RabbitMQ = rabbit.Conn
	}

	router := newRouter(routerDeps{
		Lead:          handlers.NewLeadHandler(createUC, cfg.RateLimitPerMin),
		Webhook:       handlers.NewWebhookHandler(webhookUC),
		Admin:         handlers.NewAdminLeadHandler(listUC, lifecycleUC, exportUC),
		Health:        health,
		AuthJWTSecret:     cfg.AuthJWTSecret,
		CORSOrigins:       cfg.CORSOrigins,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🔥 Lead service rodando na porta %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ http: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("encerrando...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ shutdown: %v", err)
	}
}
