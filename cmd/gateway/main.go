package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/curalink/telehealth/session-gateway/internal/adapters/handler"
	"github.com/curalink/telehealth/session-gateway/internal/adapters/messaging"
	"github.com/curalink/telehealth/session-gateway/internal/adapters/metrics"
	"github.com/curalink/telehealth/session-gateway/internal/adapters/middleware"
	"github.com/curalink/telehealth/session-gateway/internal/adapters/restclient"
	"github.com/curalink/telehealth/session-gateway/internal/adapters/storage"
	"github.com/curalink/telehealth/session-gateway/internal/config"
	"github.com/curalink/telehealth/session-gateway/internal/core/services"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	log.Println("Authenticated with Redis successfully")

	codec := services.NewTokenCodec()
	notificationAPI := restclient.NewNotificationClient(cfg.BackendBaseURL)

	registry := services.NewSessionRegistry(func(sid string) *services.Client {
		kv := storage.NewRedisKV(redisClient, sid, cfg.SessionTTL)
		store := storage.NewCredentialStore(kv, codec)
		session := services.NewSessionManager(store)

		cache := services.NewNotificationCache(notificationAPI, func() (string, bool) {
			id, ok := session.Identity()
			return id.Token, ok
		})
		cache.OnAuthRejected(session.HandleAuthRejected)

		// Polling is a per-credential resource: it starts when the
		// session authenticates, never for a session that only ever
		// restores to anonymous.
		var pollMu sync.Mutex
		var stopPolling func()
		session.OnAuthenticated(func() {
			pollMu.Lock()
			defer pollMu.Unlock()
			if stopPolling != nil {
				stopPolling()
			}
			stopPolling = cache.StartPolling(ctx, cfg.PollInterval)
		})
		session.OnLogout(func() {
			pollMu.Lock()
			if stopPolling != nil {
				stopPolling()
				stopPolling = nil
			}
			pollMu.Unlock()
			cache.Reset()
		})

		return &services.Client{Session: session, Notifications: cache}
	})
	metrics.TrackLiveSessions(registry.Len)

	var broker *messaging.RabbitMQBroker
	if cfg.RabbitMQURL != "" {
		var err error
		broker, err = messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.QueueName)
		if err != nil {
			log.Printf("WARNING - push delivery disabled, failed to connect to RabbitMQ: %v", err)
		} else {
			defer broker.Close()
			go func() {
				if err := broker.Consume(ctx, registry); err != nil && err != context.Canceled {
					log.Printf("notification consumer stopped: %v", err)
				}
			}()
		}
	}

	guard := middleware.NewGuard(registry)
	authHandler := handler.NewAuthHandler(registry, codec)
	sessionHandler := handler.NewSessionHandler(registry)
	notificationHandler := handler.NewNotificationHandler(registry)
	portalHandler := handler.NewPortalHandler()

	var brokerPinger handler.BrokerPinger
	if broker != nil {
		brokerPinger = broker
	}
	healthHandler := handler.NewHealthHandler(redisClient, brokerPinger)

	mux := routes(guard, authHandler, sessionHandler, notificationHandler, portalHandler, healthHandler)

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: corsHandler(mux),
	}

	go func() {
		log.Printf("Starting session gateway on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

func routes(
	guard *middleware.Guard,
	authHandler *handler.AuthHandler,
	sessionHandler *handler.SessionHandler,
	notificationHandler *handler.NotificationHandler,
	portalHandler *handler.PortalHandler,
	healthHandler *handler.HealthHandler,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Health endpoints (OpenShift compatible)
	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/health/ready", healthHandler.Ready)
	mux.HandleFunc("/health/live", healthHandler.Live)
	mux.Handle("/metrics", metrics.Handler())

	// Session endpoints
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("GET /auth/callback", authHandler.Callback)
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.HandleFunc("GET /session", sessionHandler.Current)

	// Notification endpoints
	mux.Handle("GET /notification", guard.RequireAuth(http.HandlerFunc(notificationHandler.List)))
	mux.Handle("GET /notification/unread-count", guard.RequireAuth(http.HandlerFunc(notificationHandler.UnreadCount)))
	mux.Handle("PATCH /notification/{id}/read", guard.RequireAuth(http.HandlerFunc(notificationHandler.MarkRead)))

	// Guarded portal prefixes. The exact path and the subtree are
	// separate patterns to the mux; the patient portal needs both.
	mux.Handle("/admin/", guard.RequireAdmin(portalHandler.Portal("admin")))
	mux.Handle("/doctor/", guard.RequireDoctor(portalHandler.Portal("doctor")))
	mux.Handle("/profile", guard.RequirePatient(portalHandler.Portal("patient")))
	mux.Handle("/profile/", guard.RequirePatient(portalHandler.Portal("patient")))

	return mux
}
