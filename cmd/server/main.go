// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/vckeeper/vckeeper/internal/auth"
	"github.com/vckeeper/vckeeper/internal/cache"
	"github.com/vckeeper/vckeeper/internal/config"
	"github.com/vckeeper/vckeeper/internal/database"
	"github.com/vckeeper/vckeeper/internal/discord"
	"github.com/vckeeper/vckeeper/internal/gateway"
	"github.com/vckeeper/vckeeper/internal/handlers"
	"github.com/vckeeper/vckeeper/internal/middleware"
	"github.com/vckeeper/vckeeper/internal/panel"
	"github.com/vckeeper/vckeeper/internal/voice"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	auth.Init()
	database.ConnectDB()
	if err := database.InitSchema(context.Background()); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}
	bootstrapAdmin(logger)

	state := discord.NewState()
	client := discord.NewRESTClient(cfg.DiscordAPIBase, cfg.DiscordToken, state, logger)

	notifiers := []voice.Notifier{panel.NewPresenter(client, logger)}
	if err := cache.ConnectRedis(); err != nil {
		logger.WithError(err).Warn("Redis unavailable; lifecycle queue disabled")
	} else {
		notifiers = append(notifiers, cache.NewPublisher(logger))
	}

	engine := voice.NewEngine(logger, database.Store{}, client, cfg.VoiceRegion, notifiers...)

	consumer := gateway.NewConsumer(cfg.GatewayURL, cfg.DiscordToken, state, engine, logger)
	go func() {
		if err := consumer.Run(context.Background()); err != nil {
			log.Fatalf("gateway consumer exited: %v", err)
		}
	}()

	mux := http.NewServeMux()

	// admin endpoints
	mux.HandleFunc("/admin/login", handlers.LoginHandler)

	// lobby endpoints
	mux.HandleFunc("/lobby/create", handlers.CreateLobbyHandler)
	mux.HandleFunc("/lobby/list", handlers.ListLobbiesHandler)
	mux.HandleFunc("/lobby/delete", handlers.DeleteLobbyHandler)

	// session endpoints
	mux.HandleFunc("/session/list", handlers.ListSessionsHandler)
	mux.HandleFunc("/session/update", handlers.UpdateSessionHandler)

	addr := ":" + cfg.Port
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, middleware.LogMiddleware(logger)(mux)); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// bootstrapAdmin seeds the first admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD if no account exists for that email yet.
func bootstrapAdmin(logger *logrus.Logger) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	ctx := context.Background()
	existing, err := database.GetAdminUserByEmail(ctx, email)
	if err != nil {
		logger.WithError(err).Warn("admin bootstrap lookup failed")
		return
	}
	if existing != nil {
		return
	}

	hash, err := auth.CreateHash(password, auth.Params)
	if err != nil {
		logger.WithError(err).Warn("admin bootstrap hash failed")
		return
	}
	if _, err := database.CreateAdminUser(ctx, email, hash); err != nil {
		logger.WithError(err).Warn("admin bootstrap insert failed")
		return
	}
	logger.WithField("email", email).Info("bootstrapped admin account")
}
