package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/veridian-dev/auth-api/internal/config"
	"github.com/veridian-dev/auth-api/internal/logging"
	"github.com/veridian-dev/auth-api/internal/repository/ports"
	"github.com/veridian-dev/auth-api/internal/repository/postgres"
	redisrepo "github.com/veridian-dev/auth-api/internal/repository/redis"
	"github.com/veridian-dev/auth-api/internal/service"
	transport "github.com/veridian-dev/auth-api/internal/transport/http"
	"github.com/veridian-dev/auth-api/internal/transport/mail"
	"github.com/veridian-dev/auth-api/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	users := postgres.NewUserRepo(db)

	// Revocation prefers Redis when configured: key TTL handles expiry
	// natively, so the sweep has nothing to do there.
	var revoked ports.RevokedTokenRepository = postgres.NewRevokedTokenRepo(db)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		revoked = redisrepo.NewRevokedTokenRepo(client)
		defer client.Close()
	}

	tokens := util.NewJWTManager(cfg.JWTSecret)
	mailer := mail.NewOTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.SMTPUseTLS)

	authSvc := service.NewAuthService(users, revoked, tokens, mailer, cfg.SessionTTL, cfg.ResetTokenTTL)
	userSvc := service.NewUserService(users)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.NewRevocationSweeper(revoked, cfg.SweepInterval).Run(ctx)

	e := transport.NewRouter(cfg.AllowOrigins)
	requireAuth := transport.RequireAuth(authSvc)
	transport.NewAuthHandler(authSvc).Register(e, requireAuth)
	transport.NewUserHandler(userSvc).Register(e, requireAuth)
	transport.RegisterSwagger(e)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
