package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MerrickKing/walrusbot/internal/application/command"
	"github.com/MerrickKing/walrusbot/internal/application/dispatch"
	"github.com/MerrickKing/walrusbot/internal/application/reaction"
	"github.com/MerrickKing/walrusbot/internal/application/verify"
	"github.com/MerrickKing/walrusbot/internal/config"
	"github.com/MerrickKing/walrusbot/internal/domain"
	"github.com/MerrickKing/walrusbot/internal/gateway"
	"github.com/MerrickKing/walrusbot/internal/infrastructure/dynamo"
	jwtinfra "github.com/MerrickKing/walrusbot/internal/infrastructure/jwt"
	"github.com/MerrickKing/walrusbot/internal/infrastructure/redisvote"
	"github.com/MerrickKing/walrusbot/internal/infrastructure/ses"
	s3infra "github.com/MerrickKing/walrusbot/internal/infrastructure/s3"
	"github.com/MerrickKing/walrusbot/internal/infrastructure/smtp"
	"github.com/MerrickKing/walrusbot/internal/infrastructure/sns"
	transporthttp "github.com/MerrickKing/walrusbot/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	users := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	configs := dynamo.NewConfigRepo(dynamoClient, cfg.DynamoTables.Config)

	prefix := mustConf(ctx, configs, domain.ConfKeyPrefix)
	if cfg.AppEnv == "development" {
		if p, err := configs.Get(ctx, domain.ConfKeyDebugPrefix); err == nil {
			prefix = p
		}
	}
	fromName := mustConf(ctx, configs, domain.ConfKeyFromName)
	fromAddr := mustConf(ctx, configs, domain.ConfKeyFromAddr)
	templateKey := mustConf(ctx, configs, domain.ConfKeyTemplateKey)

	var staffRoles []string
	if v, err := configs.Get(ctx, domain.ConfKeyStaffRoles); err == nil {
		staffRoles = strings.Fields(v)
	} else if !errors.Is(err, domain.ErrNotFound) {
		log.Fatalf("config table: %v", err)
	}

	// The email body template lives in S3 and is fetched once at startup.
	s3Client := s3infra.NewClient(cfg)
	templates := s3infra.NewTemplateStore(s3Client, cfg.S3BucketName)
	source, err := templates.Fetch(ctx, templateKey)
	if err != nil {
		log.Fatalf("fetch email template %q: %v", templateKey, err)
	}
	template, err := verify.NewEmailTemplate(source)
	if err != nil {
		log.Fatalf("parse email template: %v", err)
	}

	// SES when AWS credentials are configured, plain SMTP otherwise.
	var mailer verify.Mailer
	if cfg.AWSAccessKeyID != "" {
		m, err := ses.NewMailer(ctx, cfg, fromName, fromAddr)
		if err != nil {
			log.Fatalf("ses mailer: %v", err)
		}
		mailer = m
	} else {
		mailer = smtp.NewMailer(cfg, fromName, fromAddr)
	}

	// SNS ops notifications (optional — graceful fallback).
	var notifier verify.Notifier
	if cfg.SNSTopicARN != "" {
		n, err := sns.NewNotifier(cfg)
		if err != nil {
			log.Printf("WARN: SNS notifier not available: %v", err)
		} else {
			notifier = n
		}
	}

	// Vote tallies need Redis; the vote commands stay unregistered without it.
	var votes *reaction.VoteHandler
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		votes = reaction.NewVoteHandler(redisvote.NewStore(rdb))
	}

	// JWT provider for the ops API (optional — graceful fallback).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	var client gateway.Client = gateway.NewConsole(os.Stdin, os.Stdout)

	confirmations := verify.NewConfirmations(cfg.ConfirmTimeout)
	verifyService := verify.NewService(users, mailer, client, confirmations, template, notifier)

	registry := dispatch.BuildRegistry(dispatch.RegistryDeps{
		Client:     client,
		Verify:     verifyService,
		Votes:      votes,
		StaffRoles: staffRoles,
	})
	resolver := command.NewResolver(registry, client, prefix)
	router := reaction.NewRouter(client, reaction.NewRoleHandler(client), votes)

	dispatcher := dispatch.New(client, resolver, router, verifyService, confirmations)
	go dispatcher.Run(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.OpsPort),
		Handler:      transporthttp.NewRouter(cfg, &transporthttp.Deps{Records: users, JWTProvider: jwtProvider}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Ops server starting on :%s (env=%s)", cfg.OpsPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Stopped")
}

func mustConf(ctx context.Context, configs *dynamo.ConfigRepo, key string) string {
	v, err := configs.MustGet(ctx, key)
	if err != nil {
		log.Fatalf("config table: %v", err)
	}
	return v
}
