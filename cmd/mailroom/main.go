package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/devconfhq/mailroom"
	"github.com/devconfhq/mailroom/bolt"
	"github.com/devconfhq/mailroom/email"
	"github.com/devconfhq/mailroom/http"
	"github.com/devconfhq/mailroom/mailjet"
	"github.com/devconfhq/mailroom/smtp"
	"github.com/devconfhq/mailroom/sqlite"
	"github.com/devconfhq/mailroom/subscription"
)

func main() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}

	viper.SetDefault("http.addr", ":8080")
	viper.SetDefault("db.type", "sqlite")
	viper.SetDefault("mail.provider", "smtp")

	var config *mailroom.Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatal(err)
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn: config.Sentry.DSN,
	}); err != nil {
		log.Fatalf("sentry.Init: %v", err)
	}
	defer sentry.Flush(2 * time.Second)

	a := newApp(config)

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		cancel()
	}()

	if err := a.Run(ctx); err != nil {
		_ = a.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	<-ctx.Done()

	if err := a.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	config     *mailroom.Config
	db         mailroom.Database
	store      mailroom.SubscriberService
	httpServer *http.Server
}

func newApp(config *mailroom.Config) *app {
	httpServer, err := http.NewServer()
	if err != nil {
		log.Fatalf("%+v\n", err)
	}

	a := &app{
		config:     config,
		httpServer: httpServer,
	}

	switch config.DB.Type {
	case "bolt":
		db := bolt.NewDB(config.DB.Path)
		a.db = db
		a.store = bolt.NewSubscriberService(db)
	default:
		db := sqlite.NewDB(config.DB.Path)
		a.db = db
		a.store = sqlite.NewSubscriberService(db)
	}

	return a
}

func (a *app) Run(ctx context.Context) error {
	if err := a.db.Open(); err != nil {
		return err
	}

	a.httpServer.Addr = a.config.HTTP.Addr
	a.httpServer.AdminToken = a.config.Admin.Token

	if err := a.httpServer.Open(); err != nil {
		return err
	}

	baseURL := a.config.Site.BaseURL
	if baseURL == "" {
		baseURL = a.httpServer.URL()
	}
	a.httpServer.BaseURL = baseURL

	var sender mailroom.Sender
	switch a.config.Mail.Provider {
	case "mailjet":
		sender = mailjet.NewSender(a.config)
	default:
		sender = smtp.NewSender(a.config)
	}

	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Logger()

	emailService := email.NewService(a.config, baseURL, sender)
	a.httpServer.SubscriptionService = subscription.NewService(a.store, emailService, logger)
	a.httpServer.NewsletterService = subscription.NewDispatcher(a.store, emailService, logger)

	return nil
}

func (a *app) Close() error {
	if a.httpServer != nil {
		if err := a.httpServer.Close(); err != nil {
			return err
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return err
		}
	}

	return nil
}
