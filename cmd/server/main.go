package main

import (
	"os"
	"strings"

	"github.com/codingconcepts/env"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/golden-vcr/auth"
	"github.com/golden-vcr/server-common/entry"
	"github.com/golden-vcr/server-common/rmq"
	"github.com/golden-vcr/twitter-auth/internal/admin"
	"github.com/golden-vcr/twitter-auth/internal/events"
	"github.com/golden-vcr/twitter-auth/internal/login"
	"github.com/golden-vcr/twitter-auth/internal/oauth"
	"github.com/golden-vcr/twitter-auth/internal/pending"
	"github.com/golden-vcr/twitter-auth/internal/session"
	"github.com/golden-vcr/twitter-auth/internal/userauth"
	"github.com/golden-vcr/twitter-auth/internal/users"
)

type Config struct {
	BindAddr   string `env:"BIND_ADDR"`
	ListenPort uint16 `env:"LISTEN_PORT" default:"5010"`
	Origin     string `env:"ORIGIN" default:"https://goldenvcr.com/api/twitter-auth"`
	LoginURL   string `env:"LOGIN_URL" default:"https://goldenvcr.com/login"`
	SuccessURL string `env:"SUCCESS_URL" default:"https://goldenvcr.com/"`

	TwitterConsumerKey    string `env:"TWITTER_CONSUMER_KEY" required:"true"`
	TwitterConsumerSecret string `env:"TWITTER_CONSUMER_SECRET" required:"true"`
	TwitterAPIURL         string `env:"TWITTER_API_URL" default:"https://api.twitter.com"`

	SessionSecret     string `env:"SESSION_SECRET" required:"true"`
	SessionTTLMinutes int    `env:"SESSION_TTL_MINUTES" default:"1440"`

	DatabasePath string `env:"DATABASE_PATH" default:"twitter-auth.db"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	RmqHost     string `env:"RMQ_HOST"`
	RmqPort     int    `env:"RMQ_PORT" default:"5672"`
	RmqVhost    string `env:"RMQ_VHOST"`
	RmqUser     string `env:"RMQ_USER"`
	RmqPassword string `env:"RMQ_PASSWORD"`

	AuthURL string `env:"AUTH_URL" default:"http://localhost:5002"`
}

func main() {
	app, ctx := entry.NewApplication("twitter-auth")
	defer app.Stop()

	// Parse config from environment variables
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		app.Fail("Failed to load .env file", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		app.Fail("Failed to load config", err)
	}

	// Open the SQLite database that stores local user accounts
	userStore, err := users.Open(config.DatabasePath)
	if err != nil {
		app.Fail("Failed to open user database", err)
	}
	defer userStore.Close()

	// Temporary credentials are kept in Redis if configured, so that any instance can
	// handle the callback from Twitter; otherwise they're kept in memory
	var pendingStore pending.Store = pending.NewBuffer()
	if config.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			app.Fail("Failed to connect to Redis", err)
		}
		defer rdb.Close()
		pendingStore = pending.NewRedisStore(rdb)
	}

	// Login events are announced via AMQP if configured
	var publisher events.Publisher = events.NopPublisher{}
	if config.RmqHost != "" {
		amqpConn, err := amqp.Dial(rmq.FormatConnectionString(config.RmqHost, config.RmqPort, config.RmqVhost, config.RmqUser, config.RmqPassword))
		if err != nil {
			app.Fail("Failed to connect to AMQP server", err)
		}
		defer amqpConn.Close()
		publisher, err = events.NewAMQPPublisher(amqpConn)
		if err != nil {
			app.Fail("Failed to initialize AMQP publisher", err)
		}
	}

	// Initialize an auth client so we can require broadcaster-level access in order to
	// call the admin-only account management endpoints
	authClient, err := auth.NewClient(ctx, config.AuthURL)
	if err != nil {
		app.Fail("Failed to initialize auth client", err)
	}

	issuer, err := session.NewIssuer(config.SessionSecret)
	if err != nil {
		app.Fail("Failed to initialize session issuer", err)
	}

	// Wire up the login pipeline: the OAuth client handles both legs of the handshake
	// with Twitter, the host login routine checks local account state (via the account
	// checker) and registers new users, and the bridge ties the two together
	oauthClient := oauth.NewClient(
		config.TwitterConsumerKey,
		config.TwitterConsumerSecret,
		config.Origin+"/login/finish",
		oauth.WithAPIURL(config.TwitterAPIURL),
	)
	host := session.NewHost(userStore, session.TTL(config.SessionTTLMinutes), login.NewAccountChecker(userStore))
	bridge := login.NewBridge(oauthClient, host)
	app.Log().Info(
		"Initialized Twitter login",
		"callbackUrl", config.Origin+"/login/finish",
		"sharedPendingStore", config.RedisAddr != "",
		"publishEvents", config.RmqHost != "",
	)

	// Start setting up our HTTP handlers, using gorilla/mux for routing
	r := mux.NewRouter()

	// A user can GET /login/start to be sent to Twitter, which will send them back to
	// GET /login/finish; GET /session and DELETE /session inspect and end the session
	secureCookies := strings.HasPrefix(config.Origin, "https://")
	userauthServer := userauth.NewServer(oauthClient, pendingStore, bridge, issuer, publisher, config.LoginURL, config.SuccessURL, secureCookies)
	userauthServer.RegisterRoutes(r)

	// The broadcaster can GET /users/{username} to inspect an account, and PATCH it to
	// block or unblock it, or to change its activation state
	adminServer := admin.NewServer(userStore)
	adminServer.RegisterRoutes(authClient, r)

	// Handle incoming HTTP connections until our top-level context is canceled, at
	// which point shut down cleanly
	entry.RunServer(ctx, app.Log(), r, config.BindAddr, config.ListenPort)
}
