package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/EdgeApp/infinite-ramp/adapters/events"
	"github.com/EdgeApp/infinite-ramp/adapters/store"
	"github.com/EdgeApp/infinite-ramp/infinite"
	"github.com/EdgeApp/infinite-ramp/ports"
	"github.com/EdgeApp/infinite-ramp/service"
	transport "github.com/EdgeApp/infinite-ramp/transport/http"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	apiURL := os.Getenv("INFINITE_API_URL")
	if apiURL == "" {
		apiURL = "https://api.infinite.dev"
	}
	orgID := os.Getenv("INFINITE_ORG_ID")

	apiClient := infinite.New(infinite.Config{APIURL: apiURL, OrgID: orgID})

	// Redis backs both the durable plugin store and event publishing when
	// available; otherwise everything stays in-process.
	var pluginStore ports.Store
	var publisher message.Publisher

	wmLogger := watermill.NewStdLogger(false, false)

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)

		pluginStore = store.NewRedisStore(redisClient)

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			wmLogger,
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}
	} else {
		pluginStore = store.NewMemoryStore()
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
	}

	eventPub := events.NewWatermillPublisher(publisher)

	// The HTTP surface only serves support checks and quote pricing; the
	// interactive approve chain needs an in-process host with screens, so
	// no Screens or Browser are wired here.
	rampService := service.NewRampService(apiClient, pluginStore, nil, nil, eventPub, logger, service.Config{
		Tokens: map[string]map[string]string{
			"ethereum": {
				"usdc": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
				"usdt": "0xdAC17F958D2ee523a2206206994597C13D831ec7",
			},
			"polygon": {
				"usdc": "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359",
			},
		},
	})

	// Setup Gin router
	router := transport.SetupRouter(rampService, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}

	// Start server
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
