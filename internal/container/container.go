package container

import (
	"context"
	"fmt"
	"time"

	"kinobot/internal/config"
	"kinobot/internal/database"
	"kinobot/internal/logger"
	"kinobot/internal/repository"
	"kinobot/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Container wires every long-lived dependency once at process start. Handlers
// receive these instances; nothing is reconstructed per request and no
// package keeps a global handle.
type Container struct {
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Logger    *logrus.Logger
	Catalog   *services.CatalogClient
	Favorites *services.FavoritesService
	Telegram  *services.TelegramClient
	WinkURL   string
}

func New(ctx context.Context, botToken string) (*Container, error) {
	log := logger.Get()

	db, err := newDatabase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := newRedis(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	baseURL, apiKey := config.KinopoiskConfig()
	catalog := services.NewCatalogClient(&services.CatalogConfig{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Timeout:    15 * time.Second,
		RateLimit:  rate.Every(200 * time.Millisecond),
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
		Logger:     log,
		Redis:      redisClient,
	})

	return &Container{
		DB:        db,
		Redis:     redisClient,
		Logger:    log,
		Catalog:   catalog,
		Favorites: services.NewFavoritesService(repository.NewFavoritesRepository(db), log),
		Telegram:  services.NewTelegramClient(botToken, log),
		WinkURL:   config.WinkBaseURL(),
	}, nil
}

func (c *Container) Close() {
	if c.Redis != nil {
		c.Redis.Close()
		c.Logger.Info("Redis connection closed")
	}
	if c.DB != nil {
		c.DB.Close()
		c.Logger.Info("Database connection closed")
	}
}

func newDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	host, port, user, password, name := config.DatabaseConfig()

	if host == "" || port == "" || user == "" || name == "" {
		return nil, fmt.Errorf("missing required database configuration")
	}

	pool, err := database.New(ctx, database.ConnString(host, port, user, password, name))
	if err != nil {
		return nil, err
	}

	logger.Get().Info("Database connection successful")
	return pool, nil
}

func newRedis(ctx context.Context) (*redis.Client, error) {
	host, port, password := config.RedisConfig()

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Get().Info("Redis connection successful")
	return client, nil
}
