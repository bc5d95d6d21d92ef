package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	ServerPort  string `env:"SERVER_PORT"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Внешний шлюз метаданных (OMDb).
	OMDbAPIKey  string        `env:"OMDB_API_KEY,required"`
	OMDbBaseURL string        `env:"OMDB_BASE_URL" envDefault:"https://www.omdbapi.com"`
	OMDbTimeout time.Duration `env:"OMDB_TIMEOUT" envDefault:"10s"`

	// Сессии.
	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	// Хранилище постеров (MinIO / S3-совместимое).
	MinioEndpoint        string `env:"MINIO_ENDPOINT,required"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID,required"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY,required"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME,required"`
	MinioRegion          string `env:"MINIO_REGION,required"`
	MinioPublicBaseURL   string `env:"MINIO_PUBLIC_BASE_URL" envDefault:"http://localhost:9000"`

	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL,required"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"movie_enrich_queue"`
	}

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	return &cfg, nil
}
