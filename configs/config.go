package configs

import (
	"fmt"
	"os"
)

type Config struct {
	AppPort string

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	RedisHost string
	RedisPort string

	KafkaBrokers string
	KafkaTopic   string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string

	STTServiceURL string
}

func LoadConfig() *Config {
	return &Config{
		AppPort: getEnv("BABBLE_APP_PORT", ":8087"),

		DBHost: getEnv("BABBLE_DB_HOST", "localhost"),
		DBPort: getEnv("BABBLE_DB_PORT", "5432"),
		DBUser: getEnv("BABBLE_DB_USER", "postgres"),
		DBPass: getEnv("BABBLE_DB_PASS", "postgres"),
		DBName: getEnv("BABBLE_DB_NAME", "babble_db"),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnv("REDIS_PORT", "6379"),

		KafkaBrokers: getEnv("KAFKA_BOOTSTRAP_SERVERS", "kafka:9092"),
		KafkaTopic:   getEnv("KAFKA_TOPIC_EVENTS", "babbles.events"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "babble-audio"),

		STTServiceURL: getEnv("STT_SERVICE_URL", "http://stt-service:8090"),
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName,
	)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
