package redisx

import (
	"github.com/redis/go-redis/v9"

	"babble-service/configs"
)

func Open(cfg *configs.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
	})
}
