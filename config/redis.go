package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis connects the shared client used for the study-context cache
// and the per-session response pub/sub channels.
func InitRedis() error {
	val := os.Getenv("REDIS_ADDR")
	if val == "" {
		val = os.Getenv("REDIS_URI")
	}
	if val == "" {
		return errors.New("REDIS_ADDR (or REDIS_URI) environment variable is not set")
	}

	var opt *redis.Options
	if strings.HasPrefix(val, "redis://") || strings.HasPrefix(val, "rediss://") {
		parsed, err := redis.ParseURL(val)
		if err != nil {
			return err
		}
		opt = parsed
	} else {
		opt = &redis.Options{Addr: val}
	}
	opt.ClientName = "studybuddy"
	RedisClient = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return RedisClient.Ping(ctx).Err()
}
