// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"shipflow/config"

	"github.com/go-redis/redis/v8"
)

// WizardCacheClient is the dedicated client for resumable wizard state.
var WizardCacheClient *redis.Client

// InitWizardCache initializes the Redis client backing resumable wizard
// sessions (using DB from AppConfig).
func InitWizardCache() {
	WizardCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisWizardDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := WizardCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Wizard Cache): %v", err)
	}
}

// GetWizardCacheClient returns the Redis client for wizard state.
func GetWizardCacheClient() *redis.Client {
	if WizardCacheClient == nil {
		InitWizardCache()
	}
	return WizardCacheClient
}
