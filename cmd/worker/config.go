package main

import (
	"github.com/hibiken/asynq"

	"bookrental-backend/internal/config"
	"bookrental-backend/internal/shared"
	"bookrental-backend/internal/shared/utils"
)

// Config holds the worker specific settings on top of the shared configuration
type Config struct {
	*config.Config
	HealthAddr string
}

func loadConfig(base *config.Config) *Config {
	return &Config{
		Config:     base,
		HealthAddr: utils.GetEnvVariable("WORKER_HEALTH_ADDR", ":9999"),
	}
}

// redisOpt points asynq at the same Redis the API uses
func (c *Config) redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Redis.Host,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

// queueWeights: maintenance tasks keep inventory numbers honest, reports can wait
func queueWeights() map[string]int {
	return map[string]int{
		shared.QueueMaintenance: 10,
		shared.QueueReports:     3,
	}
}
