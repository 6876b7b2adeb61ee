// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/onboroido/HotpotGame/engine"
)

// Config holds everything the server process needs.
type Config struct {
	ListenAddr    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LogLevel      logrus.Level
	ThinkDelay    time.Duration
	ScoreTable    engine.ScoreTable
}

// Load reads the environment. A missing .env file is not an error; every
// setting has a sensible default.
func Load() Config {
	_ = godotenv.Load()

	table := engine.DefaultScoreTable()
	table.WinBonus = envInt("SCORE_WIN_BONUS", table.WinBonus)
	table.KindTriad = envInt("SCORE_KIND_TRIAD", table.KindTriad)
	table.GroupTriad = envInt("SCORE_GROUP_TRIAD", table.GroupTriad)

	level, err := logrus.ParseLevel(envStr("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}

	return Config{
		ListenAddr:    envStr("LISTEN_ADDR", ":8080"),
		RedisAddr:     envStr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: envStr("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),
		LogLevel:      level,
		ThinkDelay:    time.Duration(envInt("CPU_THINK_MS", 1000)) * time.Millisecond,
		ScoreTable:    table,
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
