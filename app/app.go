package app

import (
	"context"
	"log"
	"os"
	"time"

	"referral-service/db"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Config Config
}

// Config 从环境变量读取；StartedAt 启动时设置一次，之后只读
type Config struct {
	RedisAddr string
	RedisPwd  string
	WebOrigin string
	CodeTTL   time.Duration
	StartedAt time.Time
}

func MustNew() *App {
	cfg := loadConfig()

	// --- DB: Postgres ---
	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	return &App{Router: r, DB: dbConn, RDB: rdb, Config: cfg}
}

func (a *App) Close() { _ = a.RDB.Close() }

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	ttlSec := get("VERIFY_CODE_TTL_SECONDS", "180")
	var ttl time.Duration = 3 * time.Minute
	if d, err := time.ParseDuration(ttlSec + "s"); err == nil {
		ttl = d
	}
	return Config{
		RedisAddr: get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:  os.Getenv("REDIS_PASSWORD"),
		WebOrigin: get("WEB_ORIGIN", "http://localhost:3000"),
		CodeTTL:   ttl,
		StartedAt: time.Now(),
	}
}
