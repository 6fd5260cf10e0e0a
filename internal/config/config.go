package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For session TTL parsing

	"github.com/joho/godotenv" // For loading .env files
	"golang.org/x/crypto/bcrypt"
)

// Config holds the application configuration
type Config struct {
	AppPort    string        // Application port
	DataDir    string        // Root directory for users.json and user partitions
	JWTSecret  string        // JWT secret key
	SessionTTL time.Duration // Token and session lifetime, zero means no expiry
	BcryptCost int           // bcrypt work factor for password hashes
	RedisAddr  string        // Redis server address, empty selects the in-process cache
	RedisPass  string        // Redis password
	RedisDB    int           // Redis database number
	LogLevel   string        // logrus level name
	IsProd     bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function, filling defaults for unset values
func FromEnv(getenv func(string) string) *Config {
	redisDB, _ := strconv.Atoi(getenv("REDIS_DB"))
	cost, err := strconv.Atoi(getenv("BCRYPT_COST"))
	if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost // Fall back to the library default
	}
	ttl, err := time.ParseDuration(getenv("SESSION_TTL"))
	if err != nil || ttl < 0 {
		ttl = 0 // Sessions live until sign-out
	}
	return &Config{
		AppPort:    withDefault(getenv("APP_PORT"), "8080"),  // Application port
		DataDir:    withDefault(getenv("DATA_DIR"), "data"),  // Data root
		JWTSecret:  getenv("JWT_SECRET"),                     // JWT secret key
		SessionTTL: ttl,                                      // Session lifetime
		BcryptCost: cost,                                     // Password hash cost
		RedisAddr:  getenv("REDIS_ADDR"),                     // Redis server address
		RedisPass:  getenv("REDIS_PASS"),                     // Redis password
		RedisDB:    redisDB,                                  // Redis database number
		LogLevel:   withDefault(getenv("LOG_LEVEL"), "info"), // Log level
		IsProd:     getenv("IS_PROD") == "true",              // Is production environment
	}
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
