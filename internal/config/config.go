package config

import (
	"os"      // For environment variables
	"strconv" // For string to number conversion
	"time"    // For durations

	"github.com/joho/godotenv"      // For loading .env files
	"github.com/shopspring/decimal" // Price bounds are decimals
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBDriver   string // Database driver: mysql or sqlite
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	SQLitePath string // SQLite file used when DBDriver is sqlite
	JWTSecret  string // JWT secret key used to sign session tokens
	SessionTTL time.Duration
	RedisAddr  string        // Redis server address
	RedisPass  string        // Redis password
	RedisDB    int           // Redis database number
	CacheTTL   time.Duration // TTL of cached account summaries

	PriceMin          decimal.Decimal // Lower bound of the simulated price
	PriceMax          decimal.Decimal // Upper bound of the simulated price
	PriceMaxDeviation decimal.Decimal // Allowed caller price drift from the last quote, 0 disables the check
	PriceTick         time.Duration   // Interval of the background quote publisher, 0 disables it

	LogLevel string // logrus level name
	IsProd   bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:    getEnv("APP_PORT", "8080"),
		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBName:     os.Getenv("DB_NAME"),
		SQLitePath: getEnv("SQLITE_PATH", "trading.db"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		SessionTTL: getDuration("SESSION_TTL", 7*24*time.Hour), // One week
		RedisAddr:  getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass:  os.Getenv("REDIS_PASS"),
		RedisDB:    getInt("REDIS_DB", 0),
		CacheTTL:   getDuration("CACHE_TTL", 60*time.Second),

		PriceMin:          getDecimal("PRICE_MIN", decimal.NewFromInt(450)),
		PriceMax:          getDecimal("PRICE_MAX", decimal.NewFromInt(550)),
		PriceMaxDeviation: getDecimal("PRICE_MAX_DEVIATION", decimal.Zero),
		PriceTick:         getDuration("PRICE_TICK", 5*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		IsProd:   os.Getenv("IS_PROD") == "true", // Is production environment
	}
}

// MySQLDSN builds the Data Source Name for the MySQL driver
func (c *Config) MySQLDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
