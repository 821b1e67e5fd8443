package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Networking NetworkingConfig
	Meetings   MeetingsConfig
	Zego       ZegoConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all (e.g. http://localhost:3000,http://localhost:3001)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/networking?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// NetworkingConfig tunes match generation and the refresh timers.
type NetworkingConfig struct {
	CandidatePoolSize int
	MinScore          int
	MaxPrimary        int
	MaxFallback       int
	RefreshInterval   time.Duration // snapshot push while a socket is open
	SweepSpec         string        // cron spec for cmd/worker
	GenerationTTL     time.Duration // lifetime of the per-session generation flag
}

// MeetingsConfig holds scheduler settings.
type MeetingsConfig struct {
	Location      *time.Location // wall clock used to read date + time of virtual meetings
	VideoDuration time.Duration
}

// ZegoConfig holds ZEGOCLOUD credentials for video meeting rooms.
// Empty AppID or RoomBaseURL disables room links.
type ZegoConfig struct {
	AppID        uint32
	ServerSecret string
	RoomBaseURL  string // e.g. https://app.example.com/call
	TokenTTL     time.Duration
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	loc := time.Local
	if name := getEnv("MEETING_TIMEZONE", ""); name != "" {
		l, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("MEETING_TIMEZONE: %w", err)
		}
		loc = l
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "networking"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		Networking: NetworkingConfig{
			CandidatePoolSize: getEnvInt("CANDIDATE_POOL_SIZE", 80),
			MinScore:          getEnvInt("MATCH_MIN_SCORE", 35),
			MaxPrimary:        getEnvInt("MATCH_MAX_PRIMARY", 12),
			MaxFallback:       getEnvInt("MATCH_MAX_FALLBACK", 8),
			RefreshInterval:   time.Duration(getEnvInt("NETWORKING_REFRESH_SEC", 10)) * time.Second,
			SweepSpec:         getEnv("MATCH_SWEEP_SPEC", "@every 15m"),
			GenerationTTL:     time.Duration(getEnvInt("MATCH_GENERATION_TTL_HOURS", 24)) * time.Hour,
		},
		Meetings: MeetingsConfig{
			Location:      loc,
			VideoDuration: time.Duration(getEnvInt("MEETING_VIDEO_MINUTES", 30)) * time.Minute,
		},
		Zego: ZegoConfig{
			AppID:        uint32(getEnvInt("ZEGO_APP_ID", 0)),
			ServerSecret: getEnv("ZEGO_SERVER_SECRET", ""),
			RoomBaseURL:  strings.TrimRight(getEnv("MEETING_ROOM_BASE_URL", ""), "/"),
			TokenTTL:     time.Duration(getEnvInt("ZEGO_TOKEN_TTL_SEC", 3600*24)) * time.Second,
		},
	}
	return cfg, nil
}

// AllowedOrigins splits CORSAllowedOrigins.
func (c ServerConfig) AllowedOrigins() []string {
	return splitTrim(c.CORSAllowedOrigins, ",")
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
