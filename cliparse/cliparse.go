// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultVoterPassTTL is the inactivity window of a voter pass
const DefaultVoterPassTTL = 10 * time.Minute

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	AdminUsername     string
	AdminPasswordHash string
	AdminTokenSecret  string
	IPHashSalt        string

	StudentIDPrefix string
	VoterPassTTL    time.Duration
	ShowLiveCounts  bool

	// Optional collaborators; empty means in-process fallbacks
	RedisURL      string
	ImageStoreURL string
	ImageStoreKey string
	KafkaBrokers  []string
	AuditTopic    string
}

// ParseFlags validates flags and fills the rest from the environment.
// A .env file in the working directory is loaded first if present; real
// environment variables win over it.
func ParseFlags(args []string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	var brokers string

	fs := flag.NewFlagSet("quickly-elect", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for voter passes")
	fs.StringVar(&brokers, "kafka", "", "Comma-separated Kafka brokers for audit events")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminTokenSecret, "token-secret", "", "Admin token signing secret (prefer env)")
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "IP hash salt (prefer env)")

	// Election behaviour
	fs.StringVar(&cfg.StudentIDPrefix, "student-prefix", "", "Student ID prefix")
	fs.DurationVar(&cfg.VoterPassTTL, "pass-ttl", 0, "Voter pass inactivity timeout")
	fs.BoolVar(&cfg.ShowLiveCounts, "live-counts", false, "Show live vote counts to voters")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}

	// Admin credential - MUST be provided
	cfg.AdminUsername = os.Getenv("ADMIN_USERNAME")
	if cfg.AdminUsername == "" {
		return Config{}, errors.New("ADMIN_USERNAME required")
	}
	cfg.AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")
	if cfg.AdminPasswordHash == "" {
		return Config{}, errors.New("ADMIN_PASSWORD_HASH required")
	}

	if cfg.AdminTokenSecret == "" {
		cfg.AdminTokenSecret = os.Getenv("ADMIN_TOKEN_SECRET")
	}
	if cfg.AdminTokenSecret == "" {
		return Config{}, errors.New("ADMIN_TOKEN_SECRET required")
	}

	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}
	if cfg.IPHashSalt == "" {
		return Config{}, errors.New("IP_HASH_SALT required")
	}

	if cfg.StudentIDPrefix == "" {
		cfg.StudentIDPrefix = os.Getenv("STUDENT_ID_PREFIX")
		if cfg.StudentIDPrefix == "" {
			cfg.StudentIDPrefix = "AA"
		}
	}

	if cfg.VoterPassTTL == 0 {
		cfg.VoterPassTTL = DefaultVoterPassTTL
		if ttlStr := os.Getenv("VOTER_PASS_TTL"); ttlStr != "" {
			ttl, err := time.ParseDuration(ttlStr)
			if err != nil || ttl <= 0 {
				return Config{}, fmt.Errorf("invalid VOTER_PASS_TTL %q", ttlStr)
			}
			cfg.VoterPassTTL = ttl
		}
	}

	if !cfg.ShowLiveCounts {
		if liveStr := os.Getenv("SHOW_LIVE_COUNTS"); liveStr != "" {
			live, err := strconv.ParseBool(liveStr)
			if err != nil {
				return Config{}, errors.New("invalid SHOW_LIVE_COUNTS env variable")
			}
			cfg.ShowLiveCounts = live
		}
	}

	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	cfg.ImageStoreURL = os.Getenv("IMAGE_STORE_URL")
	cfg.ImageStoreKey = os.Getenv("IMAGE_STORE_KEY")

	if brokers == "" {
		brokers = os.Getenv("KAFKA_BROKERS")
	}
	cfg.KafkaBrokers = splitList(brokers)
	cfg.AuditTopic = os.Getenv("AUDIT_TOPIC")
	if cfg.AuditTopic == "" {
		cfg.AuditTopic = "election-audit"
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
