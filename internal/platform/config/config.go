package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	MirrorDSN    string
	KafkaBrokers []string

	ChainContractAddress string
	ChainSignerMode      string
	ChainSignerKeyID     string
	ChainCallTimeout     time.Duration
	LoginChallengeTTL    time.Duration

	MirrorPoolSize int
	SweepInterval  time.Duration
	RelayInterval  time.Duration

	EnableLifecycleSweep bool
	EnableOutboxRelay    bool
	EnableMirrorRelay    bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "ballotcore"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	signerMode := strings.TrimSpace(strings.ToLower(os.Getenv("CHAIN_SIGNER_MODE")))
	if signerMode == "" {
		signerMode = "custodial"
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		MirrorDSN:    os.Getenv("MIRROR_DSN"),
		KafkaBrokers: brokers,

		ChainContractAddress: os.Getenv("CHAIN_CONTRACT_ADDRESS"),
		ChainSignerMode:      signerMode,
		ChainSignerKeyID:     os.Getenv("CHAIN_SIGNER_KEY_ID"),
		ChainCallTimeout:     envDuration("CHAIN_CALL_TIMEOUT", 10*time.Second),
		LoginChallengeTTL:    envDuration("LOGIN_CHALLENGE_TTL", 5*time.Minute),

		MirrorPoolSize: envInt("MIRROR_POOL_SIZE", 8),
		SweepInterval:  envDuration("SWEEP_INTERVAL", time.Minute),
		RelayInterval:  envDuration("RELAY_INTERVAL", 5*time.Second),

		EnableLifecycleSweep: envBool("ENABLE_LIFECYCLE_SWEEP", true),
		EnableOutboxRelay:    envBool("ENABLE_OUTBOX_RELAY", true),
		EnableMirrorRelay:    envBool("ENABLE_MIRROR_RELAY", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
