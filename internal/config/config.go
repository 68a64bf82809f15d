package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Database    DatabaseConfig
	Extractor   ExtractorConfig
	Actuator    ActuatorConfig
	Recognition RecognitionConfig
	Lockout     LockoutConfig
}

type DatabaseConfig struct {
	Driver       string // "postgres" (default) or "mysql"
	URL          string // connection URL / DSN
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
	OpTimeout    time.Duration
}

type ExtractorConfig struct {
	URL     string // embedding extractor base URL (defaults to http://localhost:8000)
	Timeout time.Duration
}

type ActuatorConfig struct {
	URL     string // actuator base URL; empty disables signaling
	Timeout time.Duration
}

type RecognitionConfig struct {
	Threshold    float64       // Euclidean distance cutoff
	MinDwell     time.Duration // anti-bounce; 0 disables
	EmbeddingDim int           // face embedding dimension
}

type LockoutConfig struct {
	FailureThreshold int
	Window           time.Duration
}

// tuningDefaults mirrors the embedded defaults.yaml layout.
// Durations are kept as strings and parsed with time.ParseDuration.
type tuningDefaults struct {
	Recognition struct {
		Threshold    float64 `yaml:"threshold"`
		MinDwell     string  `yaml:"min_dwell"`
		EmbeddingDim int     `yaml:"embedding_dim"`
	} `yaml:"recognition"`
	Lockout struct {
		FailureThreshold int    `yaml:"failure_threshold"`
		Window           string `yaml:"window"`
	} `yaml:"lockout"`
}

// mustParseDuration parses a duration from the embedded defaults file.
func mustParseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic("invalid duration in embedded defaults.yaml: " + s)
	}
	return d
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envDuration reads an environment variable and parses it as a duration.
// Zero is a valid value (it disables the guard in question).
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var tuning tuningDefaults
	if err := yaml.Unmarshal(defaultsYAML, &tuning); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	return &Config{
		Database: DatabaseConfig{
			Driver:       envString("DATABASE_DRIVER", "postgres"),
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
			OpTimeout:    envDuration("DATABASE_OP_TIMEOUT", 5*time.Second),
		},
		Extractor: ExtractorConfig{
			URL:     os.Getenv("EXTRACTOR_URL"),
			Timeout: envDuration("EXTRACTOR_TIMEOUT", 15*time.Second),
		},
		Actuator: ActuatorConfig{
			URL:     os.Getenv("ACTUATOR_URL"),
			Timeout: envDuration("ACTUATOR_TIMEOUT", 2*time.Second),
		},
		Recognition: RecognitionConfig{
			Threshold:    envFloat("RECOGNITION_THRESHOLD", tuning.Recognition.Threshold),
			MinDwell:     envDuration("RECOGNITION_MIN_DWELL", mustParseDuration(tuning.Recognition.MinDwell)),
			EmbeddingDim: envInt("EMBEDDING_DIM", tuning.Recognition.EmbeddingDim),
		},
		Lockout: LockoutConfig{
			FailureThreshold: envInt("LOCKOUT_FAILURE_THRESHOLD", tuning.Lockout.FailureThreshold),
			Window:           envDuration("LOCKOUT_WINDOW", mustParseDuration(tuning.Lockout.Window)),
		},
	}
}
