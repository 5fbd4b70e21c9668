package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by SENTINEL_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("SENTINEL_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// DataDir is where the transaction store lives.
func DataDir() string {
	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		return "data"
	}
	return dir
}

// StoreCapacity bounds the transaction log; the oldest records rotate out.
// Defaults to 1000.
func StoreCapacity() int {
	n, err := strconv.Atoi(os.Getenv("STORE_CAPACITY"))
	if err != nil || n <= 0 {
		return 1000
	}
	return n
}

// LLMProvider returns the configured rationale provider.
// Valid values: openai, anthropic, mock, none. Defaults to "none": the
// tribunal is fully rule-based and needs no model to function.
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "none"
	}
	return p
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "mock", "none":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// ParticipantTimeout bounds each participant's decision call.
// Defaults to 20s.
func ParticipantTimeout() time.Duration {
	secs, err := strconv.Atoi(os.Getenv("PARTICIPANT_TIMEOUT_SECONDS"))
	if err != nil || secs <= 0 {
		return 20 * time.Second
	}
	return time.Duration(secs) * time.Second
}

// ConsensusThreshold is the minimum consensus score (0-100) for a terminal
// verdict. Defaults to 60.
func ConsensusThreshold() float64 {
	v, err := strconv.ParseFloat(os.Getenv("CONSENSUS_THRESHOLD"), 64)
	if err != nil || v <= 0 || v > 100 {
		return 60
	}
	return v
}

// MinConfidenceThreshold is the minimum per-participant confidence for a
// terminal verdict. Defaults to 40.
func MinConfidenceThreshold() float64 {
	v, err := strconv.ParseFloat(os.Getenv("MIN_CONFIDENCE_THRESHOLD"), 64)
	if err != nil || v <= 0 || v > 100 {
		return 40
	}
	return v
}

// ConcessionConfidence is the confidence the Advocate adopts when the evidence
// forces a concession. Defaults to 85.
func ConcessionConfidence() float64 {
	v, err := strconv.ParseFloat(os.Getenv("CONCESSION_CONFIDENCE"), 64)
	if err != nil || v <= 0 || v > 100 {
		return 85
	}
	return v
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
