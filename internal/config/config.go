// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	API      APIConfig
	Checkout CheckoutConfig
	Server   ServerConfig
	Logging  LoggingConfig
	CORS     CORSConfig
	StateDir string
}

// APIConfig holds settings for the remote course/user/payment API and
// the streaming origin
type APIConfig struct {
	BaseURL      string
	StreamingURL string
	Timeout      time.Duration
}

// CheckoutConfig holds settings for the third-party checkout widget
type CheckoutConfig struct {
	KeyID        string
	MerchantName string
	MerchantLogo string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Remote API configuration
	apiBaseURL := os.Getenv("API_BASE_URL")
	if apiBaseURL == "" {
		apiBaseURL = "https://api.wencuts.com"
	}
	cfg.API.BaseURL = strings.TrimRight(apiBaseURL, "/")

	streamingURL := os.Getenv("STREAMING_BASE_URL")
	if streamingURL == "" {
		streamingURL = "https://hls-video-streaming.wencuts.com"
	}
	cfg.API.StreamingURL = strings.TrimRight(streamingURL, "/")

	// HTTP client timeout (default: the upstream client's 10 seconds)
	timeoutStr := os.Getenv("HTTP_TIMEOUT")
	if timeoutStr == "" {
		timeoutStr = "10s"
	}
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.API.Timeout = timeout

	// Checkout widget configuration
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	if keyID == "" {
		return nil, fmt.Errorf("RAZORPAY_KEY_ID is required")
	}
	cfg.Checkout.KeyID = keyID

	merchantName := os.Getenv("CHECKOUT_MERCHANT_NAME")
	if merchantName == "" {
		merchantName = "Wencut's Master Class"
	}
	cfg.Checkout.MerchantName = merchantName

	merchantLogo := os.Getenv("CHECKOUT_MERCHANT_LOGO")
	if merchantLogo == "" {
		merchantLogo = cfg.API.BaseURL + "/media/wencuts-logo.png"
	}
	cfg.Checkout.MerchantLogo = merchantLogo

	// Local state directory
	stateDir := os.Getenv("STATE_DIR")
	if stateDir == "" {
		stateDir = "./data"
	}
	cfg.StateDir = stateDir

	// Server configuration
	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080" // default port
	}
	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if corsOrigins == "" {
		// Default to allow all origins if not specified (for development)
		cfg.CORS.AllowedOrigins = []string{"*"}
	} else {
		// Parse comma-separated origins
		origins := strings.Split(corsOrigins, ",")
		cfg.CORS.AllowedOrigins = make([]string, 0, len(origins))
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, origin)
			}
		}
		// If no valid origins found, default to allow all
		if len(cfg.CORS.AllowedOrigins) == 0 {
			cfg.CORS.AllowedOrigins = []string{"*"}
		}
	}

	return cfg, nil
}
