package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the service reads from the environment. API keys
// are optional; a missing key switches the affected component to its
// scrape-only variant.
type Config struct {
	AppPort int

	SerpAPIKey        string
	PexelsAPIKey      string
	UnsplashAccessKey string
	FlickrAPIKey      string

	// SourcesPath optionally points at a YAML file appending custom
	// sources to the built-in registry.
	SourcesPath string

	DomainDelay  time.Duration
	FetchTimeout time.Duration
}

// Load reads the environment, after loading .env when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}
	domainDelayMS, err := getEnvInt("DOMAIN_DELAY_MS", 500)
	if err != nil {
		return nil, err
	}
	fetchTimeoutSec, err := getEnvInt("FETCH_TIMEOUT", 15)
	if err != nil {
		return nil, err
	}

	return &Config{
		AppPort:           appPort,
		SerpAPIKey:        os.Getenv("SERPAPI_KEY"),
		PexelsAPIKey:      os.Getenv("PEXELS_API_KEY"),
		UnsplashAccessKey: os.Getenv("UNSPLASH_ACCESS_KEY"),
		FlickrAPIKey:      os.Getenv("FLICKR_API_KEY"),
		SourcesPath:       os.Getenv("SOURCES_PATH"),
		DomainDelay:       time.Duration(domainDelayMS) * time.Millisecond,
		FetchTimeout:      time.Duration(fetchTimeoutSec) * time.Second,
	}, nil
}

func getEnvInt(key string, def int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return def, nil
	}
	return strconv.Atoi(value)
}
