package config

import (
	"os"
)

const defaultPort = "8080"

// Config holds every credential and knob the service reads from the
// environment. It is populated once at startup and passed explicitly to each
// component instead of having os.Getenv calls scattered through the logic.
type Config struct {
	Port       string
	Production bool

	// Google Maps Platform key, shared by the Weather API tier, the Places
	// nearby search and reverse geocoding.
	MapsAPIKey string

	// OpenWeatherMap key for the secondary forecast tier.
	OpenWeatherAPIKey string

	// Gemini key for the dialogue agent.
	GeminiAPIKey string
}

// Load reads the configuration from the environment. Missing provider keys are
// not errors: an absent weather key selects the next fallback tier and an
// absent maps key makes venue search return an explicit error result.
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	return &Config{
		Port:              port,
		Production:        os.Getenv("PRODUCTION") != "",
		MapsAPIKey:        firstEnv("GOOGLE_MAPS_API_KEY", "MAPS_API_KEY"),
		OpenWeatherAPIKey: firstEnv("OPENWEATHER_API_KEY", "WEATHER_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_SECRET_KEY"),
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
