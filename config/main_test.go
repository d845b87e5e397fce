package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PRODUCTION", "")
	t.Setenv("GOOGLE_MAPS_API_KEY", "")
	t.Setenv("MAPS_API_KEY", "")
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("WEATHER_API_KEY", "")
	t.Setenv("GEMINI_SECRET_KEY", "")

	cfg := Load()
	if cfg.Port != defaultPort {
		t.Errorf("port = %q, want %q", cfg.Port, defaultPort)
	}
	if cfg.Production {
		t.Error("production should default to false")
	}
	if cfg.MapsAPIKey != "" || cfg.OpenWeatherAPIKey != "" || cfg.GeminiAPIKey != "" {
		t.Error("keys should default to empty")
	}
}

func TestLoadKeyAliases(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "")
	t.Setenv("MAPS_API_KEY", "alias-maps")
	t.Setenv("OPENWEATHER_API_KEY", "primary-weather")
	t.Setenv("WEATHER_API_KEY", "alias-weather")

	cfg := Load()
	if cfg.MapsAPIKey != "alias-maps" {
		t.Errorf("maps key = %q, want the alias value", cfg.MapsAPIKey)
	}
	// The primary name wins over the alias.
	if cfg.OpenWeatherAPIKey != "primary-weather" {
		t.Errorf("weather key = %q, want primary-weather", cfg.OpenWeatherAPIKey)
	}
}

func TestLoadProductionFlag(t *testing.T) {
	t.Setenv("PRODUCTION", "1")
	t.Setenv("PORT", "9000")

	cfg := Load()
	if !cfg.Production {
		t.Error("production should be true when PRODUCTION is set")
	}
	if cfg.Port != "9000" {
		t.Errorf("port = %q, want 9000", cfg.Port)
	}
}
