package weatherapi

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"trainplandev/logger"
)

const (
	maxForecastDays = 7

	defaultHighTemp   = 22
	defaultLowTemp    = 15
	defaultHumidity   = 60
	defaultWindSpeed  = 10
	defaultPrecipProb = 20
)

// Temperature carries the daily high and low in Celsius.
type Temperature struct {
	High int `json:"high"`
	Low  int `json:"low"`
}

// ForecastDay is one fully-populated day of forecast. Whatever provider tier
// produced it, the condition label always comes from the normalized vocabulary.
type ForecastDay struct {
	Date                     string      `json:"date"`
	DayOfWeek                string      `json:"day_of_week"`
	Condition                string      `json:"condition"`
	ConditionIcon            string      `json:"condition_icon"`
	Temperature              Temperature `json:"temperature"`
	Humidity                 int         `json:"humidity"`
	WindSpeed                int         `json:"wind_speed"`
	PrecipitationProbability int         `json:"precipitation_probability"`
	SuitableForOutdoor       bool        `json:"suitable_for_outdoor"`
}

// ForecastResponse is the tool contract consumed by the agent. Status is
// always "success": the resolver degrades through its tiers instead of
// failing, so a planning run never stalls on a forecast problem.
type ForecastResponse struct {
	Status   string        `json:"status"`
	Forecast []ForecastDay `json:"forecast"`
}

// forecastSource is one provider tier. A tier either returns exactly the
// requested number of days or an error; errors select the next tier.
type forecastSource interface {
	Name() string
	Fetch(ctx context.Context, latitude, longitude float64, days int) ([]ForecastDay, error)
}

type WeatherConnectProps struct {
	Logger *logger.LogMiddleware

	// Google Maps Platform key for the primary Weather API tier. Empty skips
	// the tier.
	MapsAPIKey string

	// OpenWeatherMap key for the secondary tier. Empty skips the tier.
	OpenWeatherAPIKey string
}

// Weather resolves forecasts through an ordered provider chain: Google
// Weather API, then OpenWeatherMap, then deterministic synthetic data. The
// synthetic tier cannot fail, so neither can Forecast.
type Weather struct {
	logger  *logger.LogMiddleware
	sources []forecastSource
}

func Connect(ctx context.Context, args WeatherConnectProps) *Weather {
	tracer := otel.Tracer("weatherapi/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	sources := make([]forecastSource, 0, 3)
	if args.MapsAPIKey != "" {
		sources = append(sources, newGoogleSource(args.MapsAPIKey))
	}
	if args.OpenWeatherAPIKey != "" {
		sources = append(sources, newOpenWeatherSource(args.OpenWeatherAPIKey))
	}
	sources = append(sources, mockSource{})

	span.SetAttributes(attribute.Int("sources", len(sources)))
	args.Logger.Logger(ctx).Info("[WeatherAPI] Forecast resolver ready",
		zap.Int("tiers", len(sources)),
		zap.Bool("google_tier", args.MapsAPIKey != ""),
		zap.Bool("openweather_tier", args.OpenWeatherAPIKey != ""),
	)

	return &Weather{logger: args.Logger, sources: sources}
}

// Forecast returns a forecast of exactly clamp(days, 1, 7) entries starting
// today. It never returns an error: every provider failure is logged and the
// chain advances, ending at the synthetic tier.
func (w *Weather) Forecast(ctx context.Context, latitude, longitude float64, days int) ForecastResponse {
	tracer := otel.Tracer("weatherapi/Forecast")
	ctx, span := tracer.Start(ctx, "Forecast")
	defer span.End()

	days = clampDays(days)
	span.SetAttributes(
		attribute.Float64("latitude", latitude),
		attribute.Float64("longitude", longitude),
		attribute.Int("days", days),
	)

	for _, source := range w.sources {
		forecast, err := source.Fetch(ctx, latitude, longitude, days)
		if err != nil {
			span.RecordError(err)
			w.logger.Logger(ctx).Warn("[WeatherAPI] Forecast tier failed, falling through",
				zap.String("source", source.Name()),
				zap.Error(err),
			)
			continue
		}

		w.logger.Logger(ctx).Info("[WeatherAPI] Forecast resolved",
			zap.String("source", source.Name()),
			zap.Int("days", len(forecast)),
		)
		return ForecastResponse{Status: "success", Forecast: forecast}
	}

	// Unreachable while the mock tier terminates the chain, but a usable
	// forecast must come back even if the chain is ever misassembled.
	return ForecastResponse{Status: "success", Forecast: mockForecast(time.Now(), days)}
}

func clampDays(days int) int {
	if days < 1 {
		return 1
	}
	if days > maxForecastDays {
		return maxForecastDays
	}
	return days
}

var weekdayLabels = [7]string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

// dayOfWeekLabel maps a date to its Chinese weekday label, Monday first.
func dayOfWeekLabel(t time.Time) string {
	return weekdayLabels[(int(t.Weekday())+6)%7]
}

// defaultDay fills a date for which no provider data exists.
func defaultDay(date time.Time) ForecastDay {
	condition := "多云"
	return ForecastDay{
		Date:                     date.Format("2006-01-02"),
		DayOfWeek:                dayOfWeekLabel(date),
		Condition:                condition,
		ConditionIcon:            conditionIcon(condition),
		Temperature:              Temperature{High: defaultHighTemp, Low: defaultLowTemp},
		Humidity:                 defaultHumidity,
		WindSpeed:                defaultWindSpeed,
		PrecipitationProbability: defaultPrecipProb,
		SuitableForOutdoor:       true,
	}
}
