package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trainplandev/httpmiddleware"
)

const googleWeatherBaseURL = "https://weather.googleapis.com/v1"

// errLocationNotSupported marks the expected 404 the Google Weather API
// returns for coordinates it has no coverage for. It advances the chain like
// any other failure; it exists so the log line can tell the two apart.
var errLocationNotSupported = errors.New("location not supported by Google Weather API")

// googleSource is the primary tier: the Google Weather API daily forecast
// endpoint on the Maps Platform.
type googleSource struct {
	apiKey  string
	baseURL string
}

func newGoogleSource(apiKey string) *googleSource {
	return &googleSource{apiKey: apiKey, baseURL: googleWeatherBaseURL}
}

func (g *googleSource) Name() string { return "google" }

type googleDay struct {
	Temperature *googleTemperature `json:"temperature"`
	Temp        *googleTemperature `json:"temp"`
	Condition   json.RawMessage    `json:"condition"`
	Weather     json.RawMessage    `json:"weather"`
	Humidity    *float64           `json:"humidity"`
	RelHumidity *float64           `json:"relativeHumidity"`
	WindSpeed   *float64           `json:"windSpeed"`
	Wind        struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	PrecipProb *float64 `json:"precipitationProbability"`
	Pop        *float64 `json:"pop"`
}

type googleTemperature struct {
	High *float64 `json:"high"`
	Max  *float64 `json:"max"`
	Low  *float64 `json:"low"`
	Min  *float64 `json:"min"`
}

type googleForecastResponse struct {
	DailyForecast struct {
		Days []googleDay `json:"days"`
	} `json:"dailyForecast"`
	Forecast struct {
		Daily []googleDay `json:"daily"`
	} `json:"forecast"`
}

func (g *googleSource) Fetch(ctx context.Context, latitude, longitude float64, days int) ([]ForecastDay, error) {
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("location.latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("location.longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("days", strconv.Itoa(days))

	body, err := httpmiddleware.HttpRequest(httpmiddleware.HttpRequestStruct{
		Method: "GET",
		Url:    g.baseURL + "/forecast/days:lookup?" + params.Encode(),
	})
	if err != nil {
		var statusErr *httpmiddleware.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == 404 {
			msg := strings.ToLower(googleErrorMessage(body))
			if strings.Contains(msg, "not supported for this location") ||
				strings.Contains(msg, "try a different location") {
				return nil, fmt.Errorf("%w: %s", errLocationNotSupported, msg)
			}
		}
		return nil, fmt.Errorf("daily forecast request failed: %w", err)
	}

	var data googleForecastResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("could not parse daily forecast response: %w", err)
	}

	providerDays := data.DailyForecast.Days
	if len(providerDays) == 0 {
		providerDays = data.Forecast.Daily
	}

	today := time.Now()
	forecast := make([]ForecastDay, 0, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i)
		if i >= len(providerDays) {
			forecast = append(forecast, defaultDay(date))
			continue
		}
		forecast = append(forecast, normalizeGoogleDay(providerDays[i], date))
	}

	return forecast, nil
}

func normalizeGoogleDay(day googleDay, date time.Time) ForecastDay {
	temp := day.Temperature
	if temp == nil {
		temp = day.Temp
	}

	high := float64(defaultHighTemp)
	low := float64(defaultLowTemp)
	if temp != nil {
		high = firstValue(defaultHighTemp, temp.High, temp.Max)
		low = firstValue(defaultLowTemp, temp.Low, temp.Min)
	}

	rawCondition := conditionText(day.Condition)
	if rawCondition == "" {
		rawCondition = conditionText(day.Weather)
	}
	condition, icon := normalizeCondition(rawCondition, sourceGoogle)

	humidity := firstValue(defaultHumidity, day.Humidity, day.RelHumidity)
	windSpeed := firstValue(defaultWindSpeed, day.WindSpeed, day.Wind.Speed)
	// Values this high can only be m/s misreported by the provider.
	if windSpeed > 50 {
		windSpeed *= 3.6
	}
	precipProb := firstValue(defaultPrecipProb, day.PrecipProb, day.Pop)

	suitable := !strings.Contains(condition, "雨") &&
		!strings.Contains(condition, "雪") &&
		precipProb < 50

	return ForecastDay{
		Date:                     date.Format("2006-01-02"),
		DayOfWeek:                dayOfWeekLabel(date),
		Condition:                condition,
		ConditionIcon:            icon,
		Temperature:              Temperature{High: int(math.Round(high)), Low: int(math.Round(low))},
		Humidity:                 int(math.Round(humidity)),
		WindSpeed:                int(math.Round(windSpeed)),
		PrecipitationProbability: int(math.Round(precipProb)),
		SuitableForOutdoor:       suitable,
	}
}

// conditionText accepts the two shapes the API has been seen to return: a
// plain string or an object with a text/main field.
func conditionText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		Text string `json:"text"`
		Main string `json:"main"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Text != "" {
			return obj.Text
		}
		return obj.Main
	}

	return ""
}

func firstValue(fallback float64, candidates ...*float64) float64 {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return fallback
}

// googleErrorMessage pulls the message out of a Google API error body,
// falling back to the raw body.
func googleErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return string(body)
}
