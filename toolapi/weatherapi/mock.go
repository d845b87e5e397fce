package weatherapi

import (
	"context"
	"strings"
	"time"
)

// mockConditions is the fixed cycle the synthetic tier walks through.
var mockConditions = [7]string{"晴天", "多云", "晴天", "小雨", "多云", "晴天", "多云"}

const mockBaseTemp = 20

// mockSource is the terminal tier: deterministic synthetic data so a forecast
// is always available even with no provider configured.
type mockSource struct{}

func (mockSource) Name() string { return "mock" }

func (mockSource) Fetch(ctx context.Context, latitude, longitude float64, days int) ([]ForecastDay, error) {
	return mockForecast(time.Now(), days), nil
}

// mockForecast derives every field from the day index alone; apart from the
// dates, two calls with the same day count are identical.
func mockForecast(start time.Time, days int) []ForecastDay {
	forecast := make([]ForecastDay, 0, days)

	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		condition := mockConditions[i%len(mockConditions)]
		tempVariation := (i % 3) * 2

		precipProb := defaultPrecipProb
		if strings.Contains(condition, "雨") {
			precipProb = 70
		}

		forecast = append(forecast, ForecastDay{
			Date:                     date.Format("2006-01-02"),
			DayOfWeek:                dayOfWeekLabel(date),
			Condition:                condition,
			ConditionIcon:            conditionIcon(condition),
			Temperature:              Temperature{High: mockBaseTemp + tempVariation + 5, Low: mockBaseTemp + tempVariation},
			Humidity:                 60 + (i%3)*5,
			WindSpeed:                8 + (i%3)*2,
			PrecipitationProbability: precipProb,
			SuitableForOutdoor:       !strings.Contains(condition, "雨"),
		})
	}

	return forecast
}
