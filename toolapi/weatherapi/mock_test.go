package weatherapi

import (
	"testing"
	"time"
)

func TestMockForecastThreeDays(t *testing.T) {
	start := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	forecast := mockForecast(start, 3)

	if len(forecast) != 3 {
		t.Fatalf("forecast length = %d, want 3", len(forecast))
	}

	wantConditions := []string{"晴天", "多云", "晴天"}
	wantHighs := []int{25, 27, 29}
	wantLows := []int{20, 22, 24}

	for i, day := range forecast {
		if day.Condition != wantConditions[i] {
			t.Errorf("day %d condition = %q, want %q", i, day.Condition, wantConditions[i])
		}
		if day.Temperature.High != wantHighs[i] {
			t.Errorf("day %d high = %d, want %d", i, day.Temperature.High, wantHighs[i])
		}
		if day.Temperature.Low != wantLows[i] {
			t.Errorf("day %d low = %d, want %d", i, day.Temperature.Low, wantLows[i])
		}
		if !day.SuitableForOutdoor {
			t.Errorf("day %d should be suitable for outdoor", i)
		}
	}
}

func TestMockForecastRainDay(t *testing.T) {
	start := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	forecast := mockForecast(start, 7)

	// Index 3 in the condition cycle is 小雨.
	rainDay := forecast[3]
	if rainDay.Condition != "小雨" {
		t.Fatalf("day 3 condition = %q, want 小雨", rainDay.Condition)
	}
	if rainDay.PrecipitationProbability != 70 {
		t.Errorf("rain day precipitation = %d, want 70", rainDay.PrecipitationProbability)
	}
	if rainDay.SuitableForOutdoor {
		t.Error("rain day should not be suitable for outdoor")
	}
}

func TestMockForecastDeterministic(t *testing.T) {
	start := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	a := mockForecast(start, 7)
	b := mockForecast(start, 7)

	for i := range a {
		if a[i] != b[i] {
			t.Errorf("day %d differs between identical calls: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestMockForecastDatesAndIcons(t *testing.T) {
	start := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	forecast := mockForecast(start, 2)

	if forecast[0].Date != "2026-08-31" || forecast[1].Date != "2026-09-01" {
		t.Errorf("dates = %q, %q; want consecutive days from start", forecast[0].Date, forecast[1].Date)
	}
	if forecast[0].DayOfWeek != "周一" {
		t.Errorf("day of week = %q, want 周一", forecast[0].DayOfWeek)
	}
	if forecast[0].ConditionIcon != "☀️" {
		t.Errorf("icon = %q, want ☀️", forecast[0].ConditionIcon)
	}
}
