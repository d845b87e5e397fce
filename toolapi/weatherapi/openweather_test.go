package weatherapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func sample(dt time.Time, temp, humidity, wind, rain float64, condition string) openWeatherSample {
	var s openWeatherSample
	s.Dt = dt.Unix()
	s.Main.Temp = temp
	s.Main.Humidity = humidity
	s.Wind.Speed = wind
	s.Rain.ThreeHours = rain
	s.Weather = []struct {
		Main string `json:"main"`
	}{{Main: condition}}
	return s
}

func TestBucketByDate(t *testing.T) {
	day1 := time.Date(2026, 8, 31, 9, 0, 0, 0, time.Local)
	day2 := time.Date(2026, 9, 1, 9, 0, 0, 0, time.Local)

	samples := []openWeatherSample{
		sample(day1, 20, 60, 3, 0, "Clear"),
		sample(day1.Add(3*time.Hour), 25, 50, 4, 0, "Clear"),
		sample(day2, 18, 70, 5, 1.2, "Rain"),
	}
	// A sample with no weather entries is dropped.
	samples = append(samples, openWeatherSample{Dt: day1.Unix()})

	buckets := bucketByDate(samples)
	if len(buckets) != 2 {
		t.Fatalf("bucket count = %d, want 2", len(buckets))
	}

	bucket := buckets["2026-08-31"]
	if bucket == nil {
		t.Fatal("missing bucket for 2026-08-31")
	}
	if len(bucket.temps) != 2 {
		t.Errorf("temps = %v, want 2 samples", bucket.temps)
	}
	// Wind is converted from m/s to km/h per sample.
	if bucket.windSpeed[0] != 3*3.6 {
		t.Errorf("wind = %v, want %v", bucket.windSpeed[0], 3*3.6)
	}
}

func TestReduceBucketClearDay(t *testing.T) {
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)
	samples := []openWeatherSample{
		sample(day.Add(9*time.Hour), 19.4, 60, 2, 0, "Clear"),
		sample(day.Add(12*time.Hour), 26.6, 50, 3, 0, "Clear"),
		sample(day.Add(15*time.Hour), 24.0, 55, 4, 0, "Clouds"),
	}

	bucket := bucketByDate(samples)["2026-08-31"]
	got := reduceBucket(bucket, day)

	if got.Temperature.High != 27 || got.Temperature.Low != 19 {
		t.Errorf("temperature = %+v, want 27/19", got.Temperature)
	}
	if got.Condition != "晴天" {
		t.Errorf("condition = %q, want 晴天", got.Condition)
	}
	if got.PrecipitationProbability != defaultPrecipProb {
		t.Errorf("precipitation = %d, want default %d with no rain", got.PrecipitationProbability, defaultPrecipProb)
	}
	if !got.SuitableForOutdoor {
		t.Error("clear day should be suitable for outdoor")
	}
}

func TestReduceBucketRainyDay(t *testing.T) {
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)
	samples := []openWeatherSample{
		sample(day.Add(9*time.Hour), 18, 85, 3, 1.5, "Rain"),
		sample(day.Add(12*time.Hour), 19, 90, 3, 2.0, "Rain"),
	}

	bucket := bucketByDate(samples)["2026-08-31"]
	got := reduceBucket(bucket, day)

	if got.Condition != "雨天" {
		t.Errorf("condition = %q, want 雨天", got.Condition)
	}
	// 3.5mm total at 20 points per mm, capped at 100.
	if got.PrecipitationProbability != 70 {
		t.Errorf("precipitation = %d, want 70", got.PrecipitationProbability)
	}
	if got.SuitableForOutdoor {
		t.Error("rainy day should not be suitable for outdoor")
	}
}

func TestReduceBucketPrecipitationCapped(t *testing.T) {
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)
	samples := []openWeatherSample{
		sample(day.Add(9*time.Hour), 18, 85, 3, 12.0, "Rain"),
	}

	bucket := bucketByDate(samples)["2026-08-31"]
	if got := reduceBucket(bucket, day); got.PrecipitationProbability != 100 {
		t.Errorf("precipitation = %d, want capped at 100", got.PrecipitationProbability)
	}
}

func TestDominantConditionTieBreak(t *testing.T) {
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)
	samples := []openWeatherSample{
		sample(day.Add(6*time.Hour), 20, 60, 3, 0, "Clouds"),
		sample(day.Add(9*time.Hour), 22, 60, 3, 0, "Clear"),
	}

	bucket := bucketByDate(samples)["2026-08-31"]
	// On a tie the condition seen first wins.
	if got := dominantCondition(bucket); got != "Clouds" {
		t.Errorf("dominantCondition = %q, want Clouds", got)
	}
}

func TestOpenWeatherFetch(t *testing.T) {
	now := time.Now()
	morning := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, time.Local)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("units") != "metric" {
			t.Errorf("units = %q, want metric", r.URL.Query().Get("units"))
		}
		if r.URL.Query().Get("cnt") != "16" {
			t.Errorf("cnt = %q, want 16 for a 2-day request", r.URL.Query().Get("cnt"))
		}

		json.NewEncoder(w).Encode(openWeatherResponse{List: []openWeatherSample{
			sample(morning, 21, 60, 3, 0, "Clear"),
			sample(morning.Add(3*time.Hour), 24, 55, 4, 0, "Clear"),
		}})
	}))
	defer server.Close()

	source := newOpenWeatherSource("test-key")
	source.baseURL = server.URL

	forecast, err := source.Fetch(context.Background(), 31.23, 121.47, 2)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(forecast) != 2 {
		t.Fatalf("forecast length = %d, want 2", len(forecast))
	}
	if forecast[0].Condition != "晴天" {
		t.Errorf("day 0 condition = %q, want 晴天", forecast[0].Condition)
	}
	// No samples landed on day two, so it is filled with defaults.
	if forecast[1].Condition != "多云" {
		t.Errorf("day 1 condition = %q, want default 多云", forecast[1].Condition)
	}
}
