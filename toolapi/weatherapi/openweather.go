package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"trainplandev/httpmiddleware"
)

const openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// openWeatherSource is the secondary tier: the OpenWeatherMap 3-hourly
// forecast endpoint. Samples are bucketed by calendar date and reduced to one
// entry per day.
type openWeatherSource struct {
	apiKey  string
	baseURL string
}

func newOpenWeatherSource(apiKey string) *openWeatherSource {
	return &openWeatherSource{apiKey: apiKey, baseURL: openWeatherBaseURL}
}

func (o *openWeatherSource) Name() string { return "openweathermap" }

type openWeatherResponse struct {
	List []openWeatherSample `json:"list"`
}

type openWeatherSample struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		ThreeHours float64 `json:"3h"`
	} `json:"rain"`
	Snow struct {
		ThreeHours float64 `json:"3h"`
	} `json:"snow"`
}

// dayBucket accumulates the 3-hourly samples belonging to one calendar date.
type dayBucket struct {
	temps          []float64
	humidity       []float64
	windSpeed      []float64
	precipitation  []float64
	conditionCount map[string]int
	conditionOrder []string
}

func (o *openWeatherSource) Fetch(ctx context.Context, latitude, longitude float64, days int) ([]ForecastDay, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("appid", o.apiKey)
	params.Set("units", "metric")
	params.Set("lang", "zh_cn")
	// Eight 3-hour slices cover one day.
	params.Set("cnt", strconv.Itoa(days*8))

	body, err := httpmiddleware.HttpRequest(httpmiddleware.HttpRequestStruct{
		Method: "GET",
		Url:    o.baseURL + "/forecast?" + params.Encode(),
	})
	if err != nil {
		return nil, fmt.Errorf("3-hourly forecast request failed: %w", err)
	}

	var data openWeatherResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("could not parse 3-hourly forecast response: %w", err)
	}

	buckets := bucketByDate(data.List)

	today := time.Now()
	forecast := make([]ForecastDay, 0, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i)
		bucket, ok := buckets[date.Format("2006-01-02")]
		if !ok {
			forecast = append(forecast, defaultDay(date))
			continue
		}
		forecast = append(forecast, reduceBucket(bucket, date))
	}

	return forecast, nil
}

func bucketByDate(samples []openWeatherSample) map[string]*dayBucket {
	buckets := make(map[string]*dayBucket)

	for _, sample := range samples {
		if len(sample.Weather) == 0 {
			continue
		}

		key := time.Unix(sample.Dt, 0).Format("2006-01-02")
		bucket, ok := buckets[key]
		if !ok {
			bucket = &dayBucket{conditionCount: make(map[string]int)}
			buckets[key] = bucket
		}

		bucket.temps = append(bucket.temps, sample.Main.Temp)
		bucket.humidity = append(bucket.humidity, sample.Main.Humidity)
		bucket.windSpeed = append(bucket.windSpeed, sample.Wind.Speed*3.6)
		bucket.precipitation = append(bucket.precipitation, sample.Rain.ThreeHours+sample.Snow.ThreeHours)

		condition := sample.Weather[0].Main
		if bucket.conditionCount[condition] == 0 {
			bucket.conditionOrder = append(bucket.conditionOrder, condition)
		}
		bucket.conditionCount[condition]++
	}

	return buckets
}

func reduceBucket(bucket *dayBucket, date time.Time) ForecastDay {
	high := bucket.temps[0]
	low := bucket.temps[0]
	for _, t := range bucket.temps[1:] {
		high = math.Max(high, t)
		low = math.Min(low, t)
	}

	totalPrecip := 0.0
	for _, p := range bucket.precipitation {
		totalPrecip += p
	}

	mainCondition := dominantCondition(bucket)
	condition, icon := normalizeCondition(mainCondition, sourceOpenWeather)

	// Heuristic carried over from the original tool; kept as-is for
	// behavioral compatibility.
	precipProb := defaultPrecipProb
	if totalPrecip > 0 {
		precipProb = int(math.Min(math.Round(totalPrecip*20), 100))
	}

	suitable := (mainCondition == "Clear" || mainCondition == "Clouds") && totalPrecip < 1

	return ForecastDay{
		Date:                     date.Format("2006-01-02"),
		DayOfWeek:                dayOfWeekLabel(date),
		Condition:                condition,
		ConditionIcon:            icon,
		Temperature:              Temperature{High: int(math.Round(high)), Low: int(math.Round(low))},
		Humidity:                 int(math.Round(mean(bucket.humidity))),
		WindSpeed:                int(math.Round(mean(bucket.windSpeed))),
		PrecipitationProbability: precipProb,
		SuitableForOutdoor:       suitable,
	}
}

// dominantCondition picks the most frequent per-sample condition; on a tie
// the condition seen earliest in the day wins.
func dominantCondition(bucket *dayBucket) string {
	best := ""
	bestCount := 0
	for _, condition := range bucket.conditionOrder {
		if count := bucket.conditionCount[condition]; count > bestCount {
			best = condition
			bestCount = count
		}
	}
	return best
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
