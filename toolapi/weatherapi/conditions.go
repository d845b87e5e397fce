package weatherapi

import "strings"

// conditionSource tags which provider vocabulary a raw condition string came
// from, so the matching order can try that provider's table first.
type conditionSource int

const (
	sourceGoogle conditionSource = iota
	sourceOpenWeather
)

type conditionEntry struct {
	key   string
	label string
}

// openWeatherConditions covers the values OpenWeatherMap puts in
// weather[].main. Declaration order is fixed: it is the tie-break for
// substring matches.
var openWeatherConditions = []conditionEntry{
	{"clear", "晴天"},
	{"clouds", "多云"},
	{"rain", "雨天"},
	{"drizzle", "小雨"},
	{"thunderstorm", "雷雨"},
	{"snow", "雪天"},
	{"mist", "雾"},
	{"fog", "雾"},
	{"haze", "雾"},
}

// generalConditions covers free-form condition text from other providers.
var generalConditions = []conditionEntry{
	{"clear", "晴天"},
	{"sunny", "晴天"},
	{"partly cloudy", "多云"},
	{"cloudy", "多云"},
	{"overcast", "阴天"},
	{"rain", "雨天"},
	{"rainy", "雨天"},
	{"drizzle", "小雨"},
	{"showers", "阵雨"},
	{"thunderstorm", "雷雨"},
	{"snow", "雪天"},
	{"snowy", "雪天"},
	{"mist", "雾"},
	{"fog", "雾"},
	{"foggy", "雾"},
}

// conditionIcons covers the common labels; 阴天 and 阵雨 deliberately get the
// generic fallback icon instead.
var conditionIcons = map[string]string{
	"晴天": "☀️",
	"多云": "⛅",
	"雨天": "🌧️",
	"小雨": "🌦️",
	"雷雨": "⛈️",
	"雪天": "❄️",
	"雾":  "🌫️",
}

// normalizedLabels is the closed output vocabulary, derived from the two
// condition tables.
var normalizedLabels = func() map[string]bool {
	labels := make(map[string]bool)
	for _, entry := range openWeatherConditions {
		labels[entry.label] = true
	}
	for _, entry := range generalConditions {
		labels[entry.label] = true
	}
	return labels
}()

const (
	fallbackCondition = "多云"
	fallbackIcon      = "🌤️"
)

// normalizeCondition maps a raw provider condition string into the fixed
// vocabulary and returns the label with its icon. Matching order: already
// normalized, exact match in the source's table, exact match in the general
// table, substring either direction over both tables, else 多云.
func normalizeCondition(raw string, source conditionSource) (string, string) {
	if normalizedLabels[raw] {
		return raw, conditionIcon(raw)
	}

	lowered := strings.ToLower(strings.TrimSpace(raw))
	// An empty string substring-matches every table key; it means the
	// provider sent no condition at all.
	if lowered == "" {
		return fallbackCondition, conditionIcon(fallbackCondition)
	}

	sourceTable := generalConditions
	if source == sourceOpenWeather {
		sourceTable = openWeatherConditions
	}

	for _, entry := range sourceTable {
		if entry.key == lowered {
			return entry.label, conditionIcon(entry.label)
		}
	}
	for _, entry := range generalConditions {
		if entry.key == lowered {
			return entry.label, conditionIcon(entry.label)
		}
	}

	for _, entry := range append(append([]conditionEntry{}, openWeatherConditions...), generalConditions...) {
		if strings.Contains(lowered, entry.key) || strings.Contains(entry.key, lowered) {
			return entry.label, conditionIcon(entry.label)
		}
	}

	return fallbackCondition, conditionIcon(fallbackCondition)
}

// conditionIcon returns the icon for a normalized label. The default should
// not occur for labels produced by normalizeCondition, but a missing icon must
// not take a forecast down.
func conditionIcon(label string) string {
	if icon, ok := conditionIcons[label]; ok {
		return icon
	}
	return fallbackIcon
}
