package weatherapi

import "testing"

func TestNormalizeConditionExactMatches(t *testing.T) {
	cases := []struct {
		raw    string
		source conditionSource
		want   string
	}{
		{"Clear", sourceOpenWeather, "晴天"},
		{"Clouds", sourceOpenWeather, "多云"},
		{"Rain", sourceOpenWeather, "雨天"},
		{"Drizzle", sourceOpenWeather, "小雨"},
		{"Thunderstorm", sourceOpenWeather, "雷雨"},
		{"Snow", sourceOpenWeather, "雪天"},
		{"Mist", sourceOpenWeather, "雾"},
		{"sunny", sourceGoogle, "晴天"},
		{"Partly Cloudy", sourceGoogle, "多云"},
		{"overcast", sourceGoogle, "阴天"},
		{"showers", sourceGoogle, "阵雨"},
	}

	for _, c := range cases {
		got, icon := normalizeCondition(c.raw, c.source)
		if got != c.want {
			t.Errorf("normalizeCondition(%q) = %q, want %q", c.raw, got, c.want)
		}
		if icon == "" {
			t.Errorf("normalizeCondition(%q) returned empty icon", c.raw)
		}
	}
}

func TestNormalizeConditionIdempotent(t *testing.T) {
	for label := range normalizedLabels {
		got, icon := normalizeCondition(label, sourceGoogle)
		if got != label {
			t.Errorf("normalizeCondition(%q) = %q, want unchanged", label, got)
		}
		if icon != conditionIcon(label) {
			t.Errorf("icon for %q = %q, want %q", label, icon, conditionIcon(label))
		}
	}
}

func TestNormalizeConditionEmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t"} {
		got, icon := normalizeCondition(raw, sourceGoogle)
		if got != "多云" {
			t.Errorf("normalizeCondition(%q) = %q, want 多云", raw, got)
		}
		if icon != conditionIcons["多云"] {
			t.Errorf("icon for %q = %q, want %q", raw, icon, conditionIcons["多云"])
		}
	}
	if got, _ := normalizeCondition("", sourceOpenWeather); got != "多云" {
		t.Errorf("normalizeCondition(empty, openweather) = %q, want 多云", got)
	}
}

func TestConditionIconsForRareLabels(t *testing.T) {
	// 阴天 and 阵雨 are valid normalized labels but carry the generic icon.
	for _, label := range []string{"阴天", "阵雨"} {
		if !normalizedLabels[label] {
			t.Errorf("%q missing from the normalized vocabulary", label)
		}
		if got := conditionIcon(label); got != fallbackIcon {
			t.Errorf("conditionIcon(%q) = %q, want %q", label, got, fallbackIcon)
		}
	}
}

func TestNormalizeConditionSubstring(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"light rain showers expected", "雨天"},
		{"mostly clear skies", "晴天"},
		{"heavy snowfall", "雪天"},
	}

	for _, c := range cases {
		if got, _ := normalizeCondition(c.raw, sourceGoogle); got != c.want {
			t.Errorf("normalizeCondition(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestNormalizeConditionUnknownFallsBack(t *testing.T) {
	got, icon := normalizeCondition("sandstorm", sourceGoogle)
	if got != "多云" {
		t.Errorf("normalizeCondition(sandstorm) = %q, want 多云", got)
	}
	if icon != conditionIcons["多云"] {
		t.Errorf("fallback icon = %q, want %q", icon, conditionIcons["多云"])
	}
}

func TestConditionIconUnknownLabel(t *testing.T) {
	if got := conditionIcon("沙尘暴"); got != fallbackIcon {
		t.Errorf("conditionIcon(沙尘暴) = %q, want %q", got, fallbackIcon)
	}
}
