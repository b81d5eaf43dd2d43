package weather

import "strings"

// Classification thresholds. Fixed constants, not configuration.
const (
	chillyMax = 10.0
	coolMax   = 20.0
	mildMax   = 27.0

	lightMin = 1.0
	heavyMin = 10.0
)

// Sky-descriptor marker phrases checked by ClassifyWeather.
const (
	markerClear = "clear"
	markerSnow  = "snow"
)

// ClassifyTemperature maps a temperature in Celsius to its category.
// Boundaries are inclusive on the lower category: 10 is still CHILLY.
func ClassifyTemperature(temp float64) TempCategory {
	switch {
	case temp <= chillyMax:
		return TempChilly
	case temp <= coolMax:
		return TempCool
	case temp <= mildMax:
		return TempMild
	default:
		return TempHot
	}
}

// ClassifyPrecipitation maps a precipitation amount in mm to its category.
func ClassifyPrecipitation(amount float64) PrecipCategory {
	switch {
	case amount >= heavyMin:
		return PrecipHeavy
	case amount >= lightMin:
		return PrecipLight
	default:
		return PrecipNone
	}
}

// ClassifyWeather maps a free-text sky descriptor to a weather type.
// The clear marker is checked before the snow marker; anything else is CLOUDY.
func ClassifyWeather(sky string) WeatherType {
	s := strings.ToLower(sky)
	switch {
	case strings.Contains(s, markerClear):
		return WeatherClear
	case strings.Contains(s, markerSnow):
		return WeatherSnow
	default:
		return WeatherCloudy
	}
}

// Classify runs all three classifiers over one observation's values.
func Classify(temp, precipAmount float64, sky string) CategoryTriple {
	return CategoryTriple{
		Weather: ClassifyWeather(sky),
		Temp:    ClassifyTemperature(temp),
		Precip:  ClassifyPrecipitation(precipAmount),
	}
}
