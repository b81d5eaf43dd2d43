package weather

import "fmt"

// NewTemplate composes the message, emoji and keyword list for a category
// triple. The result is deterministic: resolving the same triple always
// yields the same copy.
func NewTemplate(triple CategoryTriple) *WeatherTemplate {
	return &WeatherTemplate{
		Weather:  triple.Weather,
		Temp:     triple.Temp,
		Precip:   triple.Precip,
		Message:  composeMessage(triple),
		Emoji:    emojiFor(triple.Weather),
		Keywords: keywordsFor(triple),
	}
}

// composeMessage builds the human-readable recommendation copy. The
// precipitation clause and advisory are only present when rain is expected.
func composeMessage(t CategoryTriple) string {
	weather := weatherPhrase(t.Weather)
	temp := tempPhrase(t.Temp)

	if t.Precip == PrecipNone {
		return fmt.Sprintf("Expect %s skies and %s weather. %s", weather, temp, tempAdvice(t.Temp))
	}
	return fmt.Sprintf("Expect %s skies and %s weather. %s %s",
		weather, temp, precipPhrase(t.Precip), precipAdvice(t.Precip))
}

func weatherPhrase(w WeatherType) string {
	switch w {
	case WeatherClear:
		return "clear"
	case WeatherSnow:
		return "snowy"
	default:
		return "overcast"
	}
}

func tempPhrase(t TempCategory) string {
	switch t {
	case TempChilly:
		return "chilly"
	case TempCool:
		return "cool"
	case TempMild:
		return "mild"
	default:
		return "hot"
	}
}

func precipPhrase(p PrecipCategory) string {
	switch p {
	case PrecipHeavy:
		return "Heavy rain is expected."
	case PrecipLight:
		return "Light rain is expected."
	default:
		return ""
	}
}

func tempAdvice(t TempCategory) string {
	switch t {
	case TempChilly:
		return "Bring warm layers."
	case TempCool:
		return "A light jacket will do."
	case TempMild:
		return "A great day for outdoor plans."
	default:
		return "Stay hydrated and seek shade."
	}
}

func precipAdvice(p PrecipCategory) string {
	switch p {
	case PrecipHeavy:
		return "An indoor date is the safer bet."
	case PrecipLight:
		return "Pack an umbrella just in case."
	default:
		return ""
	}
}

func emojiFor(w WeatherType) string {
	switch w {
	case WeatherSnow:
		return "❄️"
	case WeatherClear:
		return "☀️"
	default:
		return "☁️"
	}
}

// keywordsFor derives short activity keywords for the recommendation
// projection from the category triple.
func keywordsFor(t CategoryTriple) []string {
	var kw []string

	switch t.Precip {
	case PrecipHeavy:
		kw = append(kw, "indoor", "museum")
	case PrecipLight:
		kw = append(kw, "umbrella", "cafe")
	default:
		if t.Weather == WeatherClear {
			kw = append(kw, "picnic", "walk")
		} else {
			kw = append(kw, "stroll")
		}
	}

	switch t.Temp {
	case TempChilly:
		kw = append(kw, "warm drinks")
	case TempHot:
		kw = append(kw, "shade")
	}

	if t.Weather == WeatherSnow {
		kw = append(kw, "snow day")
	}

	return kw
}
