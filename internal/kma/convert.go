package kma

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/datecast/datecast/internal/weather"
)

const wireDateLayout = "20060102"

// Representative forecast time for a date when a reading exists for it.
const representativeTime = "1200"

// SkyDescriptor maps a short-range SKY code to a normalized descriptor.
func SkyDescriptor(code string) string {
	switch code {
	case "1":
		return "clear"
	case "3":
		return "mostly cloudy"
	case "4":
		return "cloudy"
	default:
		return "cloudy"
	}
}

// PrecipTypeDescriptor maps a short-range PTY code to a normalized
// descriptor.
func PrecipTypeDescriptor(code string) string {
	switch code {
	case "0":
		return "none"
	case "1":
		return "rain"
	case "2":
		return "rain/snow"
	case "3":
		return "snow"
	case "5":
		return "drizzle"
	case "6":
		return "drizzle/snow"
	case "7":
		return "snow flurries"
	default:
		return "none"
	}
}

// skyTextTable maps the medium-range feed's Korean sky phrases onto the
// same descriptors the short-range path produces.
var skyTextTable = map[string]string{
	"맑음":   "clear",
	"구름많음": "mostly cloudy",
	"흐림":   "cloudy",
}

// NormalizeSkyText converts a medium-range free-text sky phrase to a
// normalized descriptor. Unknown phrases degrade to containment checks so
// composites like "흐리고 비" still classify.
func NormalizeSkyText(text string) string {
	if d, ok := skyTextTable[text]; ok {
		return d
	}
	switch {
	case strings.Contains(text, "눈"):
		return "snow"
	case strings.Contains(text, "비"):
		return "rain"
	case strings.Contains(text, "맑"):
		return "clear"
	default:
		return "cloudy"
	}
}

// GroupShortTermByDate groups items by forecast date, preserving the order
// dates first appear in the feed.
func GroupShortTermByDate(items []ShortTermItem) ([]string, map[string][]ShortTermItem) {
	var dates []string
	grouped := make(map[string][]ShortTermItem)

	for _, item := range items {
		if _, seen := grouped[item.FcstDate]; !seen {
			dates = append(dates, item.FcstDate)
		}
		grouped[item.FcstDate] = append(grouped[item.FcstDate], item)
	}

	return dates, grouped
}

// SelectRepresentativeTime picks the forecast time that represents a date:
// 12:00 when any item carries it, otherwise the first item's time.
func SelectRepresentativeTime(items []ShortTermItem) string {
	for _, item := range items {
		if item.FcstTime == representativeTime {
			return representativeTime
		}
	}
	if len(items) > 0 {
		return items[0].FcstTime
	}
	return ""
}

// BuildShortTermObservation assembles the normalized observation for one
// date's items at their representative time. Returns false when the group
// is empty or the target date does not parse.
func BuildShortTermObservation(regionID int64, items []ShortTermItem) (*weather.RawShortTermObservation, bool) {
	if len(items) == 0 {
		return nil, false
	}

	fcstTime := SelectRepresentativeTime(items)
	first := items[0]

	fcstDate, err := time.Parse(wireDateLayout, first.FcstDate)
	if err != nil {
		return nil, false
	}
	baseDate, err := time.Parse(wireDateLayout, first.BaseDate)
	if err != nil {
		return nil, false
	}

	obs := &weather.RawShortTermObservation{
		RegionID:     regionID,
		BaseDate:     baseDate,
		BaseTime:     first.BaseTime,
		ForecastDate: fcstDate,
		ForecastTime: fcstTime,
		Sky:          SkyDescriptor(""),
		PrecipType:   PrecipTypeDescriptor("0"),
	}

	for _, item := range items {
		if item.FcstTime != fcstTime {
			continue
		}
		switch item.Category {
		case CategoryTemperature:
			obs.Temperature = parseFloat(item.FcstValue)
		case CategorySky:
			obs.Sky = SkyDescriptor(item.FcstValue)
		case CategoryPrecipProb:
			obs.PrecipProb = parseFloat(item.FcstValue)
		case CategoryPrecipType:
			obs.PrecipType = PrecipTypeDescriptor(item.FcstValue)
		case CategoryPrecipAmt:
			obs.PrecipAmount = parsePrecipAmount(item.FcstValue)
		}
	}

	return obs, true
}

// BuildMediumTermObservation combines one temperature item and one land
// item, zipped by position upstream, into a normalized observation.
func BuildMediumTermObservation(regionID int64, tempItem MediumTermTempItem, landItem MediumTermLandItem) (*weather.RawMediumTermObservation, error) {
	issueDate, err := parseWireTimestamp(tempItem.TmFc)
	if err != nil {
		return nil, fmt.Errorf("parsing issue timestamp %q: %w", tempItem.TmFc, err)
	}
	targetDate, err := parseWireTimestamp(tempItem.TmEf)
	if err != nil {
		return nil, fmt.Errorf("parsing target timestamp %q: %w", tempItem.TmEf, err)
	}

	return &weather.RawMediumTermObservation{
		RegionID:   regionID,
		IssueDate:  issueDate,
		TargetDate: targetDate,
		Sky:        NormalizeSkyText(landItem.SkyAM),
		MinTemp:    parseFloat(tempItem.Min),
		MaxTemp:    parseFloat(tempItem.Max),
	}, nil
}

// parseWireTimestamp reads the date part of a "yyyyMMddHHmm" timestamp.
func parseWireTimestamp(ts string) (time.Time, error) {
	if len(ts) < len(wireDateLayout) {
		return time.Time{}, fmt.Errorf("timestamp too short: %q", ts)
	}
	return time.Parse(wireDateLayout, ts[:len(wireDateLayout)])
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// parsePrecipAmount reads a PCP value. The feed sends sentinel phrases for
// no precipitation and unit-suffixed amounts ("1.5mm", "30.0~50.0mm");
// anything without a leading number counts as zero.
func parsePrecipAmount(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	if end == 0 {
		return 0
	}
	return parseFloat(s[:end])
}
