package kma

import (
	"encoding/json"
	"strings"
)

// Text-feed framing. Comment lines start with the marker and are skipped;
// data lines are whitespace-tokenized and must carry at least the minimum
// token count for their feed, or the line contributes nothing.
const (
	commentMarker = "#"

	minTempTokens = 8
	minLandTokens = 10
)

// parseShortTermItems decodes the JSON short-range envelope. The feed is
// already structured; decoding is the only contract.
func parseShortTermItems(body []byte) ([]ShortTermItem, error) {
	var resp shortTermResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return resp.Response.Body.Items.Item, nil
}

// ParseMediumTermTemperature parses the fixed/variable-width temperature
// feed. Lines with fewer than 8 tokens are skipped entirely; missing
// confidence-bound tail tokens default to "1".
func ParseMediumTermTemperature(body string) []MediumTermTempItem {
	var items []MediumTermTempItem

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < minTempTokens {
			continue
		}

		items = append(items, MediumTermTempItem{
			RegID:   parts[0],
			TmFc:    parts[1],
			TmEf:    parts[2],
			Mode:    parts[3],
			Station: parts[4],
			C:       parts[5],
			Min:     parts[6],
			Max:     parts[7],
			MinLow:  tokenOr(parts, 8, "1"),
			MinHigh: tokenOr(parts, 9, "1"),
			MaxLow:  tokenOr(parts, 10, "1"),
			MaxHigh: tokenOr(parts, 11, "1"),
		})
	}

	return items
}

// ParseMediumTermLand parses the land (sky condition) feed. Quoted
// substrings wrap multi-byte sky text and are unquoted before tokenizing;
// the optional rainfall-probability tail defaults to "0". The single sky
// value fills both the AM and PM slots.
func ParseMediumTermLand(body string) []MediumTermLandItem {
	var items []MediumTermLandItem

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}

		line = unquote(line)
		parts := strings.Fields(line)
		if len(parts) < minLandTokens {
			continue
		}

		sky := parts[9]
		rainProb := tokenOr(parts, 10, "0")
		items = append(items, MediumTermLandItem{
			RegID:      parts[0],
			TmFc:       parts[1],
			TmEf:       parts[2],
			Mode:       parts[3],
			Station:    parts[4],
			C:          parts[5],
			SkyAM:      sky,
			SkyPM:      sky,
			RainProbAM: rainProb,
			RainProbPM: rainProb,
		})
	}

	return items
}

// ParseGridCoordinate parses the comma-separated grid lookup blob. The
// first non-comment line maps positionally to (lon, lat, x, y); a blob with
// no usable line yields the fixed fallback coordinate instead of an error.
func ParseGridCoordinate(body string) GridCoordinate {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 4 {
			continue
		}

		return GridCoordinate{
			Lon: strings.TrimSpace(parts[0]),
			Lat: strings.TrimSpace(parts[1]),
			X:   strings.TrimSpace(parts[2]),
			Y:   strings.TrimSpace(parts[3]),
		}
	}

	return FallbackGridCoordinate
}

// unquote strips paired double quotes, keeping their contents as a single
// token-safe word.
func unquote(line string) string {
	return strings.ReplaceAll(line, `"`, "")
}

func tokenOr(parts []string, i int, def string) string {
	if len(parts) > i {
		return parts[i]
	}
	return def
}
