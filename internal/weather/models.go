// Package weather provides the forecast ingestion and recommendation domain
// for DateCast: raw observation storage, classification, template resolution
// and daily recommendation building.
package weather

import (
	"errors"
	"time"
)

// Domain errors.
var (
	ErrRegionNotFound         = errors.New("region not found")
	ErrObservationNotFound    = errors.New("raw observation not found")
	ErrTemplateNotFound       = errors.New("weather template not found")
	ErrRecommendationNotFound = errors.New("daily recommendation not found")
	ErrInvalidCoordinates     = errors.New("invalid coordinates")
	ErrInvalidDate            = errors.New("invalid date format")
)

// TempCategory classifies a temperature reading into a closed set of bands.
type TempCategory string

const (
	TempChilly TempCategory = "CHILLY"
	TempCool   TempCategory = "COOL"
	TempMild   TempCategory = "MILD"
	TempHot    TempCategory = "HOT"
)

// PrecipCategory classifies a precipitation amount.
type PrecipCategory string

const (
	PrecipNone  PrecipCategory = "NONE"
	PrecipLight PrecipCategory = "LIGHT"
	PrecipHeavy PrecipCategory = "HEAVY"
)

// WeatherType classifies a sky-condition descriptor.
type WeatherType string

const (
	WeatherClear  WeatherType = "CLEAR"
	WeatherCloudy WeatherType = "CLOUDY"
	WeatherSnow   WeatherType = "SNOW"
)

// Region is immutable reference data seeded by an admin process.
// The pipeline reads regions but never mutates them.
type Region struct {
	ID        int64
	Name      string
	Latitude  float64
	Longitude float64

	// KMA forecast grid cell for short-range requests.
	GridX int
	GridY int

	// Provider region code for medium-range requests (e.g. "11B00000").
	RegCode string
}

// RawShortTermObservation is one normalized short-range forecast reading.
// Natural key: (RegionID, ForecastDate, ForecastTime). Re-fetches for the
// same key replace the row in place.
type RawShortTermObservation struct {
	ID       int64
	RegionID int64

	// When the provider computed the forecast.
	BaseDate time.Time
	BaseTime string // "HHMM"

	// Forecast target moment.
	ForecastDate time.Time
	ForecastTime string // "HHMM"

	Temperature  float64
	Sky          string // normalized descriptor: "clear", "mostly cloudy", ...
	PrecipProb   float64
	PrecipType   string // normalized descriptor: "none", "rain", "snow", ...
	PrecipAmount float64
}

// RawMediumTermObservation is one normalized medium-range forecast reading
// (3-7 days out). Natural key: (RegionID, TargetDate).
type RawMediumTermObservation struct {
	ID       int64
	RegionID int64

	IssueDate  time.Time
	TargetDate time.Time

	Sky     string
	MinTemp float64
	MaxTemp float64
}

// CategoryTriple keys a WeatherTemplate. At most one template exists per
// distinct triple.
type CategoryTriple struct {
	Weather WeatherType
	Temp    TempCategory
	Precip  PrecipCategory
}

// WeatherTemplate is the deduplicated copy for a category triple. Created
// lazily on first use, never mutated afterwards.
type WeatherTemplate struct {
	ID       int64
	Weather  WeatherType
	Temp     TempCategory
	Precip   PrecipCategory
	Message  string
	Emoji    string
	Keywords []string
}

// Triple returns the template's category triple.
func (t *WeatherTemplate) Triple() CategoryTriple {
	return CategoryTriple{Weather: t.Weather, Temp: t.Temp, Precip: t.Precip}
}

// DailyRecommendation is the materialized recommendation for one region and
// one forecast day. Natural key: (RegionID, ForecastDate); rebuilt
// last-write-wins whenever fresher raw data arrives.
type DailyRecommendation struct {
	ID           int64
	RegionID     int64
	TemplateID   int64
	ForecastDate time.Time
	UpdatedAt    time.Time
}

// Recommendation is the read-side projection served to API clients.
type Recommendation struct {
	ID           int64
	RegionName   string
	ForecastDate time.Time
	Message      string
	Emoji        string
	Keywords     []string
	UpdatedAt    time.Time
}
