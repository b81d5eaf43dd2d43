package models

import "github.com/datecast/datecast/internal/weather"

// RecommendationResponse is one materialized daily recommendation.
type RecommendationResponse struct {
	Region   string    `json:"region"`
	Date     string    `json:"date"`
	Message  string    `json:"message"`
	Emoji    string    `json:"emoji"`
	Keywords []string  `json:"keywords"`
	Updated  Timestamp `json:"updatedAt"`
}

// ToRecommendationResponse maps a domain projection onto the wire shape.
func ToRecommendationResponse(rec *weather.Recommendation) RecommendationResponse {
	keywords := rec.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return RecommendationResponse{
		Region:   rec.RegionName,
		Date:     rec.ForecastDate.Format("2006-01-02"),
		Message:  rec.Message,
		Emoji:    rec.Emoji,
		Keywords: keywords,
		Updated:  Timestamp(rec.UpdatedAt),
	}
}

// WeeklyResponse is the seven-day outlook for one region.
type WeeklyResponse struct {
	Region string                   `json:"region"`
	Days   []RecommendationResponse `json:"days"`
}

// TodaySummaryResponse lists today's recommendation for every region.
type TodaySummaryResponse struct {
	Date    string                   `json:"date"`
	Regions []RecommendationResponse `json:"regions"`
}

// CoordinateRequest asks for today's recommendation near a point.
type CoordinateRequest struct {
	Point
}

// RegionResponse is one serviced forecast region.
type RegionResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RegionListResponse lists the serviced forecast regions.
type RegionListResponse struct {
	Regions []RegionResponse `json:"regions"`
}

// RefreshResponse reports the outcome of an admin-triggered ingestion cycle.
type RefreshResponse struct {
	Cycle        string    `json:"cycle"`
	Regions      int       `json:"regions"`
	Successful   int       `json:"successful"`
	Failed       int       `json:"failed"`
	Observations int       `json:"observations"`
	Duration     string    `json:"duration"`
	StartedAt    Timestamp `json:"startedAt"`
}
