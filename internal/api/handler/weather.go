// Package handler provides HTTP handlers for the DateCast API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/datecast/datecast/internal/api/models"
	"github.com/datecast/datecast/internal/api/response"
	"github.com/datecast/datecast/internal/weather"
)

// WeatherHandler handles recommendation read endpoints.
type WeatherHandler struct {
	service *weather.QueryService
	regions weather.RegionRepository
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(service *weather.QueryService, regions weather.RegionRepository) *WeatherHandler {
	return &WeatherHandler{service: service, regions: regions}
}

// ListRegions handles GET /v1/weather/regions - list serviced regions.
func (h *WeatherHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.regions.List(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to list regions")
		return
	}

	out := models.RegionListResponse{Regions: make([]models.RegionResponse, 0, len(regions))}
	for _, region := range regions {
		out.Regions = append(out.Regions, models.RegionResponse{
			ID:        region.ID,
			Name:      region.Name,
			Latitude:  region.Latitude,
			Longitude: region.Longitude,
		})
	}
	response.JSON(w, r, http.StatusOK, out)
}

// GetDaily handles GET /v1/weather/regions/{regionId}/daily?date=2006-01-02.
func (h *WeatherHandler) GetDaily(w http.ResponseWriter, r *http.Request) {
	regionID, ok := regionIDParam(w, r)
	if !ok {
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		response.BadRequest(w, r, "date query parameter is required", nil)
		return
	}

	rec, err := h.service.GetDailyRecommendation(r.Context(), regionID, dateStr)
	if err != nil {
		writeWeatherError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.ToRecommendationResponse(rec))
}

// GetWeekly handles GET /v1/weather/regions/{regionId}/weekly.
func (h *WeatherHandler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	regionID, ok := regionIDParam(w, r)
	if !ok {
		return
	}

	regionName, recs, err := h.service.GetWeeklyRecommendations(r.Context(), regionID)
	if err != nil {
		writeWeatherError(w, r, err)
		return
	}

	out := models.WeeklyResponse{
		Region: regionName,
		Days:   make([]models.RecommendationResponse, 0, len(recs)),
	}
	for _, rec := range recs {
		out.Days = append(out.Days, models.ToRecommendationResponse(rec))
	}
	response.JSON(w, r, http.StatusOK, out)
}

// ByCoordinate handles POST /v1/weather/coordinate - today's recommendation
// for the region nearest a point.
func (h *WeatherHandler) ByCoordinate(w http.ResponseWriter, r *http.Request) {
	var input models.CoordinateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	rec, err := h.service.GetByCoordinate(r.Context(), input.Lat, input.Lon)
	if err != nil {
		writeWeatherError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.ToRecommendationResponse(rec))
}

// GetToday handles GET /v1/weather/today - today's summary for all regions.
func (h *WeatherHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.GetTodaySummary(r.Context())
	if err != nil {
		writeWeatherError(w, r, err)
		return
	}

	out := models.TodaySummaryResponse{
		Regions: make([]models.RecommendationResponse, 0, len(recs)),
	}
	for _, rec := range recs {
		out.Regions = append(out.Regions, models.ToRecommendationResponse(rec))
	}
	if len(recs) > 0 {
		out.Date = recs[0].ForecastDate.Format("2006-01-02")
	}
	response.JSON(w, r, http.StatusOK, out)
}

func regionIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "regionId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, r, "regionId must be a positive integer", []models.FieldError{
			{Field: "regionId", Message: "must be a positive integer", Code: "invalid"},
		})
		return 0, false
	}
	return id, true
}

// writeWeatherError maps domain errors onto problem responses.
func writeWeatherError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, weather.ErrInvalidDate):
		response.BadRequest(w, r, "date must be formatted as 2006-01-02", []models.FieldError{
			{Field: "date", Message: "must be formatted as 2006-01-02", Code: "invalid"},
		})
	case errors.Is(err, weather.ErrInvalidCoordinates):
		response.BadRequest(w, r, "coordinates are outside the service area", []models.FieldError{
			{Field: "lat", Message: "must be within the service area", Code: "out_of_range"},
			{Field: "lon", Message: "must be within the service area", Code: "out_of_range"},
		})
	case errors.Is(err, weather.ErrRegionNotFound):
		response.NotFound(w, r, "region not found")
	case errors.Is(err, weather.ErrRecommendationNotFound):
		response.NotFound(w, r, "no recommendation for the requested date")
	default:
		response.InternalError(w, r, "unexpected error")
	}
}
