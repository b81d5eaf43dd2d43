// Package worker provides background forecast ingestion for DateCast.
package worker

import (
	"fmt"
	"time"

	"github.com/datecast/datecast/internal/weather"
)

// Forecast issue slots, in hours of day. The provider publishes the
// short-range feed at these times and the payload becomes available a few
// minutes later.
var issueHours = []int{2, 5, 8, 11, 14, 17, 20, 23}

// issueJobDelayMinutes is how many minutes after an issue slot the
// scheduled ingest job fires, giving the provider time to publish.
const issueJobDelayMinutes = 10

// Forecast horizons, as day offsets from the ingestion day. The short-range
// feed is authoritative for the near window; the medium-range feeds cover
// the tail of the week.
const (
	shortTermHorizonDays  = 3 // offsets 0..2
	mediumTermFirstOffset = 3
	mediumTermLastOffset  = 6
)

// IngestConfig holds configuration for the forecast ingestion jobs.
type IngestConfig struct {
	// Regions are the forecast regions to ingest.
	// If empty, uses DefaultRegions.
	Regions []weather.Region

	// Concurrency is the number of concurrent per-region fetches.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for one region's fetch-and-store pass.
	// Default: 30 seconds
	Timeout time.Duration

	// RetentionDays is how many days of raw observations to keep.
	// Default: 7
	RetentionDays int
}

// DefaultIngestConfig returns the default ingestion configuration.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		Regions:       DefaultRegions(),
		Concurrency:   3,
		Timeout:       30 * time.Second,
		RetentionDays: 7,
	}
}

// DefaultRegions returns the forecast regions ingested out of the box:
// the major Korean metropolitan areas, with their short-range grid cell
// and medium-range region code.
func DefaultRegions() []weather.Region {
	return []weather.Region{
		{ID: 1, Name: "Seoul", Latitude: 37.5665, Longitude: 126.9780, GridX: 60, GridY: 127, RegCode: "11B00000"},
		{ID: 2, Name: "Incheon", Latitude: 37.4563, Longitude: 126.7052, GridX: 55, GridY: 124, RegCode: "11B00000"},
		{ID: 3, Name: "Busan", Latitude: 35.1796, Longitude: 129.0756, GridX: 98, GridY: 76, RegCode: "11H20000"},
		{ID: 4, Name: "Daegu", Latitude: 35.8714, Longitude: 128.6014, GridX: 89, GridY: 90, RegCode: "11H10000"},
		{ID: 5, Name: "Gwangju", Latitude: 35.1595, Longitude: 126.8526, GridX: 58, GridY: 74, RegCode: "11F20000"},
		{ID: 6, Name: "Daejeon", Latitude: 36.3504, Longitude: 127.3845, GridX: 67, GridY: 100, RegCode: "11C20000"},
		{ID: 7, Name: "Jeju", Latitude: 33.4996, Longitude: 126.5312, GridX: 52, GridY: 38, RegCode: "11G00000"},
	}
}

// BaseIssueTime returns the (base_date, base_time) pair for the most recent
// issue slot not later than now. Before the first slot of the day it rolls
// back to yesterday's last slot. Payload availability is the schedule's
// concern: scheduled jobs fire issueJobDelayMinutes after the slot.
func BaseIssueTime(now time.Time) (string, string) {
	for i := len(issueHours) - 1; i >= 0; i-- {
		slot := time.Date(now.Year(), now.Month(), now.Day(), issueHours[i], 0, 0, 0, now.Location())
		if !now.Before(slot) {
			return slot.Format("20060102"), slot.Format("1504")
		}
	}

	yesterday := now.AddDate(0, 0, -1)
	last := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), issueHours[len(issueHours)-1], 0, 0, 0, now.Location())
	return last.Format("20060102"), last.Format("1504")
}

// IssueHours exposes the issue slots for schedule construction.
func IssueHours() []int {
	out := make([]int, len(issueHours))
	copy(out, issueHours)
	return out
}

// dayOffset returns how many whole days d lies after the day containing now.
func dayOffset(now, d time.Time) int {
	base := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	target := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
	return int(target.Sub(base).Hours() / 24)
}

func (c IngestConfig) regions() []weather.Region {
	if len(c.Regions) == 0 {
		return DefaultRegions()
	}
	return c.Regions
}

func (c IngestConfig) String() string {
	return fmt.Sprintf("regions=%d concurrency=%d timeout=%s retention=%dd",
		len(c.regions()), c.Concurrency, c.Timeout, c.RetentionDays)
}
