package kma_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datecast/datecast/internal/kma"
)

func shortTermItem(date, fcstTime, category, value string) kma.ShortTermItem {
	return kma.ShortTermItem{
		BaseDate:  "20260829",
		BaseTime:  "0500",
		Category:  category,
		FcstDate:  date,
		FcstTime:  fcstTime,
		FcstValue: value,
		Nx:        60,
		Ny:        127,
	}
}

func TestGroupShortTermByDate(t *testing.T) {
	items := []kma.ShortTermItem{
		shortTermItem("20260829", "1200", "TMP", "24"),
		shortTermItem("20260830", "0600", "TMP", "21"),
		shortTermItem("20260829", "1500", "TMP", "26"),
	}

	dates, grouped := kma.GroupShortTermByDate(items)
	assert.Equal(t, []string{"20260829", "20260830"}, dates)
	assert.Len(t, grouped["20260829"], 2)
	assert.Len(t, grouped["20260830"], 1)
}

func TestSelectRepresentativeTime(t *testing.T) {
	withNoon := []kma.ShortTermItem{
		shortTermItem("20260829", "0600", "TMP", "18"),
		shortTermItem("20260829", "1200", "TMP", "24"),
	}
	assert.Equal(t, "1200", kma.SelectRepresentativeTime(withNoon))

	withoutNoon := []kma.ShortTermItem{
		shortTermItem("20260829", "1800", "TMP", "22"),
		shortTermItem("20260829", "2100", "TMP", "19"),
	}
	assert.Equal(t, "1800", kma.SelectRepresentativeTime(withoutNoon))

	assert.Equal(t, "", kma.SelectRepresentativeTime(nil))
}

func TestBuildShortTermObservation(t *testing.T) {
	items := []kma.ShortTermItem{
		shortTermItem("20260829", "0600", "TMP", "18"),
		shortTermItem("20260829", "1200", "TMP", "24"),
		shortTermItem("20260829", "1200", "SKY", "1"),
		shortTermItem("20260829", "1200", "POP", "30"),
		shortTermItem("20260829", "1200", "PTY", "0"),
		shortTermItem("20260829", "1200", "PCP", "강수없음"),
	}

	obs, ok := kma.BuildShortTermObservation(7, items)
	require.True(t, ok)

	assert.Equal(t, int64(7), obs.RegionID)
	assert.Equal(t, "1200", obs.ForecastTime)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), obs.ForecastDate)
	assert.InDelta(t, 24.0, obs.Temperature, 0.001)
	assert.Equal(t, "clear", obs.Sky)
	assert.InDelta(t, 30.0, obs.PrecipProb, 0.001)
	assert.Equal(t, "none", obs.PrecipType)
	assert.Zero(t, obs.PrecipAmount)
}

func TestBuildShortTermObservation_UnitSuffixedPrecip(t *testing.T) {
	items := []kma.ShortTermItem{
		shortTermItem("20260829", "1200", "PCP", "30.0~50.0mm"),
		shortTermItem("20260829", "1200", "PTY", "1"),
	}

	obs, ok := kma.BuildShortTermObservation(1, items)
	require.True(t, ok)
	assert.InDelta(t, 30.0, obs.PrecipAmount, 0.001)
	assert.Equal(t, "rain", obs.PrecipType)
}

func TestBuildShortTermObservation_Empty(t *testing.T) {
	_, ok := kma.BuildShortTermObservation(1, nil)
	assert.False(t, ok)
}

func TestBuildMediumTermObservation(t *testing.T) {
	tempItem := kma.MediumTermTempItem{
		RegID: "11B10101",
		TmFc:  "202608290600",
		TmEf:  "202609010000",
		Min:   "18",
		Max:   "28",
	}
	landItem := kma.MediumTermLandItem{
		RegID: "11B00000",
		SkyAM: "맑음",
		SkyPM: "맑음",
	}

	obs, err := kma.BuildMediumTermObservation(3, tempItem, landItem)
	require.NoError(t, err)

	assert.Equal(t, int64(3), obs.RegionID)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), obs.IssueDate)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), obs.TargetDate)
	assert.Equal(t, "clear", obs.Sky)
	assert.InDelta(t, 18.0, obs.MinTemp, 0.001)
	assert.InDelta(t, 28.0, obs.MaxTemp, 0.001)
}

func TestBuildMediumTermObservation_BadTimestamp(t *testing.T) {
	_, err := kma.BuildMediumTermObservation(3, kma.MediumTermTempItem{TmFc: "2026"}, kma.MediumTermLandItem{})
	assert.Error(t, err)
}

func TestNormalizeSkyText(t *testing.T) {
	assert.Equal(t, "clear", kma.NormalizeSkyText("맑음"))
	assert.Equal(t, "mostly cloudy", kma.NormalizeSkyText("구름많음"))
	assert.Equal(t, "cloudy", kma.NormalizeSkyText("흐림"))
	assert.Equal(t, "rain", kma.NormalizeSkyText("흐리고 비"))
	assert.Equal(t, "snow", kma.NormalizeSkyText("흐리고 눈"))
	assert.Equal(t, "cloudy", kma.NormalizeSkyText(""))
}

func TestSkyDescriptor(t *testing.T) {
	assert.Equal(t, "clear", kma.SkyDescriptor("1"))
	assert.Equal(t, "mostly cloudy", kma.SkyDescriptor("3"))
	assert.Equal(t, "cloudy", kma.SkyDescriptor("4"))
	assert.Equal(t, "cloudy", kma.SkyDescriptor("9"))
}

func TestPrecipTypeDescriptor(t *testing.T) {
	assert.Equal(t, "none", kma.PrecipTypeDescriptor("0"))
	assert.Equal(t, "rain", kma.PrecipTypeDescriptor("1"))
	assert.Equal(t, "snow", kma.PrecipTypeDescriptor("3"))
	assert.Equal(t, "none", kma.PrecipTypeDescriptor("unknown"))
}
