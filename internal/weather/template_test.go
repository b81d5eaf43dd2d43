package weather_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datecast/datecast/internal/weather"
)

func TestNewTemplate_Deterministic(t *testing.T) {
	triple := weather.CategoryTriple{
		Weather: weather.WeatherClear,
		Temp:    weather.TempMild,
		Precip:  weather.PrecipNone,
	}

	a := weather.NewTemplate(triple)
	b := weather.NewTemplate(triple)

	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, a.Emoji, b.Emoji)
	assert.Equal(t, a.Keywords, b.Keywords)
}

func TestNewTemplate_NoPrecipOmitsRainClause(t *testing.T) {
	tpl := weather.NewTemplate(weather.CategoryTriple{
		Weather: weather.WeatherClear,
		Temp:    weather.TempMild,
		Precip:  weather.PrecipNone,
	})

	assert.Equal(t, "Expect clear skies and mild weather. A great day for outdoor plans.", tpl.Message)
	assert.Equal(t, "☀️", tpl.Emoji)
	assert.NotContains(t, tpl.Message, "rain")
	assert.Contains(t, tpl.Keywords, "picnic")
}

func TestNewTemplate_HeavyRain(t *testing.T) {
	tpl := weather.NewTemplate(weather.CategoryTriple{
		Weather: weather.WeatherCloudy,
		Temp:    weather.TempCool,
		Precip:  weather.PrecipHeavy,
	})

	assert.Contains(t, tpl.Message, "Heavy rain is expected.")
	assert.Contains(t, tpl.Message, "An indoor date is the safer bet.")
	assert.Equal(t, "☁️", tpl.Emoji)
	assert.Contains(t, tpl.Keywords, "indoor")
}

func TestNewTemplate_Snow(t *testing.T) {
	tpl := weather.NewTemplate(weather.CategoryTriple{
		Weather: weather.WeatherSnow,
		Temp:    weather.TempChilly,
		Precip:  weather.PrecipLight,
	})

	assert.Equal(t, "❄️", tpl.Emoji)
	assert.Contains(t, tpl.Keywords, "snow day")
	assert.Contains(t, tpl.Keywords, "warm drinks")
}

func TestTemplateRepository_FindOrCreate_Idempotent(t *testing.T) {
	repo := weather.NewInMemoryTemplateRepository()
	triple := weather.CategoryTriple{
		Weather: weather.WeatherClear,
		Temp:    weather.TempHot,
		Precip:  weather.PrecipNone,
	}

	first, err := repo.FindOrCreate(context.Background(), weather.NewTemplate(triple))
	require.NoError(t, err)
	second, err := repo.FindOrCreate(context.Background(), weather.NewTemplate(triple))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.Count())
}

func TestTemplateRepository_FindOrCreate_Concurrent(t *testing.T) {
	repo := weather.NewInMemoryTemplateRepository()
	triple := weather.CategoryTriple{
		Weather: weather.WeatherCloudy,
		Temp:    weather.TempCool,
		Precip:  weather.PrecipLight,
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.FindOrCreate(context.Background(), weather.NewTemplate(triple))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Concurrent resolution of one triple never duplicates the template.
	assert.Equal(t, 1, repo.Count())
}
