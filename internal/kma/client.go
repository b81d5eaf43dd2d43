package kma

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/datecast/datecast/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the KMA API hub.
	DefaultBaseURL = "https://apihub.kma.go.kr"

	// ProviderName identifies this provider.
	ProviderName = "kma"

	gridLookupPath       = "/api/typ01/cgi-bin/url/nph-dfs_xy_lonlat"
	shortTermPath        = "/api/typ02/openApi/VilageFcstInfoService_2.0/getVilageFcst"
	mediumTermTempPath   = "/api/typ01/url/fct_afs_wc.php"
	mediumTermLandPath   = "/api/typ01/url/fct_afs_wl.php"
	shortTermPageSize    = "1000"
	maxResponseBodyBytes = 4 << 20
)

// ClientConfig holds configuration for the KMA client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// AuthKey is the API hub authentication key, sent on every request.
	AuthKey string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration

	// Logger for parse diagnostics.
	Logger zerolog.Logger
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a KMA forecast API client.
type Client struct {
	baseURL    string
	authKey    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new KMA client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		authKey:    cfg.AuthKey,
		httpClient: httpClient,
		logger:     cfg.Logger.With().Str("provider", ProviderName).Logger(),
	}
}

// GetGridCoordinate resolves a lat/lon pair to the forecast grid cell. A
// response that cannot be parsed falls back to the Seoul city hall cell
// rather than failing the caller.
func (c *Client) GetGridCoordinate(ctx context.Context, lat, lon float64) (GridCoordinate, error) {
	query := url.Values{
		"lon":  {fmt.Sprintf("%.4f", lon)},
		"lat":  {fmt.Sprintf("%.4f", lat)},
		"help": {"0"},
	}

	body, err := c.getText(ctx, gridLookupPath, query)
	if err != nil {
		return GridCoordinate{}, fmt.Errorf("fetch grid coordinate: %w", err)
	}

	return ParseGridCoordinate(body), nil
}

// GetShortTermForecast fetches the short-range feed for one grid cell at
// the given issue slot. A malformed payload is logged and treated as an
// empty feed; only transport failures surface as errors.
func (c *Client) GetShortTermForecast(ctx context.Context, baseDate, baseTime string, nx, ny int) ([]ShortTermItem, error) {
	query := url.Values{
		"pageNo":    {"1"},
		"numOfRows": {shortTermPageSize},
		"dataType":  {"JSON"},
		"base_date": {baseDate},
		"base_time": {baseTime},
		"nx":        {fmt.Sprintf("%d", nx)},
		"ny":        {fmt.Sprintf("%d", ny)},
	}

	body, err := c.getText(ctx, shortTermPath, query)
	if err != nil {
		return nil, fmt.Errorf("fetch short-term forecast: %w", err)
	}

	items, err := parseShortTermItems([]byte(body))
	if err != nil {
		c.logger.Warn().Err(err).
			Str("base_date", baseDate).
			Str("base_time", baseTime).
			Msg("short-term payload did not decode, treating as empty")
		return nil, nil
	}

	return items, nil
}

// GetMediumTermTemperature fetches the medium-range temperature feed for a
// forecast region code.
func (c *Client) GetMediumTermTemperature(ctx context.Context, regCode string) ([]MediumTermTempItem, error) {
	body, err := c.getText(ctx, mediumTermTempPath, c.mediumQuery(regCode))
	if err != nil {
		return nil, fmt.Errorf("fetch medium-term temperature: %w", err)
	}

	return ParseMediumTermTemperature(body), nil
}

// GetMediumTermLand fetches the medium-range land (sky condition) feed for
// a forecast region code.
func (c *Client) GetMediumTermLand(ctx context.Context, regCode string) ([]MediumTermLandItem, error) {
	body, err := c.getText(ctx, mediumTermLandPath, c.mediumQuery(regCode))
	if err != nil {
		return nil, fmt.Errorf("fetch medium-term land: %w", err)
	}

	return ParseMediumTermLand(body), nil
}

func (c *Client) mediumQuery(regCode string) url.Values {
	return url.Values{
		"reg":  {regCode},
		"disp": {"0"},
		"help": {"0"},
	}
}

// getText performs a GET and returns the raw body. The auth key rides on
// the query string, as the API hub expects.
func (c *Client) getText(ctx context.Context, path string, query url.Values) (string, error) {
	query.Set("authKey", c.authKey)
	reqURL := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	return string(body), nil
}
