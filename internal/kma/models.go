// Package kma provides the client and parsers for the KMA (Korea
// Meteorological Administration) forecast APIs: grid-coordinate lookup,
// the JSON short-range feed and the delimited-text medium-range feeds.
package kma

// ShortTermItem is one short-range forecast value. The feed delivers one
// item per (forecast date, forecast time, category); a full reading for a
// moment spans several items.
type ShortTermItem struct {
	BaseDate  string `json:"baseDate"`
	BaseTime  string `json:"baseTime"`
	Category  string `json:"category"`
	FcstDate  string `json:"fcstDate"`
	FcstTime  string `json:"fcstTime"`
	FcstValue string `json:"fcstValue"`
	Nx        int    `json:"nx"`
	Ny        int    `json:"ny"`
}

// Short-range item categories consumed by the pipeline.
const (
	CategoryTemperature = "TMP"
	CategorySky         = "SKY"
	CategoryPrecipProb  = "POP"
	CategoryPrecipType  = "PTY"
	CategoryPrecipAmt   = "PCP"
)

// shortTermResponse mirrors the provider's nested JSON envelope.
type shortTermResponse struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			DataType string `json:"dataType"`
			Items    struct {
				Item []ShortTermItem `json:"item"`
			} `json:"items"`
			TotalCount int `json:"totalCount"`
		} `json:"body"`
	} `json:"response"`
}

// MediumTermTempItem is one line of the medium-range temperature feed.
type MediumTermTempItem struct {
	RegID   string
	TmFc    string // issue timestamp, "yyyyMMddHHmm"
	TmEf    string // target timestamp, "yyyyMMddHHmm"
	Mode    string
	Station string
	C       string
	Min     string
	Max     string
	MinLow  string
	MinHigh string
	MaxLow  string
	MaxHigh string
}

// MediumTermLandItem is one line of the medium-range land (sky) feed.
type MediumTermLandItem struct {
	RegID      string
	TmFc       string
	TmEf       string
	Mode       string
	Station    string
	C          string
	SkyAM      string
	SkyPM      string
	RainProbAM string
	RainProbPM string
}

// GridCoordinate is the provider's lat/lon to forecast-grid mapping.
type GridCoordinate struct {
	Lon string
	Lat string
	X   string
	Y   string
}

// FallbackGridCoordinate is returned when the grid-coordinate blob cannot
// be parsed at all (Seoul city hall).
var FallbackGridCoordinate = GridCoordinate{
	Lon: "126.9906",
	Lat: "37.5714",
	X:   "60",
	Y:   "127",
}
