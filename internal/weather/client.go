// README: Open-Meteo daily forecast client; °F/mph daily values mapped onto outfit day forecasts.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"packwise/internal/modules/outfit"
	"packwise/internal/retry"
)

const (
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	DefaultDays    = 7
	maxDays        = 16
)

// ErrNoForecast is returned when the provider answers without any usable day.
var ErrNoForecast = errors.New("forecast contained no usable days")

// Client fetches daily forecasts.
type Client struct {
	baseURL  string
	executor *retry.Executor
	cfg      retry.Config
}

func NewClient(baseURL string, executor *retry.Executor, cfg retry.Config) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: baseURL, executor: executor, cfg: cfg}
}

type dailyResponse struct {
	Daily struct {
		Time        []string   `json:"time"`
		TempMax     []*float64 `json:"temperature_2m_max"`
		TempMin     []*float64 `json:"temperature_2m_min"`
		PrecipProb  []*float64 `json:"precipitation_probability_max"`
		WindMax     []*float64 `json:"wind_speed_10m_max"`
		UVMax       []*float64 `json:"uv_index_max"`
		WeatherCode []*int     `json:"weather_code"`
	} `json:"daily"`
}

// Daily returns up to days forecasts in °F and mph. Days with a missing
// temperature are skipped; other missing values count as zero.
func (c *Client) Daily(ctx context.Context, lat, lng float64, days int) ([]outfit.DayForecast, error) {
	if days <= 0 {
		days = DefaultDays
	}
	if days > maxDays {
		days = maxDays
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', 4, 64))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max,wind_speed_10m_max,uv_index_max,weather_code")
	q.Set("temperature_unit", "fahrenheit")
	q.Set("wind_speed_unit", "mph")
	q.Set("timezone", "auto")
	q.Set("forecast_days", strconv.Itoa(days))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.executor.Execute(ctx, req, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("open-meteo forecast: %w", err)
	}
	defer resp.Body.Close()
	if err := retry.CheckResponse(resp, c.cfg.MaxRetries+1); err != nil {
		return nil, fmt.Errorf("open-meteo forecast: %w", err)
	}

	var body dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode open-meteo forecast: %w", err)
	}

	d := body.Daily
	out := make([]outfit.DayForecast, 0, len(d.Time))
	for i, date := range d.Time {
		high, okHigh := at(d.TempMax, i)
		low, okLow := at(d.TempMin, i)
		if !okHigh || !okLow {
			continue
		}
		precip, _ := at(d.PrecipProb, i)
		wind, _ := at(d.WindMax, i)
		uv, _ := at(d.UVMax, i)
		code := -1
		if i < len(d.WeatherCode) && d.WeatherCode[i] != nil {
			code = *d.WeatherCode[i]
		}
		out = append(out, outfit.DayForecast{
			Date:         date,
			HighTemp:     high,
			LowTemp:      low,
			PrecipChance: clamp(precip, 0, 100),
			WindSpeed:    max(wind, 0),
			UVIndex:      max(uv, 0),
			Condition:    ConditionForCode(code),
		})
	}
	if len(out) == 0 {
		return nil, ErrNoForecast
	}
	return out, nil
}

// ConditionForCode maps a WMO weather code onto a Condition.
func ConditionForCode(code int) outfit.Condition {
	switch {
	case code == 0 || code == 1:
		return outfit.ConditionSun
	case code == 2 || code == 3 || code == 45 || code == 48:
		return outfit.ConditionClouds
	case code >= 51 && code <= 67, code >= 80 && code <= 82:
		return outfit.ConditionRain
	case code >= 71 && code <= 77, code == 85 || code == 86:
		return outfit.ConditionSnow
	case code >= 95 && code <= 99:
		return outfit.ConditionMixed
	default:
		return ""
	}
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
