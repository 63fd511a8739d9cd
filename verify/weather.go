// Package verify implements the Verifier collaborator over the OpenWeather
// current-conditions API. The rescue agent uses it to sanity-check reported
// weather hazards before answering with full confidence.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clarionhq/clarion/core"
)

const defaultEndpoint = "https://api.openweathermap.org/data/2.5/weather"

// Options configure the weather verifier.
type Options struct {
	Endpoint string
	Timeout  time.Duration
	Client   *http.Client
}

// WeatherVerifier confirms weather-driven hazards against live conditions.
// Non-weather hazards (earthquake, medical) come back as not-known: the
// verifier refuses to guess outside its data.
type WeatherVerifier struct {
	apiKey string
	opts   Options
}

// NewWeatherVerifier builds a verifier. The API key is required.
func NewWeatherVerifier(apiKey string, optFns ...func(o *Options)) (*WeatherVerifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("verify: API key is required")
	}
	opts := Options{
		Endpoint: defaultEndpoint,
		Timeout:  8 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	return &WeatherVerifier{apiKey: apiKey, opts: opts}, nil
}

type weatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain map[string]float64 `json:"rain"`
}

// hurricaneWindSpeed is the sustained wind threshold in m/s above which
// storm conditions corroborate a hurricane report.
const hurricaneWindSpeed = 25.0

// Verify implements core.Verifier.
func (v *WeatherVerifier) Verify(ctx context.Context, hazard core.Hazard, location string) (core.Verification, error) {
	if !weatherHazard(hazard) {
		return core.Verification{Known: false, Detail: "hazard not verifiable from weather data"}, nil
	}

	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", v.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.opts.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return core.Verification{}, fmt.Errorf("verify: build request: %w", err)
	}
	resp, err := v.opts.Client.Do(req)
	if err != nil {
		return core.Verification{}, fmt.Errorf("verify %s at %s: %w", hazard, location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return core.Verification{Known: false, Detail: "location not found"}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return core.Verification{}, fmt.Errorf("verify %s at %s: unexpected status %d", hazard, location, resp.StatusCode)
	}

	var body weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return core.Verification{}, fmt.Errorf("verify: decode response: %w", err)
	}
	return v.judge(hazard, body), nil
}

// judge maps observed conditions onto a confirmation for the reported hazard.
func (v *WeatherVerifier) judge(hazard core.Hazard, w weatherResponse) core.Verification {
	var conditions []string
	for _, c := range w.Weather {
		conditions = append(conditions, strings.ToLower(c.Main), strings.ToLower(c.Description))
	}
	joined := strings.Join(conditions, " ")

	switch hazard {
	case core.HazardFlood:
		heavyRain := w.Rain["1h"] >= 10 || w.Rain["3h"] >= 25
		if heavyRain || strings.Contains(joined, "extreme rain") || strings.Contains(joined, "heavy intensity rain") {
			return core.Verification{Confirmed: true, Known: true, Detail: "heavy precipitation observed"}
		}
		return core.Verification{Confirmed: false, Known: true, Detail: "no heavy precipitation observed"}
	case core.HazardHurricane, core.HazardTornado:
		stormy := strings.Contains(joined, "tornado") || strings.Contains(joined, "hurricane") ||
			strings.Contains(joined, "squall") || w.Wind.Speed >= hurricaneWindSpeed
		if stormy {
			return core.Verification{Confirmed: true, Known: true, Detail: "severe storm conditions observed"}
		}
		return core.Verification{Confirmed: false, Known: true, Detail: "no severe storm conditions observed"}
	case core.HazardFire, core.HazardWildfire:
		if strings.Contains(joined, "smoke") || strings.Contains(joined, "haze") {
			return core.Verification{Confirmed: true, Known: true, Detail: "smoke conditions observed"}
		}
		// Clear air does not rule out a fire; stay undecided.
		return core.Verification{Known: false, Detail: "no smoke signature in weather data"}
	default:
		return core.Verification{Known: false}
	}
}

func weatherHazard(h core.Hazard) bool {
	switch h {
	case core.HazardFlood, core.HazardHurricane, core.HazardTornado, core.HazardFire, core.HazardWildfire:
		return true
	default:
		return false
	}
}

var _ core.Verifier = (*WeatherVerifier)(nil)
