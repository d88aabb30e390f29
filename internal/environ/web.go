package environ

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"codeberg.org/mikkl/hwmond/internal/errors"
)

const (
	DefaultLocatorURL    = "http://ip-api.com/json"
	DefaultConditionsURL = "https://api.open-meteo.com/v1/forecast"
)

// webLocator resolves approximate coordinates from the device's public
// address (ip-api style response).
type webLocator struct {
	url    string
	client *http.Client
}

func NewWebLocator(url string, client *http.Client) Locator {
	if url == "" {
		url = DefaultLocatorURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &webLocator{url: url, client: client}
}

func (l *webLocator) Locate(ctx context.Context) (float64, float64, error) {
	errFactory := errors.New()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return 0, 0, errFactory.Wrap(ErrLocateFailed, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return 0, 0, errFactory.Wrap(ErrLocateFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, errFactory.WithData(ErrBadResponse, resp.StatusCode)
	}

	var body struct {
		Status string  `json:"status"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, 0, errFactory.Wrap(ErrBadResponse, err)
	}
	if body.Status != "" && body.Status != "success" {
		return 0, 0, errFactory.WithData(ErrLocateFailed, body.Status)
	}

	return body.Lat, body.Lon, nil
}

// webConditions fetches the current ambient condition for coordinates
// (open-meteo style response).
type webConditions struct {
	url    string
	client *http.Client
}

func NewWebConditions(url string, client *http.Client) ConditionSource {
	if url == "" {
		url = DefaultConditionsURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &webConditions{url: url, client: client}
}

func (c *webConditions) Conditions(ctx context.Context, lat, lon float64) (Condition, float64, error) {
	errFactory := errors.New()

	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&current_weather=true", c.url, lat, lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ConditionUnknown, 0, errFactory.Wrap(ErrConditionFetch, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return ConditionUnknown, 0, errFactory.Wrap(ErrConditionFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ConditionUnknown, 0, errFactory.WithData(ErrBadResponse, resp.StatusCode)
	}

	var body struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ConditionUnknown, 0, errFactory.Wrap(ErrBadResponse, err)
	}

	return conditionFromWMO(body.CurrentWeather.WeatherCode), body.CurrentWeather.Temperature, nil
}

// conditionFromWMO maps WMO weather interpretation codes to the discrete
// condition set.
func conditionFromWMO(code int) Condition {
	switch {
	case code == 0:
		return ConditionClear
	case code <= 2:
		return ConditionPartlyCloudy
	case code == 3:
		return ConditionCloudy
	case code == 45 || code == 48:
		return ConditionFog
	case code >= 51 && code <= 57:
		return ConditionDrizzle
	case (code >= 61 && code <= 67) || (code >= 80 && code <= 82):
		return ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return ConditionSnow
	case code >= 95:
		return ConditionThunderstorm
	default:
		return ConditionUnknown
	}
}
