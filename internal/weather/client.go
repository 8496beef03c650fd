// In file: internal/weather/client.go

// Package weather resolves a city and a relative date phrase into a weather
// report from the AMap (Gaode) REST API. Without credentials, or when a city
// cannot be geocoded, it answers with deterministic mock data instead.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/chengwenxing-cmd/VoiceService/internal/lexicon"
)

const (
	DefaultBaseURL    = "https://restapi.amap.com"
	DefaultTimeout    = 10 * time.Second
	DefaultAttempts   = 3
	DefaultRetryPause = time.Second
	DefaultCity       = "北京"

	weatherPath = "/v3/weather/weatherInfo"
	geocodePath = "/v3/geocode/geo"

	dateLayout       = "2006-01-02"
	reportTimeLayout = "2006-01-02 15:04:05"
)

// Config configures the adapter. Zero values fall back to the defaults above.
type Config struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Attempts    int
	RetryPause  time.Duration
	DefaultCity string
}

// Option customizes a Client.
type Option func(*Client)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client is the AMap weather adapter. It is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
	logger     *zap.Logger

	mu        sync.RWMutex
	cityCodes map[string]string
	geocoding singleflight.Group
}

// NewClient creates an adapter with its adcode cache pre-seeded.
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultAttempts
	}
	if cfg.RetryPause <= 0 {
		cfg.RetryPause = DefaultRetryPause
	}
	if cfg.DefaultCity == "" {
		cfg.DefaultCity = DefaultCity
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		now:        time.Now,
		logger:     logger.Named("weather"),
		cityCodes:  make(map[string]string, len(defaultCityCodes)),
	}
	for k, v := range defaultCityCodes {
		c.cityCodes[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.APIKey == "" {
		c.logger.Warn("AMAP_API_KEY not configured, weather answers will be mock data")
	} else {
		c.logger.Info("AMap weather adapter initialized")
	}
	return c
}

// GetWeather answers a weather query for city on the day described by
// datePhrase ("", 今天, 明天, 周五, ...). It never returns an error; failures
// are reported in the Report itself.
func (c *Client) GetWeather(ctx context.Context, city, datePhrase string) Report {
	city = lexicon.HanOnly(city)
	if len([]rune(city)) < 2 {
		c.logger.Warn("invalid city name, using default", zap.String("default_city", c.cfg.DefaultCity))
		city = c.cfg.DefaultCity
	}

	now := c.now()
	today := midnight(now)
	target := lexicon.ParseDatePhrase(datePhrase, now)
	forecast := !target.Equal(today)

	if c.cfg.APIKey == "" {
		return mockReport(city, today, target)
	}

	code, err := c.cityCode(ctx, city)
	if err != nil || code == "" {
		c.logger.Error("could not resolve city code, using mock data", zap.String("city", city), zap.Error(err))
		return mockReport(city, today, target)
	}

	extensions := "base"
	if forecast {
		extensions = "all"
	}
	c.logger.Info("querying weather",
		zap.String("city", city),
		zap.String("adcode", code),
		zap.String("date", target.Format(dateLayout)),
		zap.Bool("forecast", forecast))

	var resp amapWeatherResponse
	if report, ok := c.fetchWeather(ctx, code, extensions, &resp); !ok {
		return report
	}
	if resp.Status != "1" {
		info := resp.Info
		if info == "" {
			info = "未知错误"
		}
		c.logger.Error("weather API returned an error", zap.String("info", info))
		return errorReport(info)
	}

	if forecast {
		return processForecast(resp, city, dayDelta(today, target), target)
	}
	return processLive(resp, city, now)
}

// fetchWeather performs the weather request with retries. ok is false when
// the returned report is a final error.
func (c *Client) fetchWeather(ctx context.Context, code, extensions string, out *amapWeatherResponse) (Report, bool) {
	params := url.Values{
		"key":        {c.cfg.APIKey},
		"city":       {code},
		"extensions": {extensions},
		"output":     {"JSON"},
	}

	for attempt := 1; attempt <= c.cfg.Attempts; attempt++ {
		status, body, err := c.get(ctx, weatherPath, params)
		switch {
		case err != nil:
			c.logger.Error("weather request failed",
				zap.Int("attempt", attempt), zap.Int("attempts", c.cfg.Attempts), zap.Error(err))
			if attempt == c.cfg.Attempts || ctx.Err() != nil {
				return errorReport(fmt.Sprintf("API请求异常: %v", err)), false
			}
		case status != http.StatusOK:
			c.logger.Error("weather request returned non-200",
				zap.Int("attempt", attempt), zap.Int("attempts", c.cfg.Attempts), zap.Int("status", status))
			if attempt == c.cfg.Attempts {
				return errorReport(fmt.Sprintf("API请求失败: HTTP %d", status)), false
			}
		default:
			if err := json.Unmarshal(body, out); err != nil {
				return errorReport(fmt.Sprintf("获取天气信息失败: %v", err)), false
			}
			return Report{}, true
		}

		if err := sleepCtx(ctx, c.cfg.RetryPause); err != nil {
			return errorReport(fmt.Sprintf("API请求异常: %v", err)), false
		}
	}
	return errorReport("API请求失败"), false
}

// cityCode returns the adcode for city from the cache, or geocodes it.
// Concurrent lookups of the same city share one request.
func (c *Client) cityCode(ctx context.Context, city string) (string, error) {
	c.mu.RLock()
	code, ok := c.cityCodes[city]
	c.mu.RUnlock()
	if ok {
		return code, nil
	}

	v, err, _ := c.geocoding.Do(city, func() (any, error) {
		return c.geocode(ctx, city)
	})
	if err != nil {
		return "", err
	}
	code = v.(string)

	c.mu.Lock()
	c.cityCodes[city] = code
	c.mu.Unlock()
	c.logger.Info("cached city code", zap.String("city", city), zap.String("adcode", code))
	return code, nil
}

func (c *Client) geocode(ctx context.Context, city string) (string, error) {
	status, body, err := c.get(ctx, geocodePath, url.Values{
		"key":     {c.cfg.APIKey},
		"address": {city},
		"output":  {"JSON"},
	})
	if err != nil {
		return "", fmt.Errorf("geocode request failed: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("geocode request returned HTTP %d", status)
	}

	var resp amapGeocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if resp.Status != "1" || len(resp.Geocodes) == 0 || resp.Geocodes[0].Adcode == "" {
		return "", fmt.Errorf("geocode found no match for %s: %s", city, resp.Info)
	}
	return resp.Geocodes[0].Adcode, nil
}

// get issues one GET with the per-attempt timeout.
func (c *Client) get(ctx context.Context, path string, params url.Values) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "VoiceService/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func processLive(resp amapWeatherResponse, city string, now time.Time) Report {
	if len(resp.Lives) == 0 {
		return errorReport("未获取到实时天气数据")
	}
	live := resp.Lives[0]
	location := live.City
	if location == "" {
		location = city
	}
	humidity := orUnknown(live.Humidity)
	if live.Humidity != "" {
		humidity += "%"
	}
	return Report{
		Success: true,
		Message: "获取天气信息成功",
		Data: Data{
			City:          location,
			Date:          now.Format(dateLayout),
			Weather:       orUnknown(live.Weather),
			Temperature:   orUnknown(live.Temperature),
			WindDirection: orUnknown(live.WindDirection),
			WindPower:     orUnknown(live.WindPower),
			Humidity:      humidity,
			ReportTime:    now.Format(reportTimeLayout),
		},
		RawAPIResponse: resp,
	}
}

func processForecast(resp amapWeatherResponse, city string, index int, target time.Time) Report {
	if len(resp.Forecasts) == 0 || len(resp.Forecasts[0].Casts) == 0 {
		return errorReport("未获取到天气预报数据")
	}
	fc := resp.Forecasts[0]
	if index < 0 || index >= len(fc.Casts) {
		return errorReport("超出天气预报范围")
	}
	cast := fc.Casts[index]
	location := fc.City
	if location == "" {
		location = city
	}
	date := cast.Date
	if date == "" {
		date = target.Format(dateLayout)
	}
	return Report{
		Success: true,
		Message: "获取天气预报成功",
		Data: Data{
			City:          location,
			Date:          date,
			Weather:       orUnknown(cast.DayWeather),
			Temperature:   orUnknown(cast.NightTemp) + "~" + orUnknown(cast.DayTemp),
			WindDirection: orUnknown(cast.DayWind),
			WindPower:     orUnknown(cast.DayPower),
			IsForecast:    true,
		},
		RawAPIResponse: resp,
	}
}

func orUnknown(s string) string {
	if s == "" {
		return unknownValue
	}
	return s
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayDelta counts calendar days from today to target.
func dayDelta(today, target time.Time) int {
	return int(math.Round(target.Sub(today).Hours() / 24))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
