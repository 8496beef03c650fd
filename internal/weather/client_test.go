package weather

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var cst = time.FixedZone("CST", 8*3600)

// Tuesday.
func fixedNow() time.Time { return time.Date(2025, 6, 10, 10, 30, 0, 0, cst) }

const livesBody = `{"status":"1","info":"OK","lives":[{"province":"北京","city":"北京市","adcode":"110000",
	"weather":"晴","temperature":"25","winddirection":"东南","windpower":"≤3","humidity":"40","reporttime":"2025-06-10 10:00:00"}]}`

const forecastBody = `{"status":"1","info":"OK","forecasts":[{"city":"北京市","adcode":"110000","casts":[
	{"date":"2025-06-10","dayweather":"晴","nightweather":"晴","daytemp":"30","nighttemp":"18","daywind":"南","nightwind":"南","daypower":"1-3","nightpower":"1-3"},
	{"date":"2025-06-11","dayweather":"多云","nightweather":"阴","daytemp":"28","nighttemp":"17","daywind":"北","nightwind":"北","daypower":"3-4","nightpower":"1-3"},
	{"date":"2025-06-12","dayweather":"小雨","nightweather":"小雨","daytemp":"24","nighttemp":"16","daywind":"东","nightwind":"东","daypower":"1-3","nightpower":"1-3"},
	{"date":"2025-06-13","dayweather":"阴","nightweather":"晴","daytemp":"26","nighttemp":"15","daywind":"西","nightwind":"西","daypower":"1-3","nightpower":"1-3"}]}]}`

type amapStub struct {
	weatherHits int32
	geocodeHits int32
	weather     func(w http.ResponseWriter, r *http.Request, hit int32)
	geocode     func(w http.ResponseWriter, r *http.Request)
}

func (s *amapStub) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		switch r.URL.Path {
		case weatherPath:
			hit := atomic.AddInt32(&s.weatherHits, 1)
			s.weather(w, r, hit)
		case geocodePath:
			atomic.AddInt32(&s.geocodeHits, 1)
			if s.geocode == nil {
				_, _ = io.WriteString(w, `{"status":"1","info":"OK","count":"0","geocodes":[]}`)
				return
			}
			s.geocode(w, r)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL, key string) *Client {
	t.Helper()
	return NewClient(Config{
		APIKey:     key,
		BaseURL:    baseURL,
		Timeout:    time.Second,
		RetryPause: time.Millisecond,
	}, zaptest.NewLogger(t), WithClock(fixedNow))
}

func TestGetWeatherLive(t *testing.T) {
	stub := &amapStub{weather: func(w http.ResponseWriter, r *http.Request, _ int32) {
		assert.Equal(t, "base", r.URL.Query().Get("extensions"))
		assert.Equal(t, "110000", r.URL.Query().Get("city"))
		_, _ = io.WriteString(w, livesBody)
	}}
	srv := stub.start(t)

	rep := newTestClient(t, srv.URL, "test-key").GetWeather(context.Background(), "北京", "今天")
	require.True(t, rep.Success, rep.Message)
	assert.Equal(t, "北京市", rep.Data.City)
	assert.Equal(t, "晴", rep.Data.Weather)
	assert.Equal(t, "25", rep.Data.Temperature)
	assert.Equal(t, "东南", rep.Data.WindDirection)
	assert.Equal(t, "40%", rep.Data.Humidity)
	assert.Equal(t, "2025-06-10", rep.Data.Date)
	assert.Equal(t, "2025-06-10 10:30:00", rep.Data.ReportTime)
	assert.False(t, rep.Data.IsForecast)
	assert.False(t, rep.Data.IsMock)
	assert.NotNil(t, rep.RawAPIResponse)
}

func TestGetWeatherForecast(t *testing.T) {
	stub := &amapStub{weather: func(w http.ResponseWriter, r *http.Request, _ int32) {
		assert.Equal(t, "all", r.URL.Query().Get("extensions"))
		_, _ = io.WriteString(w, forecastBody)
	}}
	srv := stub.start(t)
	c := newTestClient(t, srv.URL, "test-key")

	tests := []struct {
		phrase  string
		date    string
		weather string
		temp    string
	}{
		{"明天", "2025-06-11", "多云", "17~28"},
		{"后天", "2025-06-12", "小雨", "16~24"},
		{"大后天", "2025-06-13", "阴", "15~26"},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			rep := c.GetWeather(context.Background(), "北京", tt.phrase)
			require.True(t, rep.Success, rep.Message)
			assert.Equal(t, tt.date, rep.Data.Date)
			assert.Equal(t, tt.weather, rep.Data.Weather)
			assert.Equal(t, tt.temp, rep.Data.Temperature)
			assert.True(t, rep.Data.IsForecast)
		})
	}
}

func TestGetWeatherForecastOutOfRange(t *testing.T) {
	stub := &amapStub{weather: func(w http.ResponseWriter, _ *http.Request, _ int32) {
		_, _ = io.WriteString(w, forecastBody)
	}}
	srv := stub.start(t)

	// Next Monday is six days out, past the four casts served.
	rep := newTestClient(t, srv.URL, "test-key").GetWeather(context.Background(), "北京", "周一")
	assert.False(t, rep.Success)
	assert.Equal(t, "超出天气预报范围", rep.Message)
	assert.Equal(t, unknownValue, rep.Data.Weather)
}

func TestGetWeatherGeocodesOnce(t *testing.T) {
	stub := &amapStub{
		weather: func(w http.ResponseWriter, r *http.Request, _ int32) {
			assert.Equal(t, "330200", r.URL.Query().Get("city"))
			_, _ = io.WriteString(w, livesBody)
		},
		geocode: func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "宁波", r.URL.Query().Get("address"))
			_, _ = io.WriteString(w, `{"status":"1","info":"OK","count":"1","geocodes":[{"adcode":"330200"}]}`)
		},
	}
	srv := stub.start(t)
	c := newTestClient(t, srv.URL, "test-key")

	for i := 0; i < 3; i++ {
		rep := c.GetWeather(context.Background(), "宁波", "")
		require.True(t, rep.Success, rep.Message)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.geocodeHits))
	assert.Equal(t, int32(3), atomic.LoadInt32(&stub.weatherHits))
}

func TestGetWeatherFallsBackToMockWhenGeocodeFails(t *testing.T) {
	stub := &amapStub{weather: func(w http.ResponseWriter, _ *http.Request, _ int32) {
		t.Error("weather endpoint must not be called")
	}}
	srv := stub.start(t)

	rep := newTestClient(t, srv.URL, "test-key").GetWeather(context.Background(), "不存在市", "")
	require.True(t, rep.Success)
	assert.True(t, rep.Data.IsMock)
	assert.Equal(t, "不存在市", rep.Data.City)
}

func TestGetWeatherRetriesServerErrors(t *testing.T) {
	stub := &amapStub{weather: func(w http.ResponseWriter, _ *http.Request, hit int32) {
		if hit < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, livesBody)
	}}
	srv := stub.start(t)

	rep := newTestClient(t, srv.URL, "test-key").GetWeather(context.Background(), "北京", "")
	require.True(t, rep.Success, rep.Message)
	assert.Equal(t, int32(3), atomic.LoadInt32(&stub.weatherHits))
}

func TestGetWeatherGivesUpAfterAttempts(t *testing.T) {
	stub := &amapStub{weather: func(w http.ResponseWriter, _ *http.Request, _ int32) {
		w.WriteHeader(http.StatusInternalServerError)
	}}
	srv := stub.start(t)

	rep := newTestClient(t, srv.URL, "test-key").GetWeather(context.Background(), "北京", "")
	assert.False(t, rep.Success)
	assert.Equal(t, "API请求失败: HTTP 500", rep.Message)
	assert.Equal(t, int32(DefaultAttempts), atomic.LoadInt32(&stub.weatherHits))
}

func TestGetWeatherProviderError(t *testing.T) {
	stub := &amapStub{weather: func(w http.ResponseWriter, _ *http.Request, _ int32) {
		_, _ = io.WriteString(w, `{"status":"0","info":"INVALID_USER_KEY","infocode":"10001"}`)
	}}
	srv := stub.start(t)

	rep := newTestClient(t, srv.URL, "test-key").GetWeather(context.Background(), "上海", "")
	assert.False(t, rep.Success)
	assert.Equal(t, "INVALID_USER_KEY", rep.Message)
}

func TestGetWeatherMockIsDeterministic(t *testing.T) {
	c := newTestClient(t, "", "")

	first := c.GetWeather(context.Background(), "北京", "明天")
	second := c.GetWeather(context.Background(), "北京", "明天")
	require.True(t, first.Success)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, "模拟天气预报数据", first.Message)
	assert.Equal(t, "2025-06-11", first.Data.Date)
	assert.True(t, first.Data.IsMock)
	assert.True(t, first.Data.IsForecast)
	assert.Contains(t, mockWeatherTypes, first.Data.Weather)

	live := c.GetWeather(context.Background(), "北京", "")
	assert.Equal(t, "模拟实时天气数据", live.Message)
	assert.False(t, live.Data.IsForecast)
	assert.Regexp(t, `^\d+%$`, live.Data.Humidity)
}

func TestGetWeatherLiveMockIsStableAcrossCalls(t *testing.T) {
	now := fixedNow()
	c := NewClient(Config{}, zaptest.NewLogger(t), WithClock(func() time.Time { return now }))

	first := c.GetWeather(context.Background(), "上海", "今天")
	now = now.Add(1100 * time.Millisecond)
	second := c.GetWeather(context.Background(), "上海", "今天")
	now = now.Add(3 * time.Hour)
	third := c.GetWeather(context.Background(), "上海", "今天")

	require.True(t, first.Data.IsMock)
	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
	assert.Equal(t, "2025-06-10 00:00:00", first.Data.ReportTime)
}

func TestGetWeatherInvalidCityUsesDefault(t *testing.T) {
	rep := newTestClient(t, "", "").GetWeather(context.Background(), "x1", "")
	assert.Equal(t, DefaultCity, rep.Data.City)
}

func TestDayDelta(t *testing.T) {
	today := time.Date(2025, 3, 29, 0, 0, 0, 0, cst)
	assert.Equal(t, 0, dayDelta(today, today))
	assert.Equal(t, 3, dayDelta(today, today.AddDate(0, 0, 3)))
	assert.Equal(t, -1, dayDelta(today, today.AddDate(0, 0, -1)))
}
