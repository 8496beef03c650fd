// In file: internal/weather/mock.go
package weather

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math/big"
	"math/rand"
	"time"
)

var (
	mockWeatherTypes   = []string{"晴", "多云", "阴", "小雨", "中雨", "大雨", "雷阵雨", "小雪", "中雪", "大雪"}
	mockWindDirections = []string{"东", "南", "西", "北", "东北", "东南", "西北", "西南"}
)

const mockForecastDays = 7

// mockSeed derives a stable seed from md5(city+date), so the same city and
// day always produce the same weather.
func mockSeed(city, date string) int64 {
	sum := md5.Sum([]byte(city + date))
	n := new(big.Int)
	n.SetString(hex.EncodeToString(sum[:]), 16)
	return n.Mod(n, big.NewInt(100000)).Int64()
}

// mockReport fabricates a plausible report for when the provider cannot be
// used. today and target are midnights in the same location. The output depends
// only on city and target, so repeated calls for the same day are identical.
func mockReport(city string, today, target time.Time) Report {
	date := target.Format(dateLayout)
	rng := rand.New(rand.NewSource(mockSeed(city, date)))

	pick := func(list []string) string { return list[rng.Intn(len(list))] }
	cast := func(day time.Time) amapCast {
		w := pick(mockWeatherTypes)
		return amapCast{
			Date:         day.Format(dateLayout),
			DayWeather:   w,
			NightWeather: pick(mockWeatherTypes),
			DayTemp:      fmt.Sprint(15 + rng.Intn(16)),
			NightTemp:    fmt.Sprint(10 + rng.Intn(11)),
			DayWind:      pick(mockWindDirections),
			NightWind:    pick(mockWindDirections),
			DayPower:     fmt.Sprintf("%d级", 1+rng.Intn(6)),
			NightPower:   fmt.Sprintf("%d级", 1+rng.Intn(6)),
		}
	}

	forecast := !target.Equal(today)
	if !forecast {
		c := cast(today)
		return Report{
			Success: true,
			Message: "模拟实时天气数据",
			Data: Data{
				City:          city,
				Date:          date,
				Weather:       c.DayWeather,
				Temperature:   c.DayTemp,
				WindDirection: c.DayWind,
				WindPower:     c.DayPower,
				Humidity:      fmt.Sprintf("%d%%", 30+rng.Intn(61)),
				ReportTime:    target.Format(reportTimeLayout),
				IsMock:        true,
			},
			RawAPIResponse: amapForecastRaw(city, []amapCast{c}),
		}
	}

	casts := make([]amapCast, 0, mockForecastDays)
	for i := 0; i < mockForecastDays; i++ {
		casts = append(casts, cast(today.AddDate(0, 0, i)))
	}

	data := Data{City: city, Date: date, IsForecast: true, IsMock: true}
	if idx := dayDelta(today, target); idx >= 0 && idx < len(casts) {
		c := casts[idx]
		data.Weather = c.DayWeather
		data.Temperature = c.NightTemp + "~" + c.DayTemp
		data.WindDirection = c.DayWind
		data.WindPower = c.DayPower
	} else {
		data.Weather = pick(mockWeatherTypes)
		data.Temperature = fmt.Sprintf("%d~%d", 10+rng.Intn(11), 15+rng.Intn(16))
		data.WindDirection = pick(mockWindDirections)
		data.WindPower = fmt.Sprintf("%d级", 1+rng.Intn(6))
	}

	return Report{
		Success:        true,
		Message:        "模拟天气预报数据",
		Data:           data,
		RawAPIResponse: amapForecastRaw(city, casts),
	}
}

func amapForecastRaw(city string, casts []amapCast) amapWeatherResponse {
	return amapWeatherResponse{
		Status:    "1",
		Info:      "OK",
		Forecasts: []amapForecast{{City: city, Casts: casts}},
	}
}
