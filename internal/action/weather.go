// In file: internal/action/weather.go
package action

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
	"github.com/chengwenxing-cmd/VoiceService/internal/lexicon"
)

const mockNotice = "（模拟数据）"

type weatherHandler struct {
	provider    WeatherProvider
	defaultCity string
	logger      *zap.Logger
}

// Handle resolves city and date (entities first, then the utterance, then
// the device location and the default city), queries the provider and
// phrases the answer.
func (h *weatherHandler) Handle(ctx context.Context, req Request) (Result, error) {
	in := req.Intent

	city := in.Entity(intent.EntityCity)
	if city == "" {
		city = lexicon.ResolveCity(in.Text(), req.DeviceCity, h.defaultCity)
	}
	city = lexicon.HanOnly(city)
	if len([]rune(city)) < 2 {
		city = h.defaultCity
	}

	date := in.Entity(intent.EntityDate)
	if date == "" {
		date = lexicon.ExtractDate(in.Text())
	}

	h.logger.Info("handling weather query",
		zap.String("city", city),
		zap.String("date", date),
		zap.String("session_id", req.SessionID))

	report := h.provider.GetWeather(ctx, city, date)
	if !report.Success {
		h.logger.Error("weather lookup failed", zap.String("city", city), zap.String("reason", report.Message))
		errMsg := report.Message
		if errMsg == "" {
			errMsg = "未知错误"
		}
		return Result{
			Status:  StatusError,
			Message: "获取" + city + "天气信息失败",
			Error:   errMsg,
			Code:    codeError,
		}, nil
	}

	dateDesc := date
	if lexicon.IsTodayPhrase(date) {
		dateDesc = lexicon.LabelToday
	}

	d := report.Data
	notice := ""
	if d.IsMock {
		notice = mockNotice
	}

	var b strings.Builder
	b.WriteString(city)
	if d.IsForecast {
		b.WriteString(dateDesc)
	} else {
		b.WriteString("当前")
	}
	b.WriteString("天气" + notice + "：" + d.Weather + "，温度" + d.Temperature + "°C")
	if d.WindDirection != "" && d.WindPower != "" {
		b.WriteString("，" + d.WindDirection + "风" + d.WindPower)
	}
	if d.Humidity != "" {
		b.WriteString("，湿度" + d.Humidity)
	}

	data := command("query_weather", map[string]any{"city": city, "date": dateDesc})
	data.Result = d
	return Result{
		Status:    StatusSuccess,
		QueryType: "weather",
		Message:   b.String(),
		Code:      codeOK,
		Data:      data,
	}, nil
}
