package action

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chengwenxing-cmd/VoiceService/internal/apperrors"
	"github.com/chengwenxing-cmd/VoiceService/internal/dialogue"
	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
	"github.com/chengwenxing-cmd/VoiceService/internal/llm"
	"github.com/chengwenxing-cmd/VoiceService/internal/weather"
)

type stubClassifier struct {
	cls   llm.Classification
	calls int
	info  map[string]any
}

func (s *stubClassifier) ClassifyIntent(_ context.Context, _ string, info map[string]any, _ []dialogue.Message) llm.Classification {
	s.calls++
	s.info = info
	return s.cls
}

type stubWeather struct {
	report     weather.Report
	city, date string
}

func (s *stubWeather) GetWeather(_ context.Context, city, date string) weather.Report {
	s.city, s.date = city, date
	return s.report
}

func request(t intent.Type, text string, entities map[string]any) Request {
	in := intent.New(t, 0.95, text, entities)
	return Request{SessionID: "s1", Intent: in, Action: intent.MapAction(in)}
}

func TestSimpleHandlers(t *testing.T) {
	r := NewRegistry(Deps{}, zaptest.NewLogger(t))

	tests := []struct {
		name    string
		req     Request
		status  string
		message string
		command string
	}{
		{"chat", request(intent.Chat, "你好", nil), "chat", ChatReply, "chat_reply"},
		{"start recording", request(intent.StartRecording, "开始录音", nil), "started", "录音已开始", "start_recording"},
		{"stop recording", request(intent.StopRecording, "停止录音", nil), "stopped", "录音已停止", "stop_recording"},
		{"play", request(intent.PlayMusic, "放首歌", nil), "playing", "正在播放音乐", "play_media"},
		{"pause", request(intent.PauseMusic, "暂停", nil), "paused", "音乐已暂停", "pause_media"},
		{"device on", request(intent.ControlDeviceOn, "打开空调", map[string]any{"target": "空调"}), "on", "空调已开启", "device_on"},
		{"device off", request(intent.ControlDeviceOff, "关掉", nil), "off", "设备已关闭", "device_off"},
		{"time", request(intent.QueryTime, "几点了", nil), StatusSuccess, "查询成功", "query_time"},
		{"generic", request(intent.SetReminder, "提醒我开会", nil), StatusSuccess, "已执行reminder_operation操作", "generic_action"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Generate(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, 200, res.Code)
			require.NotNil(t, res.Data)
			assert.Equal(t, tt.command, res.Data.Command)
			assert.NotNil(t, res.Data.Params)
		})
	}
}

func TestRecordingIDIsStable(t *testing.T) {
	r := NewRegistry(Deps{}, nil)

	start, err := r.Generate(context.Background(), request(intent.StartRecording, "开始录音", nil))
	require.NoError(t, err)
	again, err := r.Generate(context.Background(), request(intent.StartRecording, "开始录音", nil))
	require.NoError(t, err)
	assert.Equal(t, start.RecordingID, again.RecordingID)
	assert.Regexp(t, `^rec_\d{1,4}$`, start.RecordingID)

	stop, err := r.Generate(context.Background(), request(intent.StopRecording, "停止录音", nil))
	require.NoError(t, err)
	assert.Equal(t, 120, stop.Duration)
}

func TestUnknownUsesModelReply(t *testing.T) {
	cls := &stubClassifier{cls: llm.Classification{Success: true, Data: llm.ClassificationData{Reply: "您是想听音乐吗？"}}}
	r := NewRegistry(Deps{Classifier: cls}, zaptest.NewLogger(t))

	res, err := r.Generate(context.Background(), request(intent.Unknown, "那个东西", nil))
	require.NoError(t, err)
	assert.Equal(t, "unknown_intent", res.Status)
	assert.Equal(t, "您是想听音乐吗？", res.Message)
	assert.Equal(t, "chat_reply", res.Data.Command)
	assert.Equal(t, map[string]any{"session_id": "s1", "intent_type": "UNKNOWN"}, cls.info)
}

func TestUnknownFallsBackToClarification(t *testing.T) {
	for name, deps := range map[string]Deps{
		"no classifier": {},
		"failed call":   {Classifier: &stubClassifier{cls: llm.Classification{Success: false, Data: llm.ClassificationData{Reply: llm.FallbackReply}}}},
		"empty reply":   {Classifier: &stubClassifier{cls: llm.Classification{Success: true}}},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := NewRegistry(deps, nil).Generate(context.Background(), request(intent.Unknown, "嗯？", nil))
			require.NoError(t, err)
			assert.Equal(t, ClarifyReply, res.Message)
		})
	}
}

func TestWeatherForecastMessage(t *testing.T) {
	provider := &stubWeather{report: weather.Report{
		Success: true,
		Data: weather.Data{
			City: "北京", Date: "2025-06-11", Weather: "晴", Temperature: "18~30",
			WindDirection: "南", WindPower: "1-3", IsForecast: true,
		},
	}}
	r := NewRegistry(Deps{Weather: provider}, zaptest.NewLogger(t))

	res, err := r.Generate(context.Background(), request(intent.QueryWeather, "北京明天天气怎么样",
		map[string]any{"city": "北京", "date": "明天"}))
	require.NoError(t, err)

	assert.Equal(t, "北京", provider.city)
	assert.Equal(t, "明天", provider.date)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "weather", res.QueryType)
	assert.Equal(t, "北京明天天气：晴，温度18~30°C，南风1-3", res.Message)
	assert.Equal(t, "query_weather", res.Data.Command)
	assert.Equal(t, map[string]any{"city": "北京", "date": "明天"}, res.Data.Params)
	assert.Equal(t, provider.report.Data, res.Data.Result)
}

func TestWeatherLiveMockMessage(t *testing.T) {
	provider := &stubWeather{report: weather.Report{
		Success: true,
		Data: weather.Data{
			City: "上海", Weather: "多云", Temperature: "25",
			WindDirection: "东", WindPower: "3级", Humidity: "50%", IsMock: true,
		},
	}}
	r := NewRegistry(Deps{Weather: provider}, nil)

	res, err := r.Generate(context.Background(), request(intent.QueryWeather, "上海天气", nil))
	require.NoError(t, err)
	assert.Equal(t, "上海", provider.city)
	assert.Equal(t, "", provider.date)
	assert.Equal(t, "上海当前天气（模拟数据）：多云，温度25°C，东风3级，湿度50%", res.Message)
	assert.Equal(t, "今天", res.Data.Params["date"])
}

func TestWeatherCityFallbacks(t *testing.T) {
	provider := &stubWeather{report: weather.Report{Success: true}}

	r := NewRegistry(Deps{Weather: provider, DefaultCity: "广州"}, nil)
	req := request(intent.QueryWeather, "明天天气怎么样", nil)

	_, err := r.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "广州", provider.city)
	assert.Equal(t, "明天", provider.date)

	req.DeviceCity = "杭州"
	_, err = r.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "杭州", provider.city)
}

func TestWeatherFailure(t *testing.T) {
	provider := &stubWeather{report: weather.Report{Success: false, Message: "超出天气预报范围"}}
	r := NewRegistry(Deps{Weather: provider}, nil)

	res, err := r.Generate(context.Background(), request(intent.QueryWeather, "成都天气", map[string]any{"city": "成都"}))
	require.NoError(t, err)
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, 500, res.Code)
	assert.Equal(t, "获取成都天气信息失败", res.Message)
	assert.Equal(t, "超出天气预报范围", res.Error)
}

func TestWeatherWithoutProviderUsesMockData(t *testing.T) {
	r := NewRegistry(Deps{}, zaptest.NewLogger(t))

	res, err := r.Generate(context.Background(),
		request(intent.QueryWeather, "北京明天天气", map[string]any{"city": "北京", "date": "明天"}))
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "query_weather", res.Data.Command)
	assert.Contains(t, res.Message, "北京明天天气（模拟数据）：")
	assert.NotContains(t, res.Message, "已执行")
}

func TestGenerateErrors(t *testing.T) {
	r := NewRegistry(Deps{}, zaptest.NewLogger(t))

	_, err := r.Generate(context.Background(), Request{})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeResultGeneration))

	r.Register(intent.Chat, HandlerFunc(func(context.Context, Request) (Result, error) {
		return Result{}, errors.New("boom")
	}))
	_, err = r.Generate(context.Background(), request(intent.Chat, "你好", nil))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeResultGeneration))

	r.Register(intent.Chat, HandlerFunc(func(context.Context, Request) (Result, error) {
		panic("nil map")
	}))
	_, err = r.Generate(context.Background(), request(intent.Chat, "你好", nil))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeResultGeneration))
}
