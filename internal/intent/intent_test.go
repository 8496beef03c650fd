package intent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"QUERY_WEATHER", QueryWeather},
		{"  query_weather ", QueryWeather},
		{"chat", Chat},
		{"control_device", ControlDevice},
		{"STARTRECORDING", StartRecording},
		{"模拟意图", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseType(tt.in))
		})
	}
}

func TestNewIsImmutable(t *testing.T) {
	entities := map[string]any{"city": "北京"}
	in := New(QueryWeather, 0.9, "北京天气", entities)

	entities["city"] = "上海"
	assert.Equal(t, "北京", in.Entity("city"))

	got := in.Entities()
	got["city"] = "广州"
	assert.Equal(t, "北京", in.Entity("city"))
}

func TestNewClampsConfidence(t *testing.T) {
	assert.Equal(t, 1.0, New(Chat, 1.7, "", nil).Confidence())
	assert.Equal(t, 0.0, New(Chat, -0.2, "", nil).Confidence())
	assert.Equal(t, Unknown, New("", 0.5, "", nil).Type())
}

func TestIntentJSONRoundTrip(t *testing.T) {
	in := New(StartRecording, 0.95, "开始录音", map[string]any{"operation": "开始", "target": "录音"})

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Intent
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, StartRecording, out.Type())
	assert.InDelta(t, 0.95, out.Confidence(), 1e-9)
	assert.Equal(t, "开始录音", out.Text())
	assert.Equal(t, "录音", out.Entity("target"))
}

func TestEntityRendersNonStrings(t *testing.T) {
	in := New(SetReminder, 0.8, "", map[string]any{"minutes": 15, "none": nil})
	assert.Equal(t, "15", in.Entity("minutes"))
	assert.Equal(t, "", in.Entity("none"))
	assert.Equal(t, "", in.Entity("missing"))
}
