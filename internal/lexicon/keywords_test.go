package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordingMarkers(t *testing.T) {
	assert.True(t, HasRecordingKeyword("开始录音"))
	assert.True(t, HasRecordingKeyword("Start Recording"))
	assert.False(t, HasRecordingKeyword("播放音乐"))

	assert.True(t, HasRecordingStart("开始录音"))
	assert.True(t, HasRecordingStop("停止录音"))
	assert.True(t, HasRecordingStop("结束录音"))
	assert.False(t, HasRecordingStop("开始录音"))

	assert.True(t, HasQuestionWord("为什么要录音"))
	assert.True(t, HasQuestionWord("录音了吗"))
	assert.True(t, HasSentimentWord("别录音"))
	assert.False(t, HasSentimentWord("开始录音"))
}

func TestIsWeatherQuery(t *testing.T) {
	for _, text := range []string{"北京明天天气怎么样", "天气预报", "查询上海的天气", "what's the weather"} {
		assert.True(t, IsWeatherQuery(text), text)
	}
	for _, text := range []string{"开始录音", "打开空调", "weathering"} {
		assert.False(t, IsWeatherQuery(text), text)
	}
}

func TestLexiconAccessorsReturnCopies(t *testing.T) {
	words := RecordingKeywords()
	words[0] = "x"
	assert.Equal(t, "录音", RecordingKeywords()[0])
	assert.NotEmpty(t, QuestionWords())
	assert.NotEmpty(t, SentimentWords())
}
