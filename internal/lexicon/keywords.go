// In file: internal/lexicon/keywords.go

// Package lexicon holds the static word lists and patterns the rule-based
// recognizer and the weather flow rely on, together with the deterministic
// helpers built on them: relative-date resolution and city/date extraction.
//
// Everything here is read-only after package initialization. Callers that need
// a list get a copy.
package lexicon

import (
	"regexp"
	"strings"
)

var (
	recordingKeywords = []string{"录音", "record", "recording", "语音记录", "语音备忘录"}

	questionWords = []string{"为什么", "怎么", "为何", "是不是", "难道", "吗", "呢", "?", "？"}

	// Command verbs (开始/停止/继续) are deliberately absent: they are what the
	// simple recording rules key on.
	sentimentWords = []string{"不应该", "应该", "不要", "要", "别"}

	recordingStartMarkers = []string{"开始", "录", "start", "record"}
	recordingStopMarkers  = []string{"停", "结束", "完成", "stop", "end", "finish"}
)

// Weather-query pattern family. The second pattern alone matches any mention
// of 天气; the others are kept so the family documents the phrasing it covers.
var weatherPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(今天|明天|后天|周[一二三四五六日天]|星期[一二三四五六日天]|\p{Han}{2,6})(的)?天气(怎么样|如何|预报|情况)?`),
	regexp.MustCompile(`天气(怎么样|如何|预报|情况)?`),
	regexp.MustCompile(`(查询|查看|知道)(今天|明天|后天|周[一二三四五六日天]|星期[一二三四五六日天]|\p{Han}{2,6})?(的)?天气`),
	regexp.MustCompile(`(?i)\b(weather|forecast)\b`),
}

// RecordingKeywords returns the recording lexicon.
func RecordingKeywords() []string { return clone(recordingKeywords) }

// QuestionWords returns the question-marker lexicon.
func QuestionWords() []string { return clone(questionWords) }

// SentimentWords returns the sentiment-marker lexicon.
func SentimentWords() []string { return clone(sentimentWords) }

// HasRecordingKeyword reports whether text mentions recording.
func HasRecordingKeyword(text string) bool { return containsAny(text, recordingKeywords) }

// HasQuestionWord reports whether text carries a question marker.
func HasQuestionWord(text string) bool { return containsAny(text, questionWords) }

// HasSentimentWord reports whether text carries a sentiment / modal marker.
func HasSentimentWord(text string) bool { return containsAny(text, sentimentWords) }

// HasRecordingStart reports whether text asks to start a recording.
func HasRecordingStart(text string) bool { return containsAny(text, recordingStartMarkers) }

// HasRecordingStop reports whether text asks to stop a recording.
func HasRecordingStop(text string) bool { return containsAny(text, recordingStopMarkers) }

// IsWeatherQuery reports whether any weather pattern matches text.
func IsWeatherQuery(text string) bool {
	for _, p := range weatherPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// containsAny matches case-insensitively for ASCII words; CJK text is
// unaffected by lowering.
func containsAny(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
