// In file: internal/lexicon/dates.go
package lexicon

import (
	"regexp"
	"strings"
	"time"
)

// Canonical date labels produced by ExtractDate. Every label parses back to
// the same offset through ParseDatePhrase.
const (
	LabelToday            = "今天"
	LabelTomorrow         = "明天"
	LabelDayAfterTomorrow = "后天"
	LabelThreeDaysLater   = "大后天"
)

var (
	todayPhrases    = []string{"", "今天", "今日", "当前", "现在", "today", "now"}
	tomorrowPhrases = []string{"明天", "明日", "tomorrow"}
	plusTwoPhrases  = []string{"后天", "day after tomorrow"}
	plusThreePhrase = []string{"大后天"}
)

// weekdayNames maps the trailing character of 周X / 星期X to a weekday.
var weekdayNames = map[string]time.Weekday{
	"一": time.Monday,
	"二": time.Tuesday,
	"三": time.Wednesday,
	"四": time.Thursday,
	"五": time.Friday,
	"六": time.Saturday,
	"日": time.Sunday,
	"天": time.Sunday,
}

var englishWeekdays = map[string]time.Weekday{
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
	"Sunday":    time.Sunday,
}

var cjkWeekdayRegex = regexp.MustCompile(`(?:周|星期)([一二三四五六日天])`)

// datePattern is one row of the ordered extraction table; the first matching
// row wins, so 大后天 must come before 后天.
type datePattern struct {
	re    *regexp.Regexp
	label string
}

var datePatterns = []datePattern{
	{regexp.MustCompile(`大后天`), LabelThreeDaysLater},
	{regexp.MustCompile(`今天|今日|当前|现在`), LabelToday},
	{regexp.MustCompile(`明天|明日`), LabelTomorrow},
	{regexp.MustCompile(`后天`), LabelDayAfterTomorrow},
	{regexp.MustCompile(`周一|星期一`), "周一"},
	{regexp.MustCompile(`周二|星期二`), "周二"},
	{regexp.MustCompile(`周三|星期三`), "周三"},
	{regexp.MustCompile(`周四|星期四`), "周四"},
	{regexp.MustCompile(`周五|星期五`), "周五"},
	{regexp.MustCompile(`周六|星期六`), "周六"},
	{regexp.MustCompile(`周日|周天|星期日|星期天`), "周日"},
}

// dateWords are tokens that must never be mistaken for a city name.
var dateWords = []string{
	"大后天", "今天", "明天", "后天", "当前", "今日", "明日", "现在",
	"周一", "周二", "周三", "周四", "周五", "周六", "周日", "周天",
	"星期一", "星期二", "星期三", "星期四", "星期五", "星期六", "星期日", "星期天",
}

// ParseDatePhrase resolves a relative date phrase against now and returns
// midnight of the resulting day in now's location.
//
// A named weekday always resolves to its next occurrence strictly after
// today. Anything outside the vocabulary resolves to today.
func ParseDatePhrase(phrase string, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	phrase = strings.TrimSpace(phrase)

	switch {
	case oneOf(phrase, todayPhrases):
		return today
	case oneOf(phrase, tomorrowPhrases):
		return today.AddDate(0, 0, 1)
	case oneOf(phrase, plusTwoPhrases):
		return today.AddDate(0, 0, 2)
	case oneOf(phrase, plusThreePhrase):
		return today.AddDate(0, 0, 3)
	}

	if wd, ok := weekdayOf(phrase); ok {
		return today.AddDate(0, 0, daysUntil(today.Weekday(), wd))
	}
	return today
}

// IsTodayPhrase reports whether phrase means "today" (including no phrase).
func IsTodayPhrase(phrase string) bool {
	return oneOf(strings.TrimSpace(phrase), todayPhrases)
}

// ExtractDate finds the first date phrase in text and returns its canonical
// label, or "" when text names no date.
func ExtractDate(text string) string {
	for _, p := range datePatterns {
		if p.re.MatchString(text) {
			return p.label
		}
	}
	return ""
}

func weekdayOf(phrase string) (time.Weekday, bool) {
	if m := cjkWeekdayRegex.FindStringSubmatch(phrase); m != nil {
		return weekdayNames[m[1]], true
	}
	for name, wd := range englishWeekdays {
		if strings.Contains(phrase, name) {
			return wd, true
		}
	}
	return 0, false
}

// daysUntil returns 1..7; a target equal to today rolls a full week.
func daysUntil(from, to time.Weekday) int {
	d := (int(to) - int(from) + 7) % 7
	if d == 0 {
		d = 7
	}
	return d
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
