// In file: internal/lexicon/entities.go
package lexicon

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// majorCities covers the municipalities, provincial capitals and a few large
// cities users ask about most often.
var majorCities = []string{
	"北京", "上海", "广州", "深圳", "杭州", "南京", "武汉", "西安", "成都", "重庆",
	"天津", "长沙", "苏州", "厦门", "哈尔滨", "大连", "青岛", "济南", "郑州", "长春",
	"沈阳", "南宁", "昆明", "贵阳", "太原", "石家庄", "乌鲁木齐", "兰州", "西宁", "银川",
	"呼和浩特", "拉萨", "南昌", "合肥", "福州", "台北", "海口", "三亚",
}

var cityWeatherRegex = regexp.MustCompile(`(\p{Han}{2,6})(的天气|天气)`)

// fillerPrefixes are request phrasings that the greedy city pattern tends to
// swallow in front of the city name.
var fillerPrefixes = []string{
	"我想知道", "告诉我", "帮我查", "查一下", "请问", "帮我", "查询", "查看", "知道", "看看",
}

var fillerSuffixes = []string{"的"}

func init() {
	// Longest first so 大后天 is stripped before 后天, 我想知道 before 知道.
	byLenDesc := func(s []string) {
		sort.SliceStable(s, func(i, j int) bool {
			return utf8.RuneCountInString(s[i]) > utf8.RuneCountInString(s[j])
		})
	}
	byLenDesc(dateWords)
	byLenDesc(fillerPrefixes)
}

// MajorCities returns the built-in city list.
func MajorCities() []string { return clone(majorCities) }

// ExtractCity is the single city extractor used both by the rule strategy and
// by the weather result handler.
//
// It first looks for a known city anywhere in text (earliest occurrence wins,
// longer names win ties). Failing that, it takes the 2-6 Han characters in
// front of 天气 / 的天气, strips date words and request fillers from both
// ends, and accepts what remains if it still has at least two characters.
func ExtractCity(text string) string {
	if city := findKnownCity(text); city != "" {
		return city
	}

	m := cityWeatherRegex.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	candidate := trimNoise(m[1])
	if utf8.RuneCountInString(candidate) < 2 || isDateWord(candidate) {
		return ""
	}
	return candidate
}

// ResolveCity returns ExtractCity(text) or, when nothing is found, the first
// non-empty fallback.
func ResolveCity(text string, fallbacks ...string) string {
	if city := ExtractCity(text); city != "" {
		return city
	}
	for _, f := range fallbacks {
		if f = strings.TrimSpace(f); f != "" {
			return f
		}
	}
	return ""
}

// HanOnly strips every rune that is not a Han character.
func HanOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func findKnownCity(text string) string {
	best, bestPos := "", -1
	for _, city := range majorCities {
		pos := strings.Index(text, city)
		if pos < 0 {
			continue
		}
		if bestPos < 0 || pos < bestPos || (pos == bestPos && len(city) > len(best)) {
			best, bestPos = city, pos
		}
	}
	return best
}

// trimNoise repeatedly strips date words and fillers from both ends.
func trimNoise(s string) string {
	for {
		before := s
		for _, w := range dateWords {
			s = strings.TrimPrefix(s, w)
			s = strings.TrimSuffix(s, w)
		}
		for _, w := range fillerPrefixes {
			s = strings.TrimPrefix(s, w)
		}
		for _, w := range fillerSuffixes {
			s = strings.TrimSuffix(s, w)
		}
		if s == before {
			return s
		}
	}
}

func isDateWord(s string) bool {
	for _, w := range dateWords {
		if s == w {
			return true
		}
	}
	return false
}
