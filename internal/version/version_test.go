package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateVersionedCacheKey(t *testing.T) {
	a := GenerateVersionedCacheKey("intent", "开始录音")
	b := GenerateVersionedCacheKey("intent", "开始录音")
	c := GenerateVersionedCacheKey("intent", "停止录音")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "intent:"))
	assert.True(t, strings.HasSuffix(a, ":"+Fingerprint()))
	assert.Len(t, strings.Split(a, ":")[1], 64)
}

func TestVersionBumpChangesKey(t *testing.T) {
	before := GenerateVersionedCacheKey("intent", "北京明天天气怎么样")

	saved := ComponentVersions.Lexicon
	ComponentVersions.Lexicon = "v9.9"
	defer func() { ComponentVersions.Lexicon = saved }()

	assert.NotEqual(t, before, GenerateVersionedCacheKey("intent", "北京明天天气怎么样"))
}
