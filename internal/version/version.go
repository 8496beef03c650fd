// In file: internal/version/version.go

// Package version centralizes the versions of the logical components whose
// output ends up in a cache.
//
// The intent cache stores classifications that were produced by the rule
// lexicons or by the LLM prompt. Both strings are part of every cache key, so
// bumping either one makes all previously cached intents unreachable and the
// strategy chain recomputes them.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComponentVersions holds the version strings for the cache-relevant parts of
// the service. Increment one before deploying a change to that component.
var ComponentVersions = struct {
	// Lexicon changes whenever the keyword tables, weather patterns or the
	// date and city extractors change what the rule strategy emits.
	Lexicon string

	// Prompt changes whenever the classification prompts or the mapping of
	// the model reply onto intents change.
	Prompt string

	// Schema changes whenever the serialized form of a cached intent changes.
	Schema string
}{
	Lexicon: "v1.0",
	Prompt:  "v1.0",
	Schema:  "v1",
}

// Fingerprint is the compact form of all component versions.
func Fingerprint() string {
	return fmt.Sprintf("lv%s_pv%s_s%s",
		ComponentVersions.Lexicon,
		ComponentVersions.Prompt,
		ComponentVersions.Schema,
	)
}

// GenerateVersionedCacheKey builds a stable, version-aware cache key for an
// utterance.
//
// Example output: "intent:9f86d0...:lvv1.0_pvv1.0_sv1"
func GenerateVersionedCacheKey(prefix, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s:%s:%s", prefix, hex.EncodeToString(sum[:]), Fingerprint())
}
