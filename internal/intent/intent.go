// In file: internal/intent/intent.go

// Package intent defines the core value types of the recognition pipeline:
// the closed set of intent types, the immutable Intent value produced by the
// recognition strategies, and the Action derived from it.
package intent

import (
	"encoding/json"
	"strings"
)

// Type is the classified user goal. The set is closed; anything that does not
// parse into one of these constants is UNKNOWN.
type Type string

const (
	// Coarse groups, kept for LLM replies that only name a category.
	ControlDevice    Type = "CONTROL_DEVICE"
	QueryInfo        Type = "QUERY_INFO"
	MediaControl     Type = "MEDIA_CONTROL"
	RecordingControl Type = "RECORDING_CONTROL"
	ReminderSet      Type = "REMINDER_SET"

	Chat    Type = "CHAT"
	Unknown Type = "UNKNOWN"

	ControlDeviceOn  Type = "CONTROL_DEVICE_ON"
	ControlDeviceOff Type = "CONTROL_DEVICE_OFF"
	QueryWeather     Type = "QUERY_WEATHER"
	QueryTime        Type = "QUERY_TIME"
	PlayMusic        Type = "PLAY_MUSIC"
	PauseMusic       Type = "PAUSE_MUSIC"
	StartRecording   Type = "STARTRECORDING"
	StopRecording    Type = "STOPRECORDING"
	SetReminder      Type = "SET_REMINDER"
)

var allTypes = []Type{
	ControlDevice, QueryInfo, MediaControl, RecordingControl, ReminderSet,
	Chat, Unknown,
	ControlDeviceOn, ControlDeviceOff, QueryWeather, QueryTime,
	PlayMusic, PauseMusic, StartRecording, StopRecording, SetReminder,
}

// Types returns every known intent type. The slice is a fresh copy.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// ParseType converts a free-form string (typically an LLM reply) into a Type.
// Matching ignores case and surrounding whitespace, so legacy lowercase names
// such as "chat" or "control_device" resolve as well.
func ParseType(s string) Type {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for _, t := range allTypes {
		if string(t) == normalized {
			return t
		}
	}
	return Unknown
}

// String implements fmt.Stringer.
func (t Type) String() string { return string(t) }

// Intent is an immutable classification result. It is created by a
// recognition strategy through New and never mutated afterwards; accessors
// hand out copies of the entity map.
type Intent struct {
	typ        Type
	confidence float64
	text       string
	entities   map[string]any
}

// New builds an Intent. Confidence is clamped into [0, 1] and the entity map
// is copied, so later changes to the caller's map are not observed.
func New(t Type, confidence float64, text string, entities map[string]any) *Intent {
	if t == "" {
		t = Unknown
	}
	return &Intent{
		typ:        t,
		confidence: clamp(confidence),
		text:       text,
		entities:   copyEntities(entities),
	}
}

func (i *Intent) Type() Type { return i.typ }

func (i *Intent) Confidence() float64 { return i.confidence }

func (i *Intent) Text() string { return i.text }

func (i *Intent) Entities() map[string]any { return copyEntities(i.entities) }

// Entity returns a single entity rendered as a string, or "" when it is absent.
func (i *Intent) Entity(key string) string {
	v, ok := i.entities[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.Trim(string(b), `"`)
}

// intentJSON is the persisted / wire form of an Intent.
type intentJSON struct {
	Type       Type           `json:"type"`
	Confidence float64        `json:"confidence"`
	Text       string         `json:"text"`
	Entities   map[string]any `json:"entities"`
}

// MarshalJSON implements json.Marshaler.
func (i *Intent) MarshalJSON() ([]byte, error) {
	return json.Marshal(intentJSON{
		Type:       i.typ,
		Confidence: i.confidence,
		Text:       i.text,
		Entities:   i.Entities(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. It is only meant for decoding
// freshly allocated values (cache hits, seed files).
func (i *Intent) UnmarshalJSON(data []byte) error {
	var raw intentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = *New(ParseType(string(raw.Type)), raw.Confidence, raw.Text, raw.Entities)
	return nil
}

func clamp(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

func copyEntities(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
