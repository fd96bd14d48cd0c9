package prefs

import (
	"strconv"
	"strings"
	"sync"

	"github.com/segacore/mdcore/curated"
)

// Bool is a persisted boolean setting.
type Bool struct {
	mu sync.Mutex
	v  bool
}

func (b *Bool) Get() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.v
}

func (b *Bool) Set(v interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch t := v.(type) {
	case bool:
		b.v = t
	case string:
		parsed, err := strconv.ParseBool(t)
		if err != nil {
			return curated.Errorf("prefs: %q is not a valid bool: %v", t, err)
		}
		b.v = parsed
	default:
		return curated.Errorf("prefs: unsupported type for Bool.Set: %T", v)
	}
	return nil
}

func (b *Bool) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strconv.FormatBool(b.v)
}

// String is a persisted string setting, optionally capped to a maximum
// length via SetMaxLen.
type String struct {
	mu     sync.Mutex
	v      string
	maxLen int
}

func (s *String) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v
}

func (s *String) Set(v interface{}) error {
	t, ok := v.(string)
	if !ok {
		return curated.Errorf("prefs: unsupported type for String.Set: %T", v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v = t
	s.crop()
	return nil
}

// SetMaxLen caps String to at most n characters, cropping the current
// value immediately. A zero n removes the cap without restoring a
// previously cropped value.
func (s *String) SetMaxLen(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxLen = n
	s.crop()
}

func (s *String) crop() {
	if s.maxLen > 0 && len(s.v) > s.maxLen {
		s.v = s.v[:s.maxLen]
	}
}

func (s *String) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v
}

// Int is a persisted integer setting.
type Int struct {
	mu sync.Mutex
	v  int
}

func (i *Int) Get() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.v
}

func (i *Int) Set(v interface{}) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	switch t := v.(type) {
	case int:
		i.v = t
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return curated.Errorf("prefs: %q is not a valid int: %v", t, err)
		}
		i.v = parsed
	default:
		return curated.Errorf("prefs: unsupported type for Int.Set: %T", v)
	}
	return nil
}

func (i *Int) String() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return strconv.Itoa(i.v)
}

// Float is a persisted float64 setting.
type Float struct {
	mu sync.Mutex
	v  float64
}

func (f *Float) Get() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.v
}

func (f *Float) Set(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch t := v.(type) {
	case float64:
		f.v = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return curated.Errorf("prefs: %q is not a valid float: %v", t, err)
		}
		f.v = parsed
	default:
		return curated.Errorf("prefs: unsupported type for Float.Set: %T", v)
	}
	return nil
}

func (f *Float) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strconv.FormatFloat(f.v, 'f', -1, 64)
}

// Generic wraps a pair of caller-supplied set/get closures as a Value,
// for settings that live as fields elsewhere rather than inside the
// Value itself (spec.md §6 window geometry is the prototypical case on
// the teacher's side). Settings does not use it: every Settings field is
// a plain String, Int or Bool value.
type Generic struct {
	set func(interface{}) error
	get func() string
}

// NewGeneric builds a Generic Value from a setter and a stringifying
// getter.
func NewGeneric(set func(interface{}) error, get func() string) *Generic {
	return &Generic{set: set, get: get}
}

func (g *Generic) Set(v interface{}) error { return g.set(v) }
func (g *Generic) String() string          { return g.get() }
