package console

import (
	"regexp"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// FieldErrors maps field names to a single human message each.
type FieldErrors map[string]string

func (e FieldErrors) Empty() bool { return len(e) == 0 }

// First returns the message for the first field in spec order, for
// surfaces that can only show one error at a time.
func (e FieldErrors) First(spec FormSpec) string {
	for _, f := range spec.Fields {
		if msg, okm := e[f.Name]; okm {
			return msg
		}
	}
	for _, msg := range e {
		return msg
	}
	return ""
}

var (
	patternMu    sync.Mutex
	patternCache = map[string]*regexp.Regexp{}
)

func compiledPattern(pattern string) *regexp.Regexp {
	patternMu.Lock()
	defer patternMu.Unlock()
	if re, okre := patternCache[pattern]; okre {
		return re
	}
	re := regexp.MustCompile(pattern)
	patternCache[pattern] = re
	return re
}

// Validate checks values against the spec and returns errors keyed by
// field name. An empty result means the form may be submitted.
func Validate(spec FormSpec, values Values) FieldErrors {
	errs := FieldErrors{}
	for _, f := range spec.Fields {
		v, present := values[f.Name]
		switch f.Kind {
		case KindCheckbox:
			// absent means unchecked, never an error
		case KindImages:
			if f.Required && imageCount(v) == 0 {
				errs[f.Name] = "Required"
			}
		case KindSelect:
			if f.Required && cast.ToInt64(v) == 0 {
				errs[f.Name] = "Required"
			}
		case KindDecimal:
			s := strings.TrimSpace(cast.ToString(v))
			if s == "" {
				if f.Required {
					errs[f.Name] = "Required"
				}
				continue
			}
			d, err := decimal.NewFromString(s)
			if err != nil {
				errs[f.Name] = "Must be a number"
				continue
			}
			if f.Required && d.LessThanOrEqual(decimal.Zero) {
				errs[f.Name] = "Must be greater than 0"
			}
		default:
			s := strings.TrimSpace(cast.ToString(v))
			if f.Required && (!present || s == "") {
				errs[f.Name] = "Required"
				continue
			}
			if s != "" && f.Pattern != "" && !compiledPattern(f.Pattern).MatchString(s) {
				msg := f.PatternMsg
				if msg == "" {
					msg = "Invalid value"
				}
				errs[f.Name] = msg
			}
		}
	}
	return errs
}

func imageCount(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case string:
		if strings.TrimSpace(t) == "" {
			return 0
		}
		return 1
	case []string:
		return len(t)
	case []any:
		return len(t)
	default:
		if s := cast.ToString(v); strings.TrimSpace(s) != "" {
			return 1
		}
		return 0
	}
}
