package validation

import (
	"net/url"
	"strings"
	"time"
)

// Violations maps field name to a message code. The first failing rule per
// field wins; codes double as translation keys.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func MinLen(field, value string, n int, v Violations) {
	if len(value) < n {
		v[field] = "too_short"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

// URL requires an absolute http(s) URL.
func URL(field, value string, v Violations) {
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		v[field] = "invalid_url"
	}
}

// DateTime requires one of the formats the scheduling form produces.
func DateTime(field, value string, v Violations) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if _, err := time.Parse(layout, value); err == nil {
			return
		}
	}
	v[field] = "invalid_date"
}
