package domain

import (
	"regexp"
	"strings"
)

// Signals are the fields the military heuristic inspects.
type Signals struct {
	Callsign    string
	TypeCode    string
	Description string
	Category    string
}

// Classification holds the derived flags for one record.
type Classification struct {
	IsMilitary bool
	Loitering  bool
}

// Classifier applies the military, NATO, and loitering heuristics over its reference lists.
// The zero value is not usable; construct with NewClassifier.
type Classifier struct {
	prefixes []string
	types    []string
	keywords []string
	nato     []*regexp.Regexp
}

// NewClassifier builds a classifier from the built-in lists plus any extra callsign prefixes and
// type designators. Extras are trimmed and upper-cased; blanks are ignored.
func NewClassifier(extraPrefixes, extraTypes []string) *Classifier {
	c := &Classifier{
		prefixes: appendTokens(militaryCallsignPrefixes, extraPrefixes),
		types:    appendTokens(militaryTypeDesignators, extraTypes),
		keywords: militaryDescriptionKeywords,
		nato:     make([]*regexp.Regexp, 0, len(natoCallWords)),
	}
	for _, w := range natoCallWords {
		c.nato = append(c.nato, regexp.MustCompile(`(?i)^`+regexp.QuoteMeta(w)+`\d+`))
	}
	return c
}

// DefaultClassifier uses only the built-in lists.
var DefaultClassifier = NewClassifier(nil, nil)

func appendTokens(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	for _, e := range extra {
		if t := normalizeToken(e); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// IsMilitary reports whether any signal matches the military lists.
func (c *Classifier) IsMilitary(s Signals) bool {
	if cs := normalizeToken(s.Callsign); cs != "" {
		for _, p := range c.prefixes {
			if strings.HasPrefix(cs, p) {
				return true
			}
		}
	}
	if tc := strings.ToUpper(s.TypeCode); tc != "" {
		for _, t := range c.types {
			if strings.Contains(tc, t) {
				return true
			}
		}
	}
	if desc := strings.ToUpper(s.Description); desc != "" {
		for _, k := range c.keywords {
			if strings.Contains(desc, k) {
				return true
			}
		}
	}
	return s.Category == militaryCategory
}

// IsNATOCallsign reports whether the trimmed callsign is a known call word followed by digits.
func (c *Classifier) IsNATOCallsign(callsign string) bool {
	cs := strings.TrimSpace(callsign)
	if cs == "" {
		return false
	}
	for _, re := range c.nato {
		if re.MatchString(cs) {
			return true
		}
	}
	return false
}

// IsLoitering reports a present ground speed strictly between 0 and 150 knots.
func IsLoitering(gs *float64) bool {
	return gs != nil && *gs > 0 && *gs < loiterMaxKnots
}

// Classify derives flags for a record. An existing military flag is kept.
func (c *Classifier) Classify(a *Aircraft) Classification {
	return Classification{
		IsMilitary: a.IsMilitary || c.IsNATOCallsign(a.Callsign),
		Loitering:  IsLoitering(a.GroundSpeed),
	}
}

// SignalsOf extracts classifier inputs from a normalized record.
func SignalsOf(a *Aircraft) Signals {
	return Signals{
		Callsign:    a.Callsign,
		TypeCode:    a.TypeCode,
		Description: a.Description,
		Category:    a.Category,
	}
}

// KeepForNATOFilter reports whether a record survives the NATO-only filter.
func (c *Classifier) KeepForNATOFilter(a *Aircraft) bool {
	return a.IsMilitary || c.IsNATOCallsign(a.Callsign)
}
