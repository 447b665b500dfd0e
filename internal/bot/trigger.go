package bot

import (
	"regexp"
	"strings"
)

// Trigger matches message text. A keyword trigger matches when the whole
// text equals the keyword ignoring case; a pattern trigger matches when the
// regular expression matches anywhere in the text.
type Trigger struct {
	keyword string
	pattern *regexp.Regexp
}

// Keyword creates a case-insensitive whole-text trigger.
func Keyword(keyword string) Trigger {
	return Trigger{keyword: keyword}
}

// Pattern creates a regular expression trigger. Panics if expr does not
// compile, so patterns belong in package-level declarations.
// Use the (?i) flag for case-insensitive matching.
func Pattern(expr string) Trigger {
	return Trigger{pattern: regexp.MustCompile(expr)}
}

// Match reports whether text fires the trigger.
func (t Trigger) Match(text string) bool {
	if t.pattern != nil {
		return t.pattern.MatchString(text)
	}
	return t.keyword != "" && strings.EqualFold(text, t.keyword)
}

// String renders the trigger for logs: the keyword, or /pattern/.
func (t Trigger) String() string {
	if t.pattern != nil {
		return "/" + t.pattern.String() + "/"
	}
	return t.keyword
}

// FirstMatch returns the first trigger that matches text.
func FirstMatch(triggers []Trigger, text string) (Trigger, bool) {
	for _, t := range triggers {
		if t.Match(text) {
			return t, true
		}
	}
	return Trigger{}, false
}

// MatchAny reports whether any trigger matches text.
func MatchAny(triggers []Trigger, text string) bool {
	_, ok := FirstMatch(triggers, text)
	return ok
}
