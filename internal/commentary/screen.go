package commentary

import "regexp"

// Best-effort input screening. This is pattern matching, not a security
// boundary: anything that slips through still hits a system prompt that
// refuses to change behavior.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(previous|all|your)\s+instructions?`),
	regexp.MustCompile(`(?i)system\s+prompt`),
	regexp.MustCompile(`(?i)you\s+are\s+now`),
	regexp.MustCompile(`(?i)new\s+instructions?:`),
	regexp.MustCompile(`(?i)<\s*system\s*>`),
	regexp.MustCompile(`(?i)forget\s+(everything|all|previous)`),
}

func isSuspiciousInput(text string) bool {
	for _, p := range suspiciousPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Terms a hint must never contain: each one leaks strategy beyond the
// bare piece name.
var forbiddenHintTerms = []string{
	"develop", "control", "center", "advance", "castle", "attack",
	"defend", "capture", "threaten", "pressure", "dominate", "position",
	"strategic", "tactical", "roam", "shift", "slide",
}
