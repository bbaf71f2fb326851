package mapper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// English and German hour spellings: "2h", "2 hr", "2 hours", "2 Stunden".
	hourPattern = regexp.MustCompile(`(\d+)\s*(?:h(?:ours?|r)?|stunden?)`)
	// Minute spellings: "30m", "30 min", "30 minutes", "30 Minuten".
	minutePattern = regexp.MustCompile(`(\d+)\s*m(?:in(?:ute[ns]?)?)?`)
	barePattern   = regexp.MustCompile(`^\d+$`)
)

// ISODuration converts a freeform time string into an ISO-8601 duration
// where it can. Values already in ISO form pass through uppercased, bare
// numbers are read as minutes, and strings with no recognisable units are
// passed through verbatim for the target to display as-is. Empty input
// yields empty output, never "PT0H0M".
func ISODuration(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "pt") {
		return strings.ToUpper(lower)
	}

	hours, minutes := 0, 0
	matched := false
	if m := hourPattern.FindStringSubmatch(lower); m != nil {
		hours, _ = strconv.Atoi(m[1])
		matched = true
	}
	if m := minutePattern.FindStringSubmatch(lower); m != nil {
		minutes, _ = strconv.Atoi(m[1])
		matched = true
	}
	if !matched {
		if !barePattern.MatchString(lower) {
			return value
		}
		minutes, _ = strconv.Atoi(lower)
	}
	if hours == 0 && minutes == 0 {
		return value
	}

	var b strings.Builder
	b.WriteString("PT")
	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}
	return b.String()
}
