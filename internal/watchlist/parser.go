// Package watchlist parses broker-exported .ebk watchlist files into the
// ticker format the quote provider understands.
package watchlist

import (
	"regexp"
	"strings"
)

var (
	usTicker = regexp.MustCompile(`^[A-Z\.]+$`)
	hkTicker = regexp.MustCompile(`^\d{5}$`)
	jpTicker = regexp.MustCompile(`^\d{4}$`)
)

// Parse extracts ticker symbols from .ebk content, one entry per line:
// `31#SYM` for US stocks (common export suffixes stripped), `74#00700` for
// Hong Kong (-> 0700.HK) and `JP#7203` for Japan (-> 7203.T). Unrecognized
// lines are skipped and duplicates removed, preserving first-seen order.
func Parse(content string) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(sym string) {
		if _, dup := seen[sym]; dup {
			return
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "31#"):
			sym := strings.TrimPrefix(line, "31#")
			sym = strings.TrimSuffix(sym, "main")
			sym = strings.TrimSuffix(sym, "Q")
			if sym != "" && len(sym) <= 5 && usTicker.MatchString(sym) {
				add(sym)
			}
		case strings.HasPrefix(line, "74#"):
			sym := strings.TrimPrefix(line, "74#")
			if hkTicker.MatchString(sym) {
				add(sym[1:] + ".HK")
			}
		case strings.HasPrefix(line, "JP#"):
			sym := strings.TrimPrefix(line, "JP#")
			if jpTicker.MatchString(sym) {
				add(sym + ".T")
			}
		}
	}
	return out
}
