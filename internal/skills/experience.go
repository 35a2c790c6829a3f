package skills

import (
	"regexp"
	"strconv"
)

var yearsRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*\+?\s*(?:years?|yrs?)\b`)

// ExtractYears returns the largest "N years" figure stated in text, or nil
// when none is stated. Nil means unknown, not zero.
func ExtractYears(text string) *int {
	var best *int
	for _, m := range yearsRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if best == nil || n > *best {
			v := n
			best = &v
		}
	}
	return best
}
