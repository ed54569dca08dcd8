package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var businessIDRegex = regexp.MustCompile(`^(\d{6,7})-(\d)$`)

// weights of the Y-tunnus mod-11 check, applied to the seven body digits.
var businessIDWeights = []int{7, 9, 10, 5, 8, 4, 2}

// NormalizeBusinessID validates a Finnish business ID (Y-tunnus) and returns
// it in canonical "1234567-8" form. Old six-digit IDs get a leading zero.
func NormalizeBusinessID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	matches := businessIDRegex.FindStringSubmatch(raw)
	if matches == nil {
		return "", fmt.Errorf("invalid business ID format: %q", raw)
	}

	body := matches[1]
	if len(body) == 6 {
		body = "0" + body
	}

	sum := 0
	for i, ch := range body {
		sum += int(ch-'0') * businessIDWeights[i]
	}

	remainder := sum % 11
	var check int
	switch remainder {
	case 0:
		check = 0
	case 1:
		return "", fmt.Errorf("invalid business ID %q: remainder 1 is never issued", raw)
	default:
		check = 11 - remainder
	}

	if got := int(matches[2][0] - '0'); got != check {
		return "", fmt.Errorf("invalid business ID %q: check digit %d, want %d", raw, got, check)
	}
	return body + "-" + matches[2], nil
}
