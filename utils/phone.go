package utils

import "strings"

// NormalizePhone rewrites a user-entered phone number into +7 form for the
// gateway receipt: "8XXXXXXXXXX" becomes "+7XXXXXXXXXX", numbers already
// starting with 7 get a "+" and anything else is treated as a bare national
// number and prefixed with "+7". Russian numbers only; this is a stopgap,
// not a full E.164 parser.
func NormalizePhone(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	if digits == "" {
		return ""
	}

	if len(digits) == 11 && digits[0] == '8' {
		return "+7" + digits[1:]
	}
	if digits[0] == '7' {
		return "+" + digits
	}
	return "+7" + digits
}
