package parser

import (
	"regexp"
	"strings"
)

// maxPostingCodeLen bounds whitelist candidate prefixes. Valid posting codes
// in PMS exports are at most 8 characters.
const maxPostingCodeLen = 8

var leadingCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{1,2}`)

// extractValidPostingCode splits a posting code from the front of a
// code-and-description blob. Without a whitelist the first one or two
// alphanumeric characters are taken. With a whitelist, candidate prefixes are
// tried from length 8 down to 1 and the longest case-insensitive member wins,
// so with codes {"9", "91"} the input "91CITY TAX" yields "91", never "9".
// ok is false when no prefix is a whitelist member; callers drop the line.
func extractValidPostingCode(text string, whitelist map[string]struct{}) (code, rest string, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", false
	}

	if len(whitelist) == 0 {
		m := leadingCodePattern.FindString(text)
		if m == "" {
			return "", "", false
		}
		return strings.ToUpper(m), strings.TrimSpace(text[len(m):]), true
	}

	longest := maxPostingCodeLen
	if len(text) < longest {
		longest = len(text)
	}
	for l := longest; l >= 1; l-- {
		candidate := strings.ToUpper(text[:l])
		if _, found := whitelist[candidate]; found {
			return candidate, strings.TrimSpace(text[l:]), true
		}
	}
	return "", "", false
}
