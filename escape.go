package bintext

import (
	"strings"
	"unicode/utf8"
)

// ExpandEscapes replaces the backslash escapes \\ \' \" \t \n and \r in raw
// with the characters they name. Any other escape, including a trailing lone
// backslash, fails with an [*EscapeError]. Bytes outside escapes are copied
// unchanged, whether or not they are valid UTF-8.
func ExpandEscapes(raw string) (string, error) {
	if !strings.Contains(raw, `\`) {
		return raw, nil
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(raw) {
			return "", &EscapeError{Sequence: `\`, Input: raw}
		}
		switch c = raw[i]; c {
		case '\\', '\'', '"':
			b.WriteByte(c)
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			_, size := utf8.DecodeRuneInString(raw[i:])
			return "", &EscapeError{Sequence: `\` + raw[i:i+size], Input: raw}
		}
	}
	return b.String(), nil
}
