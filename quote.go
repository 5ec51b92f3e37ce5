package bintext

import "strings"

// Quote returns s in a form that spreadsheets import back as the same text.
// The value is always wrapped in double quotes and internal quotes are
// doubled. A value starting with '-' is prefixed with '=' so it is not read
// as a formula or a negative number. Separators, tabs and newlines are left
// as they are inside the quotes.
func Quote(s string) string {
	return string(AppendQuote(make([]byte, 0, len(s)+3), s))
}

// AppendQuote appends the [Quote]d form of s to dst.
func AppendQuote(dst []byte, s string) []byte {
	if strings.HasPrefix(s, "-") {
		dst = append(dst, '=')
	}
	dst = append(dst, '"')
	for {
		i := strings.IndexByte(s, '"')
		if i < 0 {
			break
		}
		dst = append(dst, s[:i+1]...)
		dst = append(dst, '"')
		s = s[i+1:]
	}
	dst = append(dst, s...)
	return append(dst, '"')
}
