package cpptree

import "strings"

// StripComments blanks out // and /* */ comments while keeping every newline,
// so line numbers stay aligned with the original text. String and character
// literals are copied through untouched.
func StripComments(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	const (
		code = iota
		lineComment
		blockComment
		stringLit
		charLit
	)
	state := code

	for i := 0; i < len(content); i++ {
		c := content[i]
		var next byte
		if i+1 < len(content) {
			next = content[i+1]
		}

		switch state {
		case code:
			switch {
			case c == '/' && next == '/':
				state = lineComment
				i++
			case c == '/' && next == '*':
				state = blockComment
				b.WriteByte(' ')
				i++
			case c == '"':
				state = stringLit
				b.WriteByte(c)
			case c == '\'' && isDigitSeparator(content, i):
				b.WriteByte(c)
			case c == '\'':
				state = charLit
				b.WriteByte(c)
			default:
				b.WriteByte(c)
			}
		case lineComment:
			if c == '\n' {
				state = code
				b.WriteByte(c)
			}
		case blockComment:
			switch {
			case c == '*' && next == '/':
				state = code
				i++
			case c == '\n':
				b.WriteByte(c)
			}
		case stringLit, charLit:
			b.WriteByte(c)
			quote := byte('"')
			if state == charLit {
				quote = '\''
			}
			switch {
			case c == '\\' && i+1 < len(content):
				b.WriteByte(next)
				i++
			case c == quote, c == '\n':
				state = code
			}
		}
	}
	return b.String()
}

// isDigitSeparator reports whether the quote at content[i] sits inside a
// numeric literal, as in 1'000 or 0xFF'FF.
func isDigitSeparator(content string, i int) bool {
	if i+1 >= len(content) || !isNumberByte(content[i+1]) {
		return false
	}
	start := i
	for start > 0 && (isNumberByte(content[start-1]) || content[start-1] == '\'') {
		start--
	}
	return start < i && content[start] >= '0' && content[start] <= '9'
}

func isNumberByte(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '.'
}
