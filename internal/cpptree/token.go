package cpptree

import "strings"

// Tokenize splits one line into lexical units. Whitespace separates tokens,
// identifier/number runs stay whole, the operators ::, ->, ==, !=, <=, >= and
// := are single tokens, and every other byte stands alone.
func Tokenize(line string) []string {
	var tokens []string
	start := -1

	flush := func(end int) {
		if start >= 0 {
			tokens = append(tokens, line[start:end])
			start = -1
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case isSpace(c):
			flush(i)
		case isWordByte(c):
			if start < 0 {
				start = i
			}
		default:
			flush(i)
			if i+1 < len(line) && isTwoCharOperator(c, line[i+1]) {
				tokens = append(tokens, line[i:i+2])
				i++
				continue
			}
			tokens = append(tokens, line[i:i+1])
		}
	}
	flush(len(line))
	return tokens
}

func isTwoCharOperator(c, next byte) bool {
	switch {
	case next == '=' && (c == ':' || c == '=' || c == '!' || c == '<' || c == '>'):
		return true
	case c == ':' && next == ':':
		return true
	case c == '-' && next == '>':
		return true
	}
	return false
}

// SplitWords returns the identifier/number runs of text, dropping all
// punctuation.
func SplitWords(text string) []string {
	var words []string
	start := -1
	for i := 0; i < len(text); i++ {
		if isWordByte(text[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}

// SplitLines splits on '\n' and discards '\r'. A trailing newline yields a
// final empty line.
func SplitLines(content string) []string {
	return strings.Split(strings.ReplaceAll(content, "\r", ""), "\n")
}

func isWordByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// lower lowercases ASCII only, matching how keywords are compared.
func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
