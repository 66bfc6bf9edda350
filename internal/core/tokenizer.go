package core

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var errUnterminatedQuote = errors.New("unterminated quote")

// Tokenize разбивает строку команды на токены. Последовательности
// в двойных кавычках становятся одним токеном, кавычки снимаются:
// `ls "my dir"` дает ["ls", "my dir"]. Незакрытая кавычка — ошибка.
func Tokenize(line string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inToken := false
	inQuote := false

	flush := func() {
		if inToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			inToken = false
		}
	}

	for _, r := range line {
		switch {
		case inQuote:
			if r == '"' {
				inQuote = false
				continue
			}
			cur.WriteRune(r)
		case r == '"':
			inQuote = true
			inToken = true
		case unicode.IsSpace(r):
			flush()
		default:
			inToken = true
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("%w in %q", errUnterminatedQuote, line)
	}
	flush()
	return tokens, nil
}
