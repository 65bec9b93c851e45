package adhoc

import (
	"fmt"
	"strings"
	"unicode"
)

// Statement is query text that passed classification.
type Statement struct {
	// Text is the statement with comments kept and any trailing semicolon removed.
	Text string
	// Keyword is the leading keyword, upper-cased.
	Keyword string
}

var readKeywords = map[string]bool{
	"SELECT":  true,
	"WITH":    true,
	"VALUES":  true,
	"EXPLAIN": true,
}

var writeKeywords = map[string]bool{
	"INSERT":    true,
	"UPDATE":    true,
	"DELETE":    true,
	"REPLACE":   true,
	"UPSERT":    true,
	"CREATE":    true,
	"DROP":      true,
	"ALTER":     true,
	"ATTACH":    true,
	"DETACH":    true,
	"PRAGMA":    true,
	"VACUUM":    true,
	"REINDEX":   true,
	"ANALYZE":   true,
	"BEGIN":     true,
	"COMMIT":    true,
	"ROLLBACK":  true,
	"SAVEPOINT": true,
	"RELEASE":   true,
}

// Classify accepts text only if it is a single statement that can do nothing but read.
// Anything else fails with ErrForbiddenOperation.
func Classify(text string) (Statement, error) {
	toks, end, err := tokenize(text)
	if err != nil {
		return Statement{}, err
	}
	if len(toks) == 0 {
		return Statement{}, fmt.Errorf("%w: empty query", ErrForbiddenOperation)
	}

	first := toks[0].word
	if !readKeywords[first] {
		return Statement{}, fmt.Errorf("%w: %s statements are not allowed", ErrForbiddenOperation, first)
	}

	for _, tok := range toks {
		if !writeKeywords[tok.word] {
			continue
		}
		// replace(x, y, z) is a scalar function, not REPLACE INTO.
		if tok.word == "REPLACE" && tok.call {
			continue
		}
		return Statement{}, fmt.Errorf("%w: %s is not allowed", ErrForbiddenOperation, tok.word)
	}

	return Statement{
		Text:    strings.TrimSpace(text[:end]),
		Keyword: first,
	}, nil
}

type token struct {
	word string
	// call is set when the word is directly followed by an opening parenthesis.
	call bool
}

// tokenize returns the bare words of text outside literals, quoted identifiers and
// comments, plus the offset where the single statement ends.
func tokenize(text string) ([]token, int, error) {
	var toks []token
	end := len(text)
	terminated := false

	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '-' && i+1 < len(text) && text[i+1] == '-':
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			j := strings.Index(text[i+2:], "*/")
			if j < 0 {
				i = len(text)
			} else {
				i += j + 4
			}
		case terminated && (c == '\'' || c == '"' || c == '`' || c == '['):
			return nil, 0, fmt.Errorf("%w: multiple statements are not allowed", ErrForbiddenOperation)
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(text, i, c)
		case c == '[':
			j := strings.IndexByte(text[i:], ']')
			if j < 0 {
				i = len(text)
			} else {
				i += j + 1
			}
		case c == ';':
			if !terminated {
				end = i
				terminated = true
			}
			i++
		case isWordByte(c):
			j := i
			for j < len(text) && isWordByte(text[j]) {
				j++
			}
			if terminated {
				return nil, 0, fmt.Errorf("%w: multiple statements are not allowed", ErrForbiddenOperation)
			}
			toks = append(toks, token{
				word: strings.ToUpper(text[i:j]),
				call: nextNonSpace(text, j) == '(',
			})
			i = j
		default:
			if terminated && !unicode.IsSpace(rune(c)) {
				return nil, 0, fmt.Errorf("%w: multiple statements are not allowed", ErrForbiddenOperation)
			}
			i++
		}
	}

	return toks, end, nil
}

// skipQuoted returns the offset just past the quoted run starting at i. A doubled
// quote character is an escaped quote.
func skipQuoted(text string, i int, quote byte) int {
	for j := i + 1; j < len(text); j++ {
		if text[j] != quote {
			continue
		}
		if j+1 < len(text) && text[j+1] == quote {
			j++
			continue
		}
		return j + 1
	}
	return len(text)
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func nextNonSpace(text string, i int) byte {
	for ; i < len(text); i++ {
		if !unicode.IsSpace(rune(text[i])) {
			return text[i]
		}
	}
	return 0
}
