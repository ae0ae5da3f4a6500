package zonaprop

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// NormalizeLiteral rewrites a JavaScript object literal into JSON text.
//
// The literal is walked token by token rather than rewritten with a chain of
// substitutions, so text inside string values is never touched:
//   - a comma whose next significant token is '}' or ']' is dropped;
//   - // and /* */ comments are dropped (a line comment keeps its newline);
//   - a bare identifier or number followed by ':' is quoted as a key;
//   - one trailing ';' is dropped.
//
// Single-quoted strings are re-emitted as JSON strings and `undefined`
// becomes null. Nothing else is validated: other JavaScript (function calls,
// variables) is copied through and left for the JSON decoder to reject.
// Running it on its own output returns the same text.
func NormalizeLiteral(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	n := len(src)
	for i := 0; i < n; {
		c := src[i]
		switch {
		case isCommentStart(src, i):
			i = skipComment(src, i)

		case c == '"' || c == '\'':
			end, ok := skipString(src, i)
			if !ok {
				b.WriteString(src[i:])
				i = n
				continue
			}
			b.WriteString(quoteJSON(unescapeJS(src[i+1 : end-1])))
			i = end

		case c == ',':
			next := skipBlank(src, i+1)
			if next < n && (src[next] == '}' || src[next] == ']') {
				i++
				continue
			}
			b.WriteByte(c)
			i++

		case c == ';':
			if skipBlank(src, i+1) == n {
				i = n
				continue
			}
			b.WriteByte(c)
			i++

		case isIdentStart(c):
			j := i + 1
			for j < n && isIdentPart(src[j]) {
				j++
			}
			word := src[i:j]
			if next := skipBlank(src, j); next < n && src[next] == ':' {
				b.WriteString(quoteJSON(word))
			} else if word == "undefined" {
				b.WriteString("null")
			} else {
				b.WriteString(word)
			}
			i = j

		case isDigit(c):
			j := i + 1
			for j < n && (isIdentPart(src[j]) || src[j] == '.') {
				j++
			}
			if next := skipBlank(src, j); next < n && src[next] == ':' {
				b.WriteString(quoteJSON(src[i:j]))
			} else {
				b.WriteString(src[i:j])
			}
			i = j

		default:
			b.WriteByte(c)
			i++
		}
	}

	return strings.TrimSpace(b.String())
}

// Identifier bytes. Non-ASCII bytes count as letters so keys like baño: are
// kept whole.
func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// quoteJSON encodes s as a JSON string without HTML escaping.
func quoteJSON(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// unescapeJS decodes the escape sequences of a JavaScript string body.
// Unknown escapes keep the escaped character, as JavaScript does.
func unescapeJS(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case 'x':
			if r, ok := hexRune(s, i+1, 2); ok {
				b.WriteRune(r)
				i += 2
			} else {
				b.WriteByte(e)
			}
		case 'u':
			r, ok := hexRune(s, i+1, 4)
			if !ok {
				b.WriteByte(e)
				continue
			}
			i += 4
			if utf16.IsSurrogate(r) && strings.HasPrefix(s[i+1:], `\u`) {
				if r2, ok := hexRune(s, i+3, 4); ok {
					if pair := utf16.DecodeRune(r, r2); pair != utf8.RuneError {
						r = pair
						i += 6
					}
				}
			}
			b.WriteRune(r)
		default:
			b.WriteByte(e)
		}
	}
	return b.String()
}

func hexRune(s string, start, width int) (rune, bool) {
	if start+width > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[start:start+width], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
