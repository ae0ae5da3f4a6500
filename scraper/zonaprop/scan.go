package zonaprop

// Helpers for walking JavaScript object-literal text without being confused
// by brackets, quotes or slashes that appear inside string literals.

// skipString returns the index just past the string literal whose opening
// quote is at s[i]. ok is false when the literal is never closed.
func skipString(s string, i int) (end int, ok bool) {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1, true
		}
	}
	return len(s), false
}

// isCommentStart reports whether a // or /* comment begins at s[i].
func isCommentStart(s string, i int) bool {
	return s[i] == '/' && i+1 < len(s) && (s[i+1] == '/' || s[i+1] == '*')
}

// skipComment returns the index just past the comment starting at s[i]. A
// line comment ends before its newline so line structure is preserved.
func skipComment(s string, i int) int {
	if s[i+1] == '/' {
		for j := i + 2; j < len(s); j++ {
			if s[j] == '\n' {
				return j
			}
		}
		return len(s)
	}
	for j := i + 2; j+1 < len(s); j++ {
		if s[j] == '*' && s[j+1] == '/' {
			return j + 2
		}
	}
	return len(s)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// skipBlank returns the index of the next byte at or after i that is neither
// whitespace nor part of a comment.
func skipBlank(s string, i int) int {
	for i < len(s) {
		switch {
		case isSpace(s[i]):
			i++
		case isCommentStart(s, i):
			i = skipComment(s, i)
		default:
			return i
		}
	}
	return i
}

// matchClose returns the index of the bracket closing the '{' or '[' at
// s[open], honouring nesting of both bracket kinds, strings and comments.
func matchClose(s string, open int) (int, bool) {
	var stack []byte
	for i := open; i < len(s); {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			end, ok := skipString(s, i)
			if !ok {
				return 0, false
			}
			i = end
			continue
		case isCommentStart(s, i):
			i = skipComment(s, i)
			continue
		case c == '{':
			stack = append(stack, '}')
		case c == '[':
			stack = append(stack, ']')
		case c == '}' || c == ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
		i++
	}
	return 0, false
}

// balancedAt returns the bracketed text starting at s[i] if s[i] opens an
// object or array that is closed later in s.
func balancedAt(s string, i int) (string, bool) {
	if i >= len(s) || (s[i] != '{' && s[i] != '[') {
		return "", false
	}
	end, ok := matchClose(s, i)
	if !ok {
		return "", false
	}
	return s[i : end+1], true
}
