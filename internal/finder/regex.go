package finder

import (
	"fmt"
	"regexp"
	"strings"
)

// breOperators are the characters that act as operators in a basic
// regular expression only when escaped, and as literals otherwise.
const breOperators = "(){}|+?"

// CompileSourceRegex compiles a basic regular expression in the GNU
// find/grep dialect, where grouping and alternation are written \( \) \|,
// into a Go regexp. Bracket expressions are copied unchanged.
//
//	CompileSourceRegex(`\.\(php\|txt\|rst\)$`) // matches `\.(php|txt|rst)$`
func CompileSourceRegex(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(translateBRE(expr))
	if err != nil {
		return nil, fmt.Errorf("invalid source regex %q: %w", expr, err)
	}
	return re, nil
}

func translateBRE(expr string) string {
	var b strings.Builder
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '\\' && i+1 < len(expr):
			next := expr[i+1]
			if strings.IndexByte(breOperators, next) >= 0 {
				b.WriteByte(next)
			} else {
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			i++
		case c == '[':
			end := bracketEnd(expr, i)
			b.WriteString(expr[i:end])
			i = end - 1
		case strings.IndexByte(breOperators, c) >= 0:
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// bracketEnd returns the index just past the bracket expression starting at
// start. A "]" right after "[" or "[^" is a literal member. An unterminated
// bracket extends to the end of expr and is left for regexp to reject.
func bracketEnd(expr string, start int) int {
	i := start + 1
	if i < len(expr) && expr[i] == '^' {
		i++
	}
	if i < len(expr) && expr[i] == ']' {
		i++
	}
	for ; i < len(expr); i++ {
		if expr[i] == ']' {
			return i + 1
		}
	}
	return len(expr)
}
