package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RegexPrefix is the optional prefix of a regex expression ("regex:(\d+):1").
const RegexPrefix = "regex:"

// Regex is a compiled regular expression together with the capture group it selects.
// It is immutable and safe for concurrent use.
type Regex struct {
	re    *regexp.Regexp
	index int
}

// CompileRegex parses "pattern:group". The text after the last ':' selects the
// capture group if it is the number or name of a group of the pattern; otherwise
// the whole text is the pattern and the full match is selected.
// A leading "regex:" is ignored.
func CompileRegex(expr string) (*Regex, error) {
	expr = strings.TrimPrefix(expr, RegexPrefix)

	if i := strings.LastIndexByte(expr, ':'); i >= 0 {
		pattern, group := expr[:i], expr[i+1:]
		if re, err := regexp.Compile(pattern); err == nil {
			if n, err := strconv.Atoi(group); err == nil && n >= 0 && n <= re.NumSubexp() {
				return &Regex{re: re, index: n}, nil
			}
			if group != "" && re.SubexpIndex(group) >= 0 {
				return &Regex{re: re, index: re.SubexpIndex(group)}, nil
			}
		}
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern cannot be compiled: '%s' - error: %s", ErrInvalidPath, expr, err)
	}
	return &Regex{re: re}, nil
}

// Find applies the expression to text and returns the selected capture group of the first match.
func (r *Regex) Find(text string) (string, error) {
	submatches := r.re.FindStringSubmatchIndex(text)
	if submatches == nil {
		return "", fmt.Errorf("%w: pattern '%s' did not match", ErrNotFound, r.re.String())
	}
	start, end := submatches[2*r.index], submatches[2*r.index+1]
	if start < 0 {
		return "", fmt.Errorf("%w: group %d of pattern '%s' did not participate in the match", ErrNotFound, r.index, r.re.String())
	}
	return text[start:end], nil
}

// String returns the pattern of the expression.
func (r *Regex) String() string {
	return r.re.String()
}
