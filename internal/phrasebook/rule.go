package phrasebook

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type rule interface {
	apply(input string) (output string, changed bool)
}

// parseLine accepts either "from => to" or a sed-style "s/pattern/replace/flags".
func parseLine(line string) (rule, error) {
	switch {
	case line == "":
		return nil, errors.New("empty rule")
	case isSedRule(line):
		return parseSedRule(line)
	case strings.Contains(line, "=>"):
		from, to, _ := strings.Cut(line, "=>")
		return literal(strings.TrimSpace(from), strings.TrimSpace(to), false)
	default:
		return nil, errors.New("unsupported rule format")
	}
}

func compileEntry(entry Entry) (rule, error) {
	match := strings.TrimSpace(entry.Match)
	switch {
	case match != "" && entry.Pattern != "":
		return nil, errors.New("set either match or pattern, not both")
	case match != "":
		return literal(match, entry.Replace, entry.CaseSensitive)
	case entry.Pattern != "":
		pattern := entry.Pattern
		if !entry.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		return regexRule{re: re, replacement: entry.Replace, global: entry.Global}, nil
	default:
		return nil, errors.New("match or pattern is required")
	}
}

type literalRule struct {
	re          *regexp.Regexp
	replacement string
}

func literal(from, to string, caseSensitive bool) (rule, error) {
	if from == "" {
		return nil, errors.New("literal rule source cannot be empty")
	}
	pattern := regexp.QuoteMeta(from)
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid literal source: %w", err)
	}
	return literalRule{re: re, replacement: to}, nil
}

func (r literalRule) apply(input string) (string, bool) {
	output := r.re.ReplaceAllLiteralString(input, r.replacement)
	return output, output != input
}

type regexRule struct {
	re          *regexp.Regexp
	replacement string
	global      bool
}

func (r regexRule) apply(input string) (string, bool) {
	if r.global {
		output := r.re.ReplaceAllString(input, r.replacement)
		return output, output != input
	}

	loc := r.re.FindStringSubmatchIndex(input)
	if loc == nil {
		return input, false
	}
	expanded := r.re.ExpandString(nil, r.replacement, input, loc)
	output := input[:loc[0]] + string(expanded) + input[loc[1]:]
	return output, output != input
}

// parseSedRule parses s<d>pattern<d>replacement<d>flags. Matching is case
// insensitive unless the I flag is given.
func parseSedRule(line string) (rule, error) {
	delim := line[1]
	pattern, pos, err := readDelimited(line, 2, delim)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	replacement, pos, err := readDelimited(line, pos, delim)
	if err != nil {
		return nil, fmt.Errorf("invalid regex replacement: %w", err)
	}

	ignoreCase, global := true, false
	var extra strings.Builder
	for _, flag := range strings.TrimSpace(line[pos:]) {
		switch flag {
		case 'i':
			ignoreCase = true
		case 'I':
			ignoreCase = false
		case 'g':
			global = true
		case 'm', 's':
			extra.WriteRune(flag)
		default:
			return nil, fmt.Errorf("unsupported regex flag %q", flag)
		}
	}

	prefix := extra.String()
	if ignoreCase {
		prefix = "i" + prefix
	}
	if prefix != "" {
		pattern = "(?" + prefix + ")" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}
	return regexRule{re: re, replacement: replacement, global: global}, nil
}

func readDelimited(line string, start int, delim byte) (string, int, error) {
	if start >= len(line) {
		return "", 0, errors.New("unexpected end of expression")
	}

	var b strings.Builder
	escaped := false
	for i := start; i < len(line); i++ {
		c := line[i]
		switch {
		case escaped:
			if c != delim {
				b.WriteByte('\\')
			}
			b.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == delim:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, errors.New("unterminated expression")
}

func isSedRule(line string) bool {
	if len(line) < 2 || line[0] != 's' {
		return false
	}
	c := line[1]
	alnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
	return !alnum && c != ' ' && c != '\t'
}
