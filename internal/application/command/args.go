package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MerrickKing/walrusbot/internal/domain"
)

// ArgKind is the expected type of a command argument.
type ArgKind int

const (
	ArgString ArgKind = iota
	ArgInt
	// ArgRemainder consumes the rest of the line verbatim. Must be the
	// last argument of an overload.
	ArgRemainder
)

// ArgSpec declares one typed argument of an overload.
type ArgSpec struct {
	Name string
	Kind ArgKind
}

// ArgumentError reports which argument failed to parse and where.
type ArgumentError struct {
	Name     string
	Position int // 1-based
	Detail   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %q at position %d: %s", e.Name, e.Position, e.Detail)
}

func (e *ArgumentError) Unwrap() error { return domain.ErrArgumentParse }

// token is one whitespace-delimited word plus its byte offset into the
// original line, so remainder arguments can be recovered verbatim.
type token struct {
	text   string
	offset int
}

func tokenize(line string) []token {
	var out []token
	i := 0
	for i < len(line) {
		for i < len(line) && line[i] == ' ' {
			i++
		}
		if i >= len(line) {
			break
		}
		start := i
		for i < len(line) && line[i] != ' ' {
			i++
		}
		out = append(out, token{text: line[start:i], offset: start})
	}
	return out
}

// matches reports whether the overload can accept n positional tokens.
func (o *Overload) matches(n int) bool {
	if len(o.Args) > 0 && o.Args[len(o.Args)-1].Kind == ArgRemainder {
		return n >= len(o.Args)
	}
	return n == len(o.Args)
}

// convert validates and converts the raw tokens for the overload.
// line is the full argument portion of the message; tokens index into it.
func (o *Overload) convert(line string, tokens []token) ([]any, error) {
	out := make([]any, 0, len(o.Args))
	for i, spec := range o.Args {
		switch spec.Kind {
		case ArgRemainder:
			out = append(out, strings.TrimSpace(line[tokens[i].offset:]))
		case ArgInt:
			n, err := strconv.Atoi(tokens[i].text)
			if err != nil {
				return nil, &ArgumentError{
					Name:     spec.Name,
					Position: i + 1,
					Detail:   fmt.Sprintf("%q is not a number", tokens[i].text),
				}
			}
			out = append(out, n)
		default:
			out = append(out, tokens[i].text)
		}
	}
	return out, nil
}
