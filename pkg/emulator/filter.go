package emulator

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/papercomputeco/upvector/pkg/vector"
)

// filter is a parsed metadata filter expression.
type filter interface {
	match(md vector.Metadata) bool
}

type andFilter []filter

func (f andFilter) match(md vector.Metadata) bool {
	for _, sub := range f {
		if !sub.match(md) {
			return false
		}
	}
	return true
}

type orFilter []filter

func (f orFilter) match(md vector.Metadata) bool {
	for _, sub := range f {
		if sub.match(md) {
			return true
		}
	}
	return false
}

type comparison struct {
	path  []string
	op    string
	value any
}

func (c comparison) match(md vector.Metadata) bool {
	field, ok := lookup(md, c.path)
	if !ok {
		return false
	}

	switch want := c.value.(type) {
	case string:
		got, ok := field.(string)
		if !ok {
			return false
		}
		return compare(strings.Compare(got, want), c.op)
	case float64:
		got, ok := number(field)
		if !ok {
			return false
		}
		switch {
		case got < want:
			return compare(-1, c.op)
		case got > want:
			return compare(1, c.op)
		default:
			return compare(0, c.op)
		}
	case bool:
		got, ok := field.(bool)
		if !ok {
			return false
		}
		switch c.op {
		case "=":
			return got == want
		case "!=":
			return got != want
		}
	}
	return false
}

func compare(cmp int, op string) bool {
	switch op {
	case "=":
		return cmp == 0
	case "!=":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

func lookup(md vector.Metadata, path []string) (any, bool) {
	var cur any = map[string]any(md)
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// parseFilter parses expressions such as
//
//	genre = 'drama' AND (year >= 2000 OR award.won = true)
//
// An empty expression matches everything and yields a nil filter.
func parseFilter(expr string) (filter, error) {
	toks, err := lex(expr)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, nil
	}

	p := &filterParser{toks: toks}
	f, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("unexpected %q in filter", p.toks[p.pos].text)
	}
	return f, nil
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

func lex(expr string) ([]token, error) {
	var toks []token
	rs := []rune(expr)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case r == '\'' || r == '"':
			j := i + 1
			for j < len(rs) && rs[j] != r {
				j++
			}
			if j == len(rs) {
				return nil, fmt.Errorf("unterminated string in filter")
			}
			toks = append(toks, token{tokString, string(rs[i+1 : j])})
			i = j + 1
		case strings.ContainsRune("=!<>", r):
			j := i + 1
			if j < len(rs) && rs[j] == '=' {
				j++
			}
			op := string(rs[i:j])
			if op == "!" {
				return nil, fmt.Errorf("invalid operator %q in filter", op)
			}
			toks = append(toks, token{tokOp, op})
			i = j
		case r == '-' || unicode.IsDigit(r):
			j := i + 1
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.' || rs[j] == 'e' || rs[j] == 'E') {
				j++
			}
			toks = append(toks, token{tokNumber, string(rs[i:j])})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i + 1
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_' || rs[j] == '.') {
				j++
			}
			toks = append(toks, token{tokIdent, string(rs[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q in filter", r)
		}
	}
	return toks, nil
}

type filterParser struct {
	toks []token
	pos  int
}

func (p *filterParser) peekKeyword(kw string) bool {
	return p.pos < len(p.toks) && p.toks[p.pos].kind == tokIdent && strings.EqualFold(p.toks[p.pos].text, kw)
}

func (p *filterParser) parseOr() (filter, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := orFilter{first}
	for p.peekKeyword("or") {
		p.pos++
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return terms, nil
}

func (p *filterParser) parseAnd() (filter, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms := andFilter{first}
	for p.peekKeyword("and") {
		p.pos++
		next, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return terms, nil
}

func (p *filterParser) parseTerm() (filter, error) {
	if p.pos >= len(p.toks) {
		return nil, fmt.Errorf("unexpected end of filter")
	}

	if p.toks[p.pos].kind == tokLParen {
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.toks) || p.toks[p.pos].kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis in filter")
		}
		p.pos++
		return inner, nil
	}

	if p.pos+3 > len(p.toks) {
		return nil, fmt.Errorf("incomplete comparison in filter")
	}
	field, op, lit := p.toks[p.pos], p.toks[p.pos+1], p.toks[p.pos+2]
	if field.kind != tokIdent || op.kind != tokOp {
		return nil, fmt.Errorf("expected comparison near %q in filter", field.text)
	}
	p.pos += 3

	var value any
	switch lit.kind {
	case tokString:
		value = lit.text
	case tokNumber:
		n, err := strconv.ParseFloat(lit.text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q in filter", lit.text)
		}
		value = n
	case tokIdent:
		switch strings.ToLower(lit.text) {
		case "true":
			value = true
		case "false":
			value = false
		default:
			return nil, fmt.Errorf("invalid value %q in filter", lit.text)
		}
	default:
		return nil, fmt.Errorf("invalid value %q in filter", lit.text)
	}

	if _, isBool := value.(bool); isBool && op.text != "=" && op.text != "!=" {
		return nil, fmt.Errorf("operator %s is not supported for booleans", op.text)
	}

	return comparison{path: strings.Split(field.text, "."), op: op.text, value: value}, nil
}
