package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var errSyntax = errors.New("expr: syntax error")

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokLParen
	tokRParen
	tokComma
	tokPow
	tokOp
)

type token struct {
	kind tokenKind
	text string
}

// multi-character operators passed through unchanged
var operators = []string{">=", "<=", "==", "!=", "&&", "||", "??", "=~", "!~", ">>", "<<"}

// tokenize splits src into the tokens the rewriter cares about. Numbers in
// scientific notation are expanded to plain decimals.
func tokenize(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case unicode.IsDigit(r) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			j := i
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.') {
				j++
			}
			if j < len(rs) && (rs[j] == 'e' || rs[j] == 'E') {
				k := j + 1
				if k < len(rs) && (rs[k] == '+' || rs[k] == '-') {
					k++
				}
				if k < len(rs) && unicode.IsDigit(rs[k]) {
					for k < len(rs) && unicode.IsDigit(rs[k]) {
						k++
					}
					j = k
				}
			}
			v, err := strconv.ParseFloat(string(rs[i:j]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q", errSyntax, string(rs[i:j]))
			}
			toks = append(toks, token{tokNumber, strconv.FormatFloat(v, 'f', -1, 64)})
			i = j

		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			toks = append(toks, token{tokIdent, string(rs[i:j])})
			i = j

		case r == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case r == ',':
			toks = append(toks, token{tokComma, ","})
			i++
		case r == '^':
			toks = append(toks, token{tokPow, "^"})
			i++
		case r == '*' && i+1 < len(rs) && rs[i+1] == '*':
			toks = append(toks, token{tokPow, "**"})
			i += 2

		default:
			op := string(r)
			for _, m := range operators {
				if strings.HasPrefix(string(rs[i:]), m) {
					op = m
					break
				}
			}
			toks = append(toks, token{tokOp, op})
			i += len([]rune(op))
		}
	}
	return toks, nil
}

// rewriter re-emits a formula with every power written as pow(base, exp).
// Powers bind tighter than a leading sign and group from the right, so
// -x^2 is -(x^2) and x^2^3 is x^(2^3).
type rewriter struct {
	toks []token
	pos  int
}

// rewrite returns src in the form handed to govaluate
func rewrite(src string) (string, error) {
	toks, err := tokenize(src)
	if err != nil {
		return "", err
	}
	rw := &rewriter{toks: toks}
	out, err := rw.sequence()
	if err != nil {
		return "", err
	}
	if rw.pos < len(rw.toks) {
		return "", fmt.Errorf("%w: unexpected %q", errSyntax, rw.toks[rw.pos].text)
	}
	return out, nil
}

func (rw *rewriter) peek() (token, bool) {
	if rw.pos >= len(rw.toks) {
		return token{}, false
	}
	return rw.toks[rw.pos], true
}

// sequence emits tokens up to the next unmatched ')' or ',' at this level
func (rw *rewriter) sequence() (string, error) {
	var parts []string
	for {
		tok, ok := rw.peek()
		if !ok || tok.kind == tokRParen || tok.kind == tokComma {
			return strings.Join(parts, " "), nil
		}
		switch tok.kind {
		case tokNumber, tokIdent, tokLParen:
			s, err := rw.power()
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		case tokPow:
			return "", fmt.Errorf("%w: %q without a base", errSyntax, tok.text)
		default:
			parts = append(parts, tok.text)
			rw.pos++
		}
	}
}

// power parses primary [^ signed-power]
func (rw *rewriter) power() (string, error) {
	base, err := rw.primary()
	if err != nil {
		return "", err
	}
	tok, ok := rw.peek()
	if !ok || tok.kind != tokPow {
		return base, nil
	}
	rw.pos++
	exp, err := rw.signedPower()
	if err != nil {
		return "", err
	}
	return "pow(" + base + ", " + exp + ")", nil
}

func (rw *rewriter) signedPower() (string, error) {
	tok, ok := rw.peek()
	if ok && tok.kind == tokOp && (tok.text == "-" || tok.text == "+") {
		rw.pos++
		rest, err := rw.signedPower()
		if err != nil {
			return "", err
		}
		if tok.text == "+" {
			return rest, nil
		}
		return "-(" + rest + ")", nil
	}
	return rw.power()
}

func (rw *rewriter) primary() (string, error) {
	tok, ok := rw.peek()
	if !ok {
		return "", fmt.Errorf("%w: unexpected end of expression", errSyntax)
	}

	switch tok.kind {
	case tokNumber:
		rw.pos++
		return tok.text, nil

	case tokIdent:
		rw.pos++
		if next, ok := rw.peek(); !ok || next.kind != tokLParen {
			return tok.text, nil
		}
		rw.pos++
		var args []string
		if next, ok := rw.peek(); ok && next.kind == tokRParen {
			rw.pos++
			return tok.text + "()", nil
		}
		for {
			arg, err := rw.sequence()
			if err != nil {
				return "", err
			}
			args = append(args, arg)
			next, ok := rw.peek()
			if !ok {
				return "", fmt.Errorf("%w: missing ')' after %s(", errSyntax, tok.text)
			}
			rw.pos++
			if next.kind == tokRParen {
				return tok.text + "(" + strings.Join(args, ", ") + ")", nil
			}
		}

	case tokLParen:
		rw.pos++
		inner, err := rw.sequence()
		if err != nil {
			return "", err
		}
		if next, ok := rw.peek(); !ok || next.kind != tokRParen {
			return "", fmt.Errorf("%w: missing ')'", errSyntax)
		}
		rw.pos++
		return "(" + inner + ")", nil

	default:
		return "", fmt.Errorf("%w: unexpected %q", errSyntax, tok.text)
	}
}
