package parser

import (
	"fmt"
	"strings"
	"unicode"

	apperrors "github.com/mihirdhamankar/searchlite/pkg/errors"
)

type tokenKind int

const (
	tokTerm tokenKind = iota
	tokAnd
	tokOr
	tokNot
	tokPhrase
	tokLParen
	tokRParen
	tokQuoted
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) describe() string {
	if t.kind == tokEOF {
		return "end of query"
	}
	return fmt.Sprintf("%q at offset %d", t.text, t.pos)
}

// Parse turns a query string into an expression tree. All failures wrap
// ErrQuerySyntax.
func Parse(query string) (Node, error) {
	tokens, err := lex(query)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, syntaxErrorf("unexpected %s", tok.describe())
	}
	return expr, nil
}

func syntaxErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrQuerySyntax, fmt.Sprintf(format, args...))
}

func lex(query string) ([]token, error) {
	var tokens []token
	runes := []rune(query)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == '"':
			start := i
			i++
			for i < len(runes) && runes[i] != '"' {
				i++
			}
			if i == len(runes) {
				return nil, syntaxErrorf("unterminated quote at offset %d", start)
			}
			tokens = append(tokens, token{
				kind: tokQuoted,
				text: string(runes[start+1 : i]),
				pos:  start,
			})
			i++
		case isTermRune(r):
			start := i
			for i < len(runes) && isTermRune(runes[i]) {
				i++
			}
			word := string(runes[start:i])
			kind := tokTerm
			switch word {
			case "AND":
				kind = tokAnd
			case "OR":
				kind = tokOr
			case "NOT":
				kind = tokNot
			case "PHRASE":
				kind = tokPhrase
			}
			tokens = append(tokens, token{kind: kind, text: word, pos: start})
		default:
			return nil, syntaxErrorf("unexpected character %q at offset %d", r, i)
		}
	}
	return append(tokens, token{kind: tokEOF, pos: len(runes)}), nil
}

func isTermRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}

type parser struct {
	tokens []token
	next   int
}

func (p *parser) peek() token {
	return p.tokens[p.next]
}

func (p *parser) advance() token {
	tok := p.tokens[p.next]
	if tok.kind != tokEOF {
		p.next++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok := p.advance()
	if tok.kind != kind {
		return token{}, syntaxErrorf("expected %s, got %s", what, tok.describe())
	}
	return tok, nil
}

// parseOr handles the lowest-precedence level: a OR b OR c.
func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.peek().kind == tokNot {
		p.advance()
		expr, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not{Expr: expr}, nil
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() (Node, error) {
	tok := p.advance()
	switch tok.kind {
	case tokTerm:
		return Term{Value: strings.ToLower(tok.text)}, nil
	case tokQuoted:
		return p.phraseFromWords(strings.Fields(tok.text), tok)
	case tokPhrase:
		if _, err := p.expect(tokLParen, `"(" after PHRASE`); err != nil {
			return nil, err
		}
		var words []string
		for p.peek().kind == tokTerm {
			words = append(words, p.advance().text)
		}
		if _, err := p.expect(tokRParen, `")" closing PHRASE`); err != nil {
			return nil, err
		}
		return p.phraseFromWords(words, tok)
	case tokLParen:
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, syntaxErrorf("expected term, got %s", tok.describe())
	}
}

func (p *parser) phraseFromWords(words []string, at token) (Node, error) {
	if len(words) == 0 {
		return nil, syntaxErrorf("empty phrase at offset %d", at.pos)
	}
	terms := make([]string, len(words))
	for i, w := range words {
		terms[i] = strings.ToLower(w)
	}
	if len(terms) == 1 {
		return Term{Value: terms[0]}, nil
	}
	return Phrase{Terms: terms}, nil
}
