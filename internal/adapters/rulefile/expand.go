package rulefile

import (
	"iter"

	"go.trai.ch/zerr"

	"github.com/remake-build/remake/internal/core/domain"
)

// words materializes the expansion of a word list at the current position.
func (p *parser) words() ([]string, error) {
	var out []string
	for w, err := range p.wordStream() {
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// wordStream lazily yields the expansion of a word list: plain words,
// $(NAME) variable references, and $(FN arg, list) built-ins. Function
// arguments are themselves streams, so nested calls compose without
// materializing intermediate lists. The stream ends before the first
// token that cannot start a word.
func (p *parser) wordStream() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			tok, err := p.lex.next()
			if err != nil {
				yield("", err)
				return
			}
			switch tok {
			case tokWord:
				w, err := p.lex.word()
				if err != nil {
					yield("", err)
					return
				}
				if !yield(w, nil) {
					return
				}
			case tokDollarParen:
				if !p.yieldReference(yield) {
					return
				}
			default:
				return
			}
		}
	}
}

// yieldReference expands one $(...) construct. It reports whether the
// consumer wants more words; an error is delivered through yield first.
func (p *parser) yieldReference(yield func(string, error) bool) bool {
	fail := func(err error) bool {
		yield("", err)
		return false
	}
	p.lex.discard(1)
	c, err := p.lex.peek()
	if err != nil || c != '(' {
		return fail(zerr.Wrap(domain.ErrSyntax, "expected ( after $"))
	}
	p.lex.discard(1)
	name, err := p.lex.word()
	if err != nil {
		return fail(err)
	}
	if name == "" {
		return fail(zerr.Wrap(domain.ErrSyntax, "empty reference name"))
	}
	tok, err := p.lex.next()
	if err != nil {
		return fail(err)
	}
	if tok == tokRightParen {
		p.lex.discard(1)
		words, _ := p.rules.Vars.Lookup(name)
		for _, w := range words {
			if !yield(w, nil) {
				return false
			}
		}
		return true
	}
	return p.yieldFunction(name, yield)
}

// yieldFunction evaluates a built-in: the affix argument, a comma, then a
// word stream closed by a right parenthesis.
func (p *parser) yieldFunction(name string, yield func(string, error) bool) bool {
	fail := func(err error) bool {
		yield("", err)
		return false
	}
	if name != "addprefix" && name != "addsuffix" {
		return fail(zerr.With(domain.ErrSyntax, "function", name))
	}
	if err := p.lex.skipSpaces(); err != nil {
		return fail(err)
	}
	affix, err := p.lex.word()
	if err != nil {
		return fail(err)
	}
	tok, err := p.lex.next()
	if err != nil {
		return fail(err)
	}
	if tok != tokComma {
		return fail(zerr.With(domain.ErrSyntax, "function", name))
	}
	p.lex.discard(1)

	more := true
	for w, err := range p.wordStream() {
		if err != nil {
			return fail(err)
		}
		if name == "addprefix" {
			w = affix + w
		} else {
			w += affix
		}
		if !yield(w, nil) {
			more = false
			break
		}
	}
	if !more {
		return false
	}
	tok, err = p.lex.next()
	if err != nil {
		return fail(err)
	}
	if tok != tokRightParen {
		return fail(zerr.With(domain.ErrSyntax, "function", name))
	}
	p.lex.discard(1)
	return true
}
