package rulefile

import (
	"bufio"
	"errors"
	"io"
	"os"

	"go.trai.ch/zerr"

	"github.com/remake-build/remake/internal/core/domain"
	"github.com/remake-build/remake/internal/core/ports"
)

// Loader parses rule files into rule sets. Every target and prerequisite
// is normalized against the working directory during parsing, so the rest
// of the system sees exactly one spelling per file.
type Loader struct {
	norm *domain.Normalizer
	log  ports.Logger
}

// New returns a loader that normalizes names with norm.
func New(norm *domain.Normalizer, log ports.Logger) *Loader {
	return &Loader{norm: norm, log: log}
}

// Load parses the rule file at path. Persisted prerequisites already
// present in deps are folded into the shared records of scripted rules as
// they register.
func (l *Loader) Load(path string, deps *domain.DependencySet) (*domain.RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrNoRuleFile.Error()), "file", path)
	}
	defer f.Close()
	rules, err := l.Parse(f, deps)
	if err != nil {
		return nil, zerr.With(err, "file", path)
	}
	return rules, nil
}

// Parse consumes one whole rule file from r.
func (l *Loader) Parse(r io.Reader, deps *domain.DependencySet) (*domain.RuleSet, error) {
	p := &parser{
		lex:   &lexer{in: bufio.NewReader(r)},
		rules: domain.NewRuleSet(),
		deps:  deps,
		norm:  l.norm,
		log:   l.log,
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.rules, nil
}

type parser struct {
	lex   *lexer
	rules *domain.RuleSet
	deps  *domain.DependencySet
	norm  *domain.Normalizer
	log   ports.Logger
}

// run drives the top level: comment lines, global assignments, and rules.
// Indentation is only legal inside a rule body, which the rule parser
// consumes itself, so any indented line seen here is an error.
func (p *parser) run() error {
	if err := p.lex.skipEOL(); err != nil {
		return err
	}
	for {
		c, err := p.lex.peek()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if c == '#' {
			if err := p.lex.skipLine(); err != nil {
				return err
			}
			continue
		}
		if c == ' ' || c == '\t' {
			return zerr.Wrap(domain.ErrSyntax, "unexpected indentation")
		}
		tok, err := p.lex.next()
		if err != nil {
			return err
		}
		switch tok {
		case tokWord:
			if err := p.statement(); err != nil {
				return err
			}
		case tokDollarParen:
			if err := p.rule(""); err != nil {
				return err
			}
		case tokEof:
			return nil
		default:
			return zerr.Wrap(domain.ErrSyntax, "expected rule or assignment")
		}
	}
}

// statement parses a line that starts with a word: a global variable
// assignment when the word is followed by = or +=, otherwise a rule whose
// first target is that word.
func (p *parser) statement() error {
	name, err := p.lex.word()
	if err != nil {
		return err
	}
	if name == "" {
		return zerr.Wrap(domain.ErrSyntax, "empty name")
	}
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	switch tok {
	case tokEqual:
		p.lex.discard(1)
		words, err := p.words()
		if err != nil {
			return err
		}
		p.rules.Vars.Set(name, words)
	case tokPlusEqual:
		if err := p.acceptPlusEqual(); err != nil {
			return err
		}
		words, err := p.words()
		if err != nil {
			return err
		}
		p.rules.Vars.Append(name, words)
	default:
		return p.rule(name)
	}
	p.log.Debug("assigned variable", "name", name)
	return p.lex.skipEOL()
}

// rule parses one rule from its header through its script. first is the
// already consumed first target; it is empty when the header starts with
// an expansion.
func (p *parser) rule(first string) error {
	targets, err := p.words()
	if err != nil {
		return err
	}
	if first != "" {
		targets = append([]string{first}, targets...)
	} else if len(targets) == 0 {
		return zerr.Wrap(domain.ErrSyntax, "rule without targets")
	}
	targets = p.norm.NormalizeAll(targets)
	for _, t := range targets {
		if t == "" {
			return zerr.Wrap(domain.ErrSyntax, "empty target name")
		}
	}
	r := &domain.Rule{Targets: targets}
	if err := r.CheckGenericity(); err != nil {
		return err
	}

	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	if tok != tokColon {
		return zerr.Wrap(domain.ErrSyntax, "expected : after targets")
	}
	p.lex.discard(1)

	if err := p.tail(r); err != nil {
		return err
	}

	script, err := p.lex.script()
	if err != nil {
		return err
	}
	r.Script = script

	if err := p.register(r); err != nil {
		return err
	}
	p.log.Debug("loaded rule", "target", r.Targets[0])
	return nil
}

// tail parses what follows the colon of a rule header: either the
// prerequisite list or a single variable assignment local to the rule.
func (p *parser) tail(r *domain.Rule) error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	if tok == tokWord {
		first, err := p.lex.word()
		if err != nil {
			return err
		}
		tok, err = p.lex.next()
		if err != nil {
			return err
		}
		if tok == tokEqual || tok == tokPlusEqual {
			return p.localAssign(r, first, tok)
		}
		rest, err := p.words()
		if err != nil {
			return err
		}
		r.Prereqs = p.norm.NormalizeAll(append([]string{first}, rest...))
	} else {
		prereqs, err := p.words()
		if err != nil {
			return err
		}
		r.Prereqs = p.norm.NormalizeAll(prereqs)
	}
	return p.endOfHeader()
}

// localAssign parses the value of a rule-local assignment. Values are
// variable contents rather than file names, so they are not normalized.
func (p *parser) localAssign(r *domain.Rule, name string, op token) error {
	if op == tokPlusEqual {
		if err := p.acceptPlusEqual(); err != nil {
			return err
		}
	} else {
		p.lex.discard(1)
	}
	value, err := p.words()
	if err != nil {
		return err
	}
	r.Assigns = append(r.Assigns, domain.Assignment{
		Name:   name,
		Append: op == tokPlusEqual,
		Value:  value,
	})
	return p.endOfHeader()
}

// endOfHeader requires the rule header to stop at a line end; a header cut
// short by the end of the file is malformed.
func (p *parser) endOfHeader() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	if tok != tokEol {
		return zerr.Wrap(domain.ErrSyntax, "expected line end after rule header")
	}
	return p.lex.skipEOL()
}

// acceptPlusEqual consumes a += operator; a lone + is not a valid token.
func (p *parser) acceptPlusEqual() error {
	p.lex.discard(1)
	c, err := p.lex.peek()
	if err != nil || c != '=' {
		return zerr.Wrap(domain.ErrSyntax, "expected = after +")
	}
	p.lex.discard(1)
	return nil
}

func (p *parser) register(r *domain.Rule) error {
	if r.Generic() {
		return p.rules.RegisterGeneric(r)
	}
	if r.Transparent() {
		return p.rules.RegisterTransparent(r, p.deps)
	}
	return p.rules.RegisterScripted(r, p.deps)
}
