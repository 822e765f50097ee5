// Package transform selects and runs the loader chain of each module.
package transform

import (
	"regexp"

	"go.trai.ch/pack/internal/adapters/shell"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TransformSelector = (*Registry)(nil)

type rule struct {
	test  *regexp.Regexp
	chain *Chain
}

// Registry maps module identities to loader chains. The first matching rule wins.
type Registry struct {
	rules    []rule
	fallback *Chain
}

// NewRegistry compiles the loader rules of a project rooted at root.
func NewRegistry(root string, rules []domain.LoaderRule, logger ports.Logger) (*Registry, error) {
	r := &Registry{
		rules:    make([]rule, 0, len(rules)),
		fallback: NewChain([]ports.Transform{identity{}}, nil),
	}

	for _, lr := range rules {
		re, err := regexp.Compile(lr.Test)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidLoaderPattern.Error()), "test", lr.Test)
		}

		steps := make([]ports.Transform, 0, len(lr.Use))
		options := make([]map[string]any, 0, len(lr.Use))
		for _, use := range lr.Use {
			t, err := newTransform(root, use, logger)
			if err != nil {
				return nil, zerr.With(err, "test", lr.Test)
			}
			steps = append(steps, t)
			options = append(options, use.Options)
		}
		if len(steps) == 0 {
			steps = append(steps, identity{})
			options = append(options, nil)
		}

		r.rules = append(r.rules, rule{test: re, chain: NewChain(steps, options)})
	}

	return r, nil
}

// Select returns the chain of the first rule whose test matches id, or the
// identity chain.
func (r *Registry) Select(id domain.ModuleID) ports.Chain {
	s := id.String()
	for _, rl := range r.rules {
		if rl.test.MatchString(s) {
			return rl.chain
		}
	}
	return r.fallback
}

func newTransform(root string, use domain.LoaderUse, logger ports.Logger) (ports.Transform, error) {
	switch use.Loader {
	case LoaderIdentity:
		return identity{}, nil
	case LoaderJSON:
		return jsonModule{}, nil
	case LoaderText:
		return textModule{}, nil
	case LoaderExec:
		if use.Command == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrUnknownLoader, "exec loader requires a command"), "loader", use.Loader)
		}
		return shell.NewCommand(root, use, logger), nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownLoader, "cannot build loader chain"), "loader", use.Loader)
	}
}
