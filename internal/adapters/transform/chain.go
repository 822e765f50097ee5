package transform

import (
	"context"
	"encoding/json"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Chain = (*Chain)(nil)

// Chain runs an ordered list of transforms.
type Chain struct {
	steps       []ports.Transform
	fingerprint string
	opaque      bool
}

// NewChain creates a chain from steps. options holds the per-step options in
// the same order and contributes to the fingerprint.
func NewChain(steps []ports.Transform, options []map[string]any) *Chain {
	parts := make([]string, 0, len(steps)*2)
	isOpaque := false
	for i, s := range steps {
		parts = append(parts, s.Name())
		if i < len(options) && len(options[i]) > 0 {
			// encoding/json sorts map keys, which keeps the fingerprint stable.
			raw, _ := json.Marshal(options[i])
			parts = append(parts, string(raw))
		} else {
			parts = append(parts, "")
		}
		if o, ok := s.(opaque); ok && o.Opaque() {
			isOpaque = true
		}
	}

	return &Chain{
		steps:       steps,
		fingerprint: domain.Fingerprint(parts...),
		opaque:      isOpaque,
	}
}

// Fingerprint identifies the chain and its options.
func (c *Chain) Fingerprint() string {
	return c.fingerprint
}

// Opaque reports whether the input of the chain must not be parsed as JavaScript.
func (c *Chain) Opaque() bool {
	return c.opaque
}

// Apply runs every step in order, feeding the output of one into the next.
func (c *Chain) Apply(ctx context.Context, content []byte, id domain.ModuleID) ([]byte, error) {
	out := content
	for _, s := range c.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := s.Apply(ctx, out, id)
		if err != nil {
			return nil, zerr.With(zerr.With(zerr.Wrap(err, domain.ErrTransformFailed.Error()), "loader", s.Name()), "module", id.String())
		}
		out = next
	}
	return out, nil
}
