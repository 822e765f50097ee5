package builder_test

import (
	"context"
	"strings"
	"sync"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

// project is an in-memory source tree. Specifiers are module ids.
type project map[string]string

func (p project) Resolve(_ context.Context, _ domain.ModuleID, spec string) (domain.ModuleID, error) {
	if _, ok := p[spec]; !ok {
		return domain.ModuleID{}, zerr.With(zerr.Wrap(domain.ErrModuleNotFound, "cannot resolve specifier"), "specifier", spec)
	}
	return domain.NewModuleID(spec), nil
}

func (p project) Read(_ context.Context, id domain.ModuleID) ([]byte, error) {
	src, ok := p[id.String()]
	if !ok || src == "<unreadable>" {
		return nil, zerr.With(zerr.Wrap(domain.ErrSourceReadFailed, "cannot read"), "module", id.String())
	}
	return []byte(src), nil
}

// lineParser treats every "import <spec>" line as a specifier.
type lineParser struct{}

func (lineParser) ExtractSpecifiers(_ context.Context, source []byte) ([]string, error) {
	var specs []string
	for line := range strings.Lines(string(source)) {
		if spec, ok := strings.CutPrefix(strings.TrimSpace(line), "import "); ok {
			specs = append(specs, spec)
		}
	}
	return specs, nil
}

// recordingChain uppercases content and records every application.
type recordingChain struct {
	mu      sync.Mutex
	applied []string
	apply   func(ctx context.Context, id domain.ModuleID)
}

var _ ports.Chain = (*recordingChain)(nil)

func (c *recordingChain) Fingerprint() string { return "upper" }

func (c *recordingChain) Opaque() bool { return false }

func (c *recordingChain) Apply(ctx context.Context, content []byte, id domain.ModuleID) ([]byte, error) {
	if c.apply != nil {
		c.apply(ctx, id)
	}
	c.mu.Lock()
	c.applied = append(c.applied, id.String())
	c.mu.Unlock()
	return []byte(strings.ToUpper(string(content))), nil
}

func (c *recordingChain) Applied() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.applied...)
}

func (c *recordingChain) Select(domain.ModuleID) ports.Chain { return c }
