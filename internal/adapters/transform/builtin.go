package transform

import (
	"bytes"
	"context"
	"encoding/json"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/zerr"
)

// Built-in loader names.
const (
	LoaderIdentity = "identity"
	LoaderJSON     = "json"
	LoaderText     = "text"
	LoaderExec     = "exec"
)

// opaque is implemented by transforms whose input is not JavaScript.
type opaque interface {
	Opaque() bool
}

type identity struct{}

func (identity) Name() string { return LoaderIdentity }

func (identity) Apply(_ context.Context, content []byte, _ domain.ModuleID) ([]byte, error) {
	return content, nil
}

// jsonModule turns a JSON document into a CommonJS module exporting it.
type jsonModule struct{}

func (jsonModule) Name() string { return LoaderJSON }

func (jsonModule) Opaque() bool { return true }

func (jsonModule) Apply(_ context.Context, content []byte, id domain.ModuleID) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("module.exports = ")
	if err := json.Compact(&buf, content); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidJSONModule.Error()), "module", id.String())
	}
	buf.WriteString(";\n")
	return buf.Bytes(), nil
}

// textModule exports the raw content as a string.
type textModule struct{}

func (textModule) Name() string { return LoaderText }

func (textModule) Opaque() bool { return true }

func (textModule) Apply(_ context.Context, content []byte, _ domain.ModuleID) ([]byte, error) {
	// A JSON string literal is a valid JavaScript string literal.
	quoted, err := json.Marshal(string(content))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(quoted)+20)
	out = append(out, "module.exports = "...)
	out = append(out, quoted...)
	out = append(out, ";\n"...)
	return out, nil
}
