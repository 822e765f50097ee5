// Package namer renders chunks, names them by content hash and builds the
// manifest.
package namer

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"

	"go.trai.ch/pack/internal/core/domain"
)

// Prelude defines the module registry shared by every chunk loaded into the
// same global scope. Loading it twice is a no-op.
const Prelude = `var __pack = (function (g) {
  if (g.__pack) return g.__pack;
  var defs = {}, cache = {};
  function r(id) {
    if (cache[id]) return cache[id].exports;
    var def = defs[id];
    if (!def) throw new Error("pack: module not found: " + id);
    var module = { id: id, exports: {} };
    cache[id] = module;
    def.fn.call(module.exports, module, module.exports, function (spec) {
      if (!Object.prototype.hasOwnProperty.call(def.deps, spec)) {
        throw new Error("pack: cannot find module '" + spec + "' from " + id);
      }
      return r(def.deps[spec]);
    });
    return module.exports;
  }
  function d(id, deps, fn) {
    if (!defs[id]) defs[id] = { deps: deps, fn: fn };
  }
  return (g.__pack = { d: d, r: r });
})(typeof globalThis !== "undefined" ? globalThis : this);
`

// Render produces the final bytes of chunk: the prelude, every module in
// emission order and, for entry chunks, the bootstrap of the entry root.
// Modules are addressed by identity only, so the bytes depend on nothing but
// the modules the chunk contains.
func Render(chunk domain.Chunk, graph *domain.ModuleGraph) []byte {
	var buf bytes.Buffer
	buf.WriteString(Prelude)

	for _, id := range chunk.Modules {
		buf.WriteString("__pack.d(")
		buf.WriteString(jsString(id.String()))
		buf.WriteString(", ")
		writeDependencyMap(&buf, graph.DependencyMap(id))
		buf.WriteString(", function (module, exports, require) {\n")

		m, ok := graph.Module(id)
		switch {
		case !ok || m.Failed:
			buf.WriteString("throw new Error(")
			buf.WriteString(jsString("pack: module failed to build: " + id.String()))
			buf.WriteString(");\n")
		case len(m.Output) > 0:
			buf.Write(m.Output)
			if m.Output[len(m.Output)-1] != '\n' {
				buf.WriteByte('\n')
			}
		}
		buf.WriteString("});\n")
	}

	if chunk.Kind == domain.ChunkEntry && !chunk.Root.IsZero() {
		buf.WriteString("__pack.r(")
		buf.WriteString(jsString(chunk.Root.String()))
		buf.WriteString(");\n")
	}

	return buf.Bytes()
}

func writeDependencyMap(buf *bytes.Buffer, deps map[string]domain.ModuleID) {
	buf.WriteByte('{')
	for i, spec := range slices.Sorted(maps.Keys(deps)) {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(jsString(spec))
		buf.WriteString(": ")
		buf.WriteString(jsString(deps[spec].String()))
	}
	buf.WriteByte('}')
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s) // marshaling a string cannot fail
	return string(b)
}
