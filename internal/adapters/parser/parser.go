// Package parser extracts dependency specifiers from JavaScript sources using tree-sitter.
package parser

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Parser = (*JavaScript)(nil)

const (
	nodeImportStatement = "import_statement"
	nodeExportStatement = "export_statement"
	nodeCallExpression  = "call_expression"
	nodeString          = "string"
	nodeStringFragment  = "string_fragment"
	nodeIdentifier      = "identifier"
	nodeImport          = "import"
	nodeArguments       = "arguments"
	nodeTemplateString  = "template_string"

	nodeTemplateSubstitution = "template_substitution"
)

// JavaScript extracts static import, export-from, require and dynamic import
// specifiers. It is safe for concurrent use; each call uses its own parser.
type JavaScript struct{}

// NewJavaScript creates a new JavaScript parser.
func NewJavaScript() *JavaScript {
	return &JavaScript{}
}

// ExtractSpecifiers returns the specifiers declared in source, in source order.
// Only string literal specifiers are reported.
func (p *JavaScript) ExtractSpecifiers(ctx context.Context, source []byte) ([]string, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrParseFailed.Error())
	}
	defer tree.Close()

	var specs []string
	p.walk(tree.RootNode(), source, &specs)
	return specs, nil
}

func (p *JavaScript) walk(node *sitter.Node, source []byte, specs *[]string) {
	if node == nil {
		return
	}

	switch node.Type() {
	case nodeImportStatement, nodeExportStatement:
		if src := node.ChildByFieldName("source"); src != nil && src.Type() == nodeString {
			*specs = append(*specs, stringContent(src, source))
		}
	case nodeCallExpression:
		if spec, ok := callSpecifier(node, source); ok {
			*specs = append(*specs, spec)
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		p.walk(node.Child(i), source, specs)
	}
}

// callSpecifier matches require("x") and import("x").
func callSpecifier(node *sitter.Node, source []byte) (string, bool) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return "", false
	}

	switch fn.Type() {
	case nodeIdentifier:
		if fn.Content(source) != "require" {
			return "", false
		}
	case nodeImport:
	default:
		return "", false
	}

	args := node.ChildByFieldName("arguments")
	if args == nil || args.Type() != nodeArguments || args.NamedChildCount() != 1 {
		return "", false
	}

	arg := args.NamedChild(0)
	switch arg.Type() {
	case nodeString:
		return stringContent(arg, source), true
	case nodeTemplateString:
		if isStaticTemplate(arg) {
			text := arg.Content(source)
			return text[1 : len(text)-1], true
		}
	}
	return "", false
}

func isStaticTemplate(node *sitter.Node) bool {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if node.NamedChild(i).Type() == nodeTemplateSubstitution {
			return false
		}
	}
	return true
}

// stringContent returns the content of a string literal without quotes.
func stringContent(node *sitter.Node, source []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeStringFragment {
			return child.Content(source)
		}
	}
	text := node.Content(source)
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}
