package domain

import (
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

type placeholder uint8

const (
	literal placeholder = iota
	phName
	phContentHash
	phExt
)

type templatePart struct {
	kind  placeholder
	text  string
	width int
}

// Template is a parsed output filename template.
//
// Recognized placeholders are [name], [contenthash], [contenthash:N] with
// 1 <= N <= HashLen, and [ext].
type Template struct {
	raw   string
	parts []templatePart
}

// ParseTemplate parses s. Unknown placeholders, bad hash widths and unbalanced
// brackets are rejected with ErrInvalidTemplate.
func ParseTemplate(s string) (Template, error) {
	if s == "" {
		return Template{}, zerr.Wrap(ErrInvalidTemplate, "template is empty")
	}

	t := Template{raw: s}
	rest := s
	for rest != "" {
		open := strings.IndexByte(rest, '[')
		if open < 0 {
			if strings.IndexByte(rest, ']') >= 0 {
				return Template{}, invalidTemplate(s, "unbalanced ']'")
			}
			t.parts = append(t.parts, templatePart{kind: literal, text: rest})
			break
		}
		if open > 0 {
			if strings.IndexByte(rest[:open], ']') >= 0 {
				return Template{}, invalidTemplate(s, "unbalanced ']'")
			}
			t.parts = append(t.parts, templatePart{kind: literal, text: rest[:open]})
		}

		end := strings.IndexByte(rest[open:], ']')
		if end < 0 {
			return Template{}, invalidTemplate(s, "unterminated placeholder")
		}
		part, err := parsePlaceholder(rest[open+1 : open+end])
		if err != nil {
			return Template{}, zerr.With(err, "template", s)
		}
		t.parts = append(t.parts, part)
		rest = rest[open+end+1:]
	}

	return t, nil
}

func parsePlaceholder(body string) (templatePart, error) {
	switch body {
	case "name":
		return templatePart{kind: phName}, nil
	case "ext":
		return templatePart{kind: phExt}, nil
	case "contenthash":
		return templatePart{kind: phContentHash, width: HashLen}, nil
	}

	if arg, ok := strings.CutPrefix(body, "contenthash:"); ok {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > HashLen {
			return templatePart{}, zerr.With(zerr.Wrap(ErrInvalidTemplate, "hash length must be between 1 and 16"), "placeholder", "["+body+"]")
		}
		return templatePart{kind: phContentHash, width: n}, nil
	}

	return templatePart{}, zerr.With(zerr.Wrap(ErrInvalidTemplate, "unknown placeholder"), "placeholder", "["+body+"]")
}

func invalidTemplate(s, reason string) error {
	return zerr.With(zerr.Wrap(ErrInvalidTemplate, reason), "template", s)
}

// Execute substitutes the placeholders. hash must be a full content hash.
func (t Template) Execute(name, hash string) string {
	var b strings.Builder
	for _, p := range t.parts {
		switch p.kind {
		case literal:
			b.WriteString(p.text)
		case phName:
			b.WriteString(name)
		case phContentHash:
			b.WriteString(hash[:min(p.width, len(hash))])
		case phExt:
			b.WriteString(ChunkExt)
		}
	}
	return b.String()
}

// String returns the template source.
func (t Template) String() string {
	return t.raw
}
