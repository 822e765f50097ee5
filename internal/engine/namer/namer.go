package namer

import (
	"bytes"
	"encoding/json"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/zerr"
)

// Namer assigns content-addressed file names to rendered chunks.
type Namer struct {
	template domain.Template
}

// New parses template and returns a Namer using it.
func New(template string) (*Namer, error) {
	t, err := domain.ParseTemplate(template)
	if err != nil {
		return nil, err
	}
	return &Namer{template: t}, nil
}

// Name hashes the content of every chunk and sets Hash and FileName. It fails
// with ErrOutputNameCollision when two chunks with different content map to
// the same file name. Byte-identical chunks may share a file.
func (n *Namer) Name(chunks []domain.Chunk) error {
	owners := make(map[string]*domain.Chunk, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		c.Hash = domain.ContentHash(c.Content)
		c.FileName = n.template.Execute(c.Name, c.Hash)

		if other, taken := owners[c.FileName]; taken {
			if other.Hash == c.Hash && bytes.Equal(other.Content, c.Content) {
				continue
			}
			return zerr.With(zerr.With(zerr.With(zerr.Wrap(domain.ErrOutputNameCollision, "cannot name chunks"),
				"file", c.FileName), "chunk", c.Name), "other_chunk", other.Name)
		}
		owners[c.FileName] = c
	}
	return nil
}

// NewManifest describes named chunks. Each entry lists the files it needs in
// load order: its shared imports, then its own file.
func NewManifest(chunks []domain.Chunk) domain.Manifest {
	files := make(map[string]string, len(chunks))
	for _, c := range chunks {
		files[c.Name] = c.FileName
	}

	m := domain.Manifest{
		Entries: make(map[string][]string),
		Chunks:  make([]domain.ManifestChunk, 0, len(chunks)),
	}
	for _, c := range chunks {
		modules := make([]string, len(c.Modules))
		for i, id := range c.Modules {
			modules[i] = id.String()
		}
		m.Chunks = append(m.Chunks, domain.ManifestChunk{
			Name:    c.Name,
			Kind:    c.Kind,
			File:    c.FileName,
			Hash:    c.Hash,
			Size:    len(c.Content),
			Modules: modules,
		})

		if c.Kind != domain.ChunkEntry {
			continue
		}
		load := make([]string, 0, len(c.Imports)+1)
		for _, imp := range c.Imports {
			load = append(load, files[imp])
		}
		m.Entries[c.Entry] = append(load, c.FileName)
	}
	return m
}

// EncodeManifest renders m as indented JSON.
func EncodeManifest(m domain.Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode manifest")
	}
	return append(data, '\n'), nil
}
