package domain

// ChunkKind distinguishes entry chunks from shared chunks.
type ChunkKind string

const (
	// ChunkEntry is a chunk bootstrapping a single entry.
	ChunkEntry ChunkKind = "entry"
	// ChunkShared is a chunk holding modules reached from several entries.
	ChunkShared ChunkKind = "shared"
)

// SharedChunkPrefix prefixes the name of every shared chunk.
const SharedChunkPrefix = "shared"

// Chunk is a named group of modules emitted together as one output unit.
type Chunk struct {
	// Name is the chunk name used for the [name] placeholder.
	Name string
	// Kind is the chunk kind.
	Kind ChunkKind
	// Entry is the entry name for entry chunks.
	Entry string
	// Root is the entry root module for entry chunks.
	Root ModuleID
	// Modules is the emission sequence.
	Modules []ModuleID
	// Imports lists the shared chunks that must load before this chunk.
	Imports []string
	// Content is the rendered chunk, populated by the renderer.
	Content []byte
	// Hash is the content hash of Content.
	Hash string
	// FileName is the name assigned by the namer.
	FileName string
}

// Manifest maps entries to the files that must be loaded for them.
type Manifest struct {
	Entries map[string][]string `json:"entries"`
	Chunks  []ManifestChunk     `json:"chunks"`
}

// ManifestChunk describes one emitted chunk.
type ManifestChunk struct {
	Name    string    `json:"name"`
	Kind    ChunkKind `json:"kind"`
	File    string    `json:"file"`
	Hash    string    `json:"hash"`
	Size    int       `json:"size"`
	Modules []string  `json:"modules"`
}
