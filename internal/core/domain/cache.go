package domain

// CacheKey identifies a transform result.
// The content hash and transform configuration hash are part of the key, so a
// changed input can never be served a stale entry.
type CacheKey struct {
	Module      ModuleID `json:"module"`
	ContentHash string   `json:"content_hash"`
	ConfigHash  string   `json:"config_hash"`
}

// String returns a stable string form of the key.
func (k CacheKey) String() string {
	return k.Module.String() + "\x00" + k.ContentHash + "\x00" + k.ConfigHash
}

// Digest returns a fixed-width hash of the key suitable as a storage key.
func (k CacheKey) Digest() string {
	return Fingerprint(k.Module.String(), k.ContentHash, k.ConfigHash)
}

// CacheEntry is an immutable transform result.
type CacheEntry struct {
	Key        CacheKey `json:"key"`
	Output     []byte   `json:"output"`
	OutputHash string   `json:"output_hash"`
	// LastUsed is the build generation that last read or wrote the entry.
	LastUsed int64 `json:"last_used"`
}

// Touch returns a copy of the entry marked as used in generation.
func (e CacheEntry) Touch(generation int64) CacheEntry {
	e.LastUsed = generation
	return e
}

// CacheSnapshot is the persisted state of the build cache.
type CacheSnapshot struct {
	Generation int64        `json:"generation"`
	Entries    []CacheEntry `json:"entries"`
}
