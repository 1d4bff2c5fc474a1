package store

import "sync"

// Key prefixes for the per-entity tables.
const (
	promptPrefix         = "prompt:"             // prompt:{id} → PromptVersion JSON
	promptByRootPrefix   = "idx:prompts:root:"   // idx:prompts:root:{rootID}:{versionID} → empty
	promptLatestPrefix   = "idx:prompts:latest:" // idx:prompts:latest:{rootID} → versionID
	tagPrefix            = "tag:"                // tag:{id} → Tag JSON
	tagByPathPrefix      = "idx:tags:path:"      // idx:tags:path:{fullPath} → tagID
	relationPrefix       = "rel:"                // rel:{id} → PromptTagRelation JSON
	relByPromptPrefix    = "idx:rel:prompt:"     // idx:rel:prompt:{promptID}:{tagID} → relID
	relByTagPrefix       = "idx:rel:tag:"        // idx:rel:tag:{tagID}:{promptID} → relID
)

// keyPool provides reusable byte slices for building database keys.
// This reduces allocations on the hot path of database operations.
var keyPool = sync.Pool{
	New: func() any {
		// 256 bytes covers prefix + NanoID with room to spare.
		return make([]byte, 0, 256)
	},
}

// buildKey constructs a database key from prefix and suffix using a pooled buffer.
// Callers MUST call releaseKey when done with the key.
//
// Usage:
//
//	key := buildKey(promptPrefix, versionID)
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildKey(prefix, suffix string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0] // Reset length, keep capacity
	buf = append(buf, prefix...)
	buf = append(buf, suffix...)
	return buf
}

// releaseKey returns a key buffer to the pool for reuse.
// After calling this, the key slice must not be used.
func releaseKey(key []byte) {
	// Only pool buffers with reasonable capacity.
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}
