package httpapi

import (
	"fmt"
	"sync"
)

// chunkAssembler buffers chunked audio uploads until the client signals
// completion. Chunks may arrive out of order; they are keyed by index.
type chunkAssembler struct {
	mu      sync.Mutex
	uploads map[string]map[int][]byte
}

func newChunkAssembler() *chunkAssembler {
	return &chunkAssembler{uploads: make(map[string]map[int][]byte)}
}

func uploadKey(sessionID, uploadID string) string {
	return sessionID + "/" + uploadID
}

func (a *chunkAssembler) add(sessionID, uploadID string, index int, data []byte) error {
	if uploadID == "" {
		return fmt.Errorf("upload_id is required")
	}
	if index < 0 {
		return fmt.Errorf("chunk_index must be non-negative")
	}
	if len(data) == 0 {
		return fmt.Errorf("chunk %d is empty", index)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := uploadKey(sessionID, uploadID)
	chunks, ok := a.uploads[key]
	if !ok {
		chunks = make(map[int][]byte)
		a.uploads[key] = chunks
	}
	chunks[index] = data

	return nil
}

// assemble concatenates the chunks in index order and discards the upload.
// Missing chunks fail the whole upload.
func (a *chunkAssembler) assemble(sessionID, uploadID string, total int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := uploadKey(sessionID, uploadID)
	chunks, ok := a.uploads[key]
	if !ok {
		return nil, fmt.Errorf("unknown upload %q", uploadID)
	}
	delete(a.uploads, key)

	if total <= 0 {
		total = len(chunks)
	}
	if len(chunks) != total {
		return nil, fmt.Errorf("upload %q has %d of %d chunks", uploadID, len(chunks), total)
	}

	var size int
	for i := 0; i < total; i++ {
		chunk, ok := chunks[i]
		if !ok {
			return nil, fmt.Errorf("upload %q is missing chunk %d", uploadID, i)
		}
		size += len(chunk)
	}

	audio := make([]byte, 0, size)
	for i := 0; i < total; i++ {
		audio = append(audio, chunks[i]...)
	}

	return audio, nil
}

// drop discards all pending uploads for the session.
func (a *chunkAssembler) drop(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	prefix := sessionID + "/"
	for key := range a.uploads {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			delete(a.uploads, key)
		}
	}
}
