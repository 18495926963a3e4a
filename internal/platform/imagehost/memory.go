// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package imagehost

import (
	"context"
	"path"
	"sync"

	"github.com/Nikhilrai1/lms/pkg/uuid"
)

// MemoryHost keeps uploads in process. It serves local development without
// an object store and handler tests.
type MemoryHost struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
}

// NewMemoryHost creates a [MemoryHost] whose URLs start with baseURL.
func NewMemoryHost(baseURL string) *MemoryHost {
	return &MemoryHost{baseURL: baseURL, objects: make(map[string][]byte)}
}

// Upload implements [Host].
func (h *MemoryHost) Upload(_ context.Context, folder, payload string) (Image, error) {
	image, err := decodePayload(payload)
	if err != nil {
		return Image{}, err
	}

	key := path.Join(folder, uuid.New()+image.extension)

	h.mu.Lock()
	h.objects[key] = image.data
	h.mu.Unlock()

	return Image{PublicID: key, URL: h.baseURL + "/" + key}, nil
}

// Delete implements [Host].
func (h *MemoryHost) Delete(_ context.Context, publicID string) error {
	h.mu.Lock()
	delete(h.objects, publicID)
	h.mu.Unlock()
	return nil
}

// Has reports whether publicID is stored.
func (h *MemoryHost) Has(publicID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.objects[publicID]
	return ok
}
