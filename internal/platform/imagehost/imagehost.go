// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

/*
Package imagehost stores user avatars and course thumbnails on an
S3-compatible object store.

Uploads arrive inline as base64, either as a data URI
("data:image/png;base64,...") or as bare base64. Only JPEG, PNG, WebP and
GIF content is accepted. The returned [Image] is
persisted on the owning document and its PublicID is the handle for later
deletion.
*/
package imagehost

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidPayload is returned when an upload is not base64 of a supported image.
var ErrInvalidPayload = errors.New("imagehost: invalid image payload")

// Image is a hosted image reference.
type Image struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// Host uploads and deletes hosted images.
type Host interface {
	Upload(ctx context.Context, folder, payload string) (Image, error)
	Delete(ctx context.Context, publicID string) error
}

// allowedTypes maps every accepted image type to its object extension.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// decoded is a parsed upload payload.
type decoded struct {
	data        []byte
	contentType string
	extension   string
}

// decodePayload parses a data URI or bare base64 string. The stored type is
// always the sniffed one, and a data URI must declare that same type.
func decodePayload(payload string) (decoded, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return decoded{}, ErrInvalidPayload
	}

	declaredType := ""
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		header, body, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return decoded{}, ErrInvalidPayload
		}
		declaredType = strings.ToLower(strings.TrimSuffix(header, ";base64"))
		if declaredType == "image/jpg" {
			declaredType = "image/jpeg"
		}
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return decoded{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if len(data) == 0 {
		return decoded{}, ErrInvalidPayload
	}

	sniffed := http.DetectContentType(data)
	extension, allowed := allowedTypes[sniffed]
	if !allowed {
		return decoded{}, fmt.Errorf("%w: unsupported content type %q", ErrInvalidPayload, sniffed)
	}
	if declaredType != "" && declaredType != sniffed {
		return decoded{}, fmt.Errorf("%w: declared %q but content is %q", ErrInvalidPayload, declaredType, sniffed)
	}

	return decoded{data: data, contentType: sniffed, extension: extension}, nil
}
