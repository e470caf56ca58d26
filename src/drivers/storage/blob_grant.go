package storage

import (
	"fmt"
	"mime"
	"strings"
)

// BlobGrant is the payload of a signed local blob URL
type BlobGrant struct {
	BlobID      string      `json:"blob_id"`
	Filename    string      `json:"filename"`
	ContentType string      `json:"content_type"`
	Disposition Disposition `json:"disposition"`
}

// BlobURLSigner issues the short-lived tokens embedded in local blob URLs
type BlobURLSigner interface {
	GenerateBlobToken(grant BlobGrant) (string, error)
}

// ContentDisposition renders the Content-Disposition header for a grant
func (g BlobGrant) ContentDisposition() string {
	disposition := string(g.Disposition)
	if disposition == "" {
		disposition = string(DispositionInline)
	}
	if g.Filename == "" {
		return disposition
	}
	if header := mime.FormatMediaType(disposition, map[string]string{"filename": g.Filename}); header != "" {
		return header
	}
	// FormatMediaType rejects some names; fall back to a quoted ASCII form.
	safe := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, g.Filename)
	return fmt.Sprintf(`%s; filename="%s"`, disposition, safe)
}
