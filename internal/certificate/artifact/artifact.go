// Package artifact stores rendered certificate PDFs on disk.
//
// The vault is deliberately dumb: it maps credential IDs to files under one
// directory and never deletes. Revocation checks belong to the serving
// boundary (the HTTP handler), so the orchestrator can still open revoked
// artifacts for audit.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"certo/pkg/platform/sentinel"
)

// Vault persists PDF artifacts under a single directory as
// {credentialId}.pdf. The store record's PDFPath is the public-relative
// /pdfs/{filename}.
type Vault struct {
	dir string
}

func NewVault(dir string) (*Vault, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Vault{dir: dir}, nil
}

// Save writes the artifact atomically (temp file + rename) so a crashed
// write never leaves a half-written PDF behind the published hash.
func (v *Vault) Save(credentialID string, data []byte) (string, error) {
	filename := credentialID + ".pdf"
	final := filepath.Join(v.dir, filename)

	tmp, err := os.CreateTemp(v.dir, filename+".tmp*")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("publish artifact: %w", err)
	}
	return "/pdfs/" + filename, nil
}

// Open reads an artifact by file name. File names are validated against
// traversal since they arrive from the URL path.
func (v *Vault) Open(filename string) ([]byte, error) {
	if !validFilename(filename) {
		return nil, sentinel.ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(v.dir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

// CredentialIDFor maps an artifact file name back to its credential ID.
func CredentialIDFor(filename string) (string, bool) {
	if !validFilename(filename) {
		return "", false
	}
	return strings.TrimSuffix(filename, ".pdf"), true
}

func validFilename(filename string) bool {
	if !strings.HasSuffix(filename, ".pdf") || filename == ".pdf" {
		return false
	}
	base := strings.TrimSuffix(filename, ".pdf")
	for _, r := range base {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
