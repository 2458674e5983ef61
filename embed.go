// Package rolodex provides the embedded sample contacts and an overlay
// filesystem that checks local disk first, falling back to embedded.
package rolodex

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/smileynet/rolodex/internal/contact"
	"github.com/smileynet/rolodex/internal/validate"
)

//go:embed seed/contacts.yaml
var rawSeed embed.FS

// Seed is the embedded seed filesystem with the "seed/" prefix stripped.
var Seed = mustSub(rawSeed, "seed")

// SeedName is the seed file name inside Seed and inside a local override dir.
const SeedName = "contacts.yaml"

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// OverlayFS returns a filesystem that checks localDir on disk first,
// falling back to the embedded filesystem for files not found locally.
func OverlayFS(localDir string, embedded fs.FS) fs.FS {
	return overlayFS{localDir: localDir, embedded: embedded}
}

type overlayFS struct {
	localDir string
	embedded fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	f, err := os.Open(filepath.Join(o.localDir, filepath.FromSlash(name)))
	if err == nil {
		return f, nil
	}
	return o.embedded.Open(name)
}

// SeedContacts returns the contacts loaded at startup. A non-empty file is
// read from disk and must exist. Otherwise contacts.yaml in localDir wins
// over the embedded copy.
func SeedContacts(localDir, file string) ([]contact.Contact, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("seed: reading %s: %w", file, err)
		}
		return ParseContacts(file, data)
	}

	data, err := fs.ReadFile(OverlayFS(localDir, Seed), SeedName)
	if err != nil {
		return nil, fmt.Errorf("seed: reading %s: %w", SeedName, err)
	}
	return ParseContacts(SeedName, data)
}

// ParseContacts decodes a YAML list of contacts. Unknown keys are rejected
// and every entry must pass the same checks as the new-contact form.
// name is only used in error messages.
func ParseContacts(name string, data []byte) ([]contact.Contact, error) {
	var cs []contact.Contact
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("seed: parsing %s: %w", name, err)
	}

	for i, c := range cs {
		res := validate.ValidateForm(validate.FieldsOf(c))
		if !res.Valid {
			return nil, fmt.Errorf("seed: %s entry %d: %w", name, i+1, res.Failures[0])
		}
	}
	return cs, nil
}
