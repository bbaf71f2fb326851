// Package mela reads Mela recipe export containers.
//
// An export is either a zip of .melarecipe JSON documents, a zip whose
// entries are themselves such zips (Mela nests one level when exporting
// folders), or a single bare .melarecipe file. Records are decoded one at
// a time and image payloads are only decoded on request, so arbitrarily
// large exports never pull every image into memory at once.
package mela

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
	"github.com/hammamikhairi/mela2mealie/internal/logger"
)

// Compile-time interface check.
var _ domain.ExportSource = (*Archive)(nil)

// Archive reads recipes out of a Mela export on disk. Each read operation
// opens the file fresh, so an Archive holds no file handles between calls.
type Archive struct {
	path   string
	single bool
	log    *logger.Logger
}

// Open validates that path points at a readable export with at least one
// recipe record. Returns domain.ErrEmptyExport for a container with no
// records.
func Open(path string, log *logger.Logger) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err == nil {
		zr.Close()
		a := &Archive{path: path, log: log}
		count := 0
		err := a.walkEntries(context.Background(), func(string, []byte) error {
			count++
			return nil
		})
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, fmt.Errorf("mela: %s: %w", path, domain.ErrEmptyExport)
		}
		log.Debug("mela: %s opened, %d entries", path, count)
		return a, nil
	}
	if !errors.Is(err, zip.ErrFormat) {
		return nil, fmt.Errorf("mela: open export: %w", err)
	}

	// Not a zip, so it must be a single bare recipe document.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mela: read export: %w", err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("mela: %s is neither a zip archive nor a recipe document: %w", path, err)
	}
	log.Debug("mela: %s opened as a single recipe document", path)
	return &Archive{path: path, single: true, log: log}, nil
}

// Path returns the location of the export on disk.
func (a *Archive) Path() string {
	return a.path
}

// Walk decodes each recipe record in container order and hands it to fn.
// Entries that fail to decode are skipped with a warning. A non-nil error
// from fn aborts the walk.
func (a *Archive) Walk(ctx context.Context, fn func(*domain.ExportRecipe) error) error {
	return a.walkEntries(ctx, func(name string, data []byte) error {
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			a.log.Warn("mela: skipping %s: not a valid recipe document: %v", name, err)
			return nil
		}
		return fn(rec.export(entryID(name)))
	})
}

// Image locates the record with the given id and decodes its first image.
// Returns (nil, nil) when the record carries no image.
func (a *Archive) Image(ctx context.Context, id string) (*domain.ImageBlob, error) {
	var blob *domain.ImageBlob
	found := false
	err := a.walkEntries(ctx, func(name string, data []byte) error {
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil
		}
		recID := rec.ID
		if recID == "" {
			recID = entryID(name)
		}
		if recID != id {
			return nil
		}
		found = true
		if len(rec.Images) == 0 {
			return errStopWalk
		}
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(rec.Images[0]))
		if err != nil {
			return fmt.Errorf("mela: image for %s: %w", id, err)
		}
		blob = &domain.ImageBlob{Data: raw, Ext: sniffExt(raw)}
		a.log.Debug("mela: decoded %s image for %s (%s)", blob.Ext, id, humanize.Bytes(uint64(len(raw))))
		return errStopWalk
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("mela: no record with id %s: %w", id, domain.ErrNotFound)
	}
	return blob, nil
}

// Close releases the archive. Reads open the file per call, so there is
// nothing held to release; Close exists to satisfy the source contract.
func (a *Archive) Close() error {
	return nil
}

// errStopWalk terminates walkEntries early without signalling failure.
var errStopWalk = errors.New("mela: stop walk")

// walkEntries yields the raw bytes of every record entry, unwrapping one
// level of nested containers. The context is checked between entries.
func (a *Archive) walkEntries(ctx context.Context, fn func(name string, data []byte) error) error {
	if a.single {
		data, err := os.ReadFile(a.path)
		if err != nil {
			return fmt.Errorf("mela: read export: %w", err)
		}
		return fn(filepath.Base(a.path), data)
	}

	zr, err := zip.OpenReader(a.path)
	if err != nil {
		return fmt.Errorf("mela: open export: %w", err)
	}
	defer zr.Close()

	for _, entry := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.FileInfo().IsDir() {
			continue
		}
		data, err := readEntry(entry)
		if err != nil {
			return err
		}
		if !isZip(data) {
			if err := fn(entry.Name, data); err != nil {
				return err
			}
			continue
		}

		// A nested container: a folder export wraps each sub-export as
		// its own zip. Unwrap exactly one level.
		inner, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return fmt.Errorf("mela: nested container %s: %w", entry.Name, err)
		}
		for _, sub := range inner.File {
			if err := ctx.Err(); err != nil {
				return err
			}
			if sub.FileInfo().IsDir() {
				continue
			}
			subData, err := readEntry(sub)
			if err != nil {
				return err
			}
			if err := fn(sub.Name, subData); err != nil {
				return err
			}
		}
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("mela: entry %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("mela: entry %s: %w", f.Name, err)
	}
	return data, nil
}

// entryID derives a stable record identity from an entry name for records
// that carry no id field.
func entryID(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

// isZip reports whether data starts with the zip local-file magic.
func isZip(data []byte) bool {
	return len(data) >= 4 && data[0] == 'P' && data[1] == 'K' && data[2] == 3 && data[3] == 4
}

// sniffExt detects the image format from its leading bytes. Anything that
// is not recognisably PNG or WEBP is treated as JPEG, which is what Mela
// exports by default.
func sniffExt(data []byte) string {
	if len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}) {
		return "png"
	}
	if len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")) {
		return "webp"
	}
	return "jpg"
}
