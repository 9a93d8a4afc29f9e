package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/joyeria/backend-go/internal/catalog"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound    = errors.New("drive: not found")
	ErrUnsupported = errors.New("drive: unsupported file type")
)

// Source is the part of Drive the importer needs.
type Source interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	GetFile(ctx context.Context, fileID string) (*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
	ExportXLSX(ctx context.Context, fileID string, w io.Writer) error
}

// CatalogImporter upserts products from a catalog spreadsheet.
type CatalogImporter interface {
	ImportCatalog(ctx context.Context, filename string, r io.Reader, userID *string) (*catalog.Report, error)
}

// Importer pulls product catalogs from Drive into the inventory.
type Importer struct {
	source      Source
	catalog     CatalogImporter
	downloadDir string
}

// NewImporter keeps a local copy of every imported file in downloadDir
// when it is not empty.
func NewImporter(source Source, catalog CatalogImporter, downloadDir string) *Importer {
	return &Importer{source: source, catalog: catalog, downloadDir: downloadDir}
}

// ImportFile imports a single CSV, XLSX or native Google Sheet.
func (im *Importer) ImportFile(ctx context.Context, fileID string) (*catalog.Report, error) {
	f, err := im.source.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return im.importFile(ctx, f)
}

// ImportFolder imports every catalog file in a folder. A file that fails
// is reported and does not stop the others.
func (im *Importer) ImportFolder(ctx context.Context, folderID string) ([]*catalog.Report, error) {
	files, err := im.source.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	var reports []*catalog.Report
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		if !importable(f) {
			continue
		}

		report, err := im.importFile(ctx, f)
		if err != nil {
			log.Error().Err(err).Str("file", f.Name).Msg("Drive import failed")
			reports = append(reports, &catalog.Report{
				File:   f.Name,
				Errors: []catalog.RowError{{Message: err.Error()}},
			})
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (im *Importer) importFile(ctx context.Context, f *File) (*catalog.Report, error) {
	if !importable(f) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, f.Name)
	}

	name := f.Name
	var buf bytes.Buffer
	if f.IsSpreadsheet() {
		if err := im.source.ExportXLSX(ctx, f.ID, &buf); err != nil {
			return nil, err
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".xlsx"
	} else if err := im.source.DownloadFile(ctx, f.ID, &buf); err != nil {
		return nil, err
	}

	if err := im.keepCopy(name, buf.Bytes()); err != nil {
		log.Warn().Err(err).Str("file", name).Msg("Failed to keep local copy of drive file")
	}

	log.Info().Str("file", name).Int("bytes", buf.Len()).Msg("Importing catalog from drive")
	return im.catalog.ImportCatalog(ctx, name, &buf, nil)
}

func (im *Importer) keepCopy(name string, data []byte) error {
	if im.downloadDir == "" {
		return nil
	}
	if err := os.MkdirAll(im.downloadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}
	return os.WriteFile(filepath.Join(im.downloadDir, filepath.Base(name)), data, 0o644)
}

func importable(f *File) bool {
	return f.IsSpreadsheet() || catalog.IsSupported(f.Name)
}
