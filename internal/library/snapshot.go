package library

import (
	"context"
	"fmt"

	"github.com/hnakamura/examdeck/internal/snapshot"
)

// ExportSnapshot produces an encoded portable document of the current state,
// with every image payload inlined.
func (l *Library) ExportSnapshot(ctx context.Context, opts snapshot.ExportOptions, format snapshot.Format) ([]byte, *snapshot.ExportResult, error) {
	doc, result, err := snapshot.NewExporter(l.blobs).Export(ctx, l.store.State(), opts)
	if err != nil {
		return nil, nil, fmt.Errorf("Export() > %w", err)
	}
	encoded, err := doc.Encode(format)
	if err != nil {
		return nil, nil, fmt.Errorf("Encode(%s) > %w", format, err)
	}
	return encoded, result, nil
}

// ImportSnapshot parses an encoded portable document and commits it in the
// given mode. Inline payloads are extracted to the blob store before any
// record is committed.
func (l *Library) ImportSnapshot(ctx context.Context, data []byte, mode snapshot.ImportMode) (*snapshot.ImportResult, error) {
	doc, err := snapshot.Parse(data)
	if err != nil {
		return nil, err
	}
	return snapshot.NewImporter(l.blobs, l.store).Import(ctx, doc, mode)
}
