package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/astrosignal/astroalert/internal/domain"
)

// Archiver moves aged alert rows out of the primary store and into blob
// storage. It queries alerts older than a cutoff, serializes them to JSONL,
// uploads the file, and only then deletes the archived rows.
type Archiver struct {
	writer domain.BlobWriter
	alerts domain.AlertStore
	logger *slog.Logger
}

// NewArchiver creates a new Archiver.
func NewArchiver(writer domain.BlobWriter, alerts domain.AlertStore, logger *slog.Logger) *Archiver {
	return &Archiver{
		writer: writer,
		alerts: alerts,
		logger: logger,
	}
}

// ArchiveAlerts archives all alerts emitted strictly before the cutoff to
// archive/alerts/YYYY-MM.jsonl and deletes them from the store once the
// upload has succeeded. It returns the number of archived records.
func (a *Archiver) ArchiveAlerts(ctx context.Context, before time.Time) (int64, error) {
	alerts, err := a.alerts.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive alerts query: %w", err)
	}
	if len(alerts) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(alerts)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive alerts marshal: %w", err)
	}

	path := archivePath("alerts", before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive alerts upload: %w", err)
	}

	deleted, err := a.alerts.DeleteBefore(ctx, before)
	if err != nil {
		// The upload succeeded, so the data is safe; the rows will be
		// retried (and deduplicated by the store) on the next run.
		return int64(len(alerts)), fmt.Errorf("s3blob: archive alerts delete: %w", err)
	}

	a.logger.InfoContext(ctx, "archived alerts",
		slog.String("path", path),
		slog.Int("count", len(alerts)),
		slog.Int64("deleted", deleted),
		slog.String("before", before.Format(time.RFC3339)),
	)

	return int64(len(alerts)), nil
}

// archivePath builds the blob key for an archive file, partitioned by the
// year-month of the cutoff time.
//
//	archive/alerts/2026-08.jsonl
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.Format("2006-01"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
