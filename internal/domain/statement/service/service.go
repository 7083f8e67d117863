// Package service orchestrates one conversion request: spooled uploads in,
// normalized rows or a serialized export out. All state is per request;
// spooled files are deleted as soon as their processing ends, success or
// failure.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
	"github.com/tmashinini/bankconvert/internal/domain/statement/engine"
	"github.com/tmashinini/bankconvert/internal/domain/statement/export"
	"github.com/tmashinini/bankconvert/internal/domain/statement/extract"
	"github.com/tmashinini/bankconvert/internal/domain/statement/normalize"
	"github.com/tmashinini/bankconvert/internal/domain/statement/reconcile"
	"github.com/tmashinini/bankconvert/internal/domain/statement/source"
	"github.com/tmashinini/bankconvert/pkg/storage"
)

// ErrNoFiles is returned when a request carries no uploads.
var ErrNoFiles = errors.New("no files uploaded")

// ErrEmptyBatch is returned by Convert when no file yielded a transaction.
var ErrEmptyBatch = errors.New("no transactions detected")

// ErrUnsupportedType is returned for uploads whose extension no ingestion
// path handles.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrAllFilesFailed is returned by Preview when not a single file in the
// batch could be processed.
var ErrAllFilesFailed = errors.New("no file in the batch could be processed")

// UploadedFile is one spooled upload.
type UploadedFile struct {
	Name string
	Path string
}

// FileReport is the per-file slice of the conversion metadata.
type FileReport struct {
	File   string            `json:"file"`
	Rows   int               `json:"rows"`
	Header *reconcile.Report `json:"header,omitempty"`
}

// Meta summarizes a batch. It rides the preview response body and the
// convert response header.
type Meta struct {
	Files    []FileReport `json:"files"`
	Rows     int          `json:"rows"`
	Warnings []string     `json:"warnings"`
}

// PreviewOutput is the JSON preview of a batch.
type PreviewOutput struct {
	Rows []statement.TransactionRow `json:"rows"`
	Meta Meta                       `json:"meta"`
}

// ConvertOutput is a serialized export plus download metadata.
type ConvertOutput struct {
	Data        []byte
	Filename    string
	ContentType string
	Meta        Meta
}

// Service runs the extraction pipeline over a batch of uploads.
type Service struct {
	logger   *slog.Logger
	engine   *engine.Engine
	spool    *storage.Spool
	currency string
}

// New builds a conversion service. currency is the ISO code stamped on
// every emitted row.
func New(logger *slog.Logger, eng *engine.Engine, spool *storage.Spool, currency string) *Service {
	return &Service{
		logger:   logger,
		engine:   eng,
		spool:    spool,
		currency: currency,
	}
}

// Preview processes a batch and returns structured rows without
// serializing them. Files the pipeline cannot handle become warnings, not
// errors, so one bad file never hides the rest of the batch.
func (s *Service) Preview(ctx context.Context, files []UploadedFile, opts statement.Options) (*PreviewOutput, error) {
	rows, meta, err := s.processBatch(ctx, files, opts, false)
	if err != nil {
		return nil, err
	}
	return &PreviewOutput{Rows: rows, Meta: meta}, nil
}

// Convert processes a batch and serializes the rows in the requested
// format. Unlike Preview, an unprocessable file or an empty batch is an
// error: there is no useful download to hand back.
func (s *Service) Convert(ctx context.Context, files []UploadedFile, opts statement.Options) (*ConvertOutput, error) {
	rows, meta, err := s.processBatch(ctx, files, opts, true)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w in %d file(s)", ErrEmptyBatch, len(files))
	}

	var buf bytes.Buffer
	out := &ConvertOutput{Meta: meta}
	switch opts.Format {
	case "xlsx":
		if err := export.WriteXLSX(&buf, rows, opts.Columns); err != nil {
			return nil, fmt.Errorf("serialize xlsx: %w", err)
		}
		out.Filename = "bank-converted.xlsx"
		out.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		if err := export.WriteCSV(&buf, rows, opts.Columns); err != nil {
			return nil, fmt.Errorf("serialize csv: %w", err)
		}
		out.Filename = "bank-converted.csv"
		out.ContentType = "text/csv"
	}
	out.Data = buf.Bytes()
	return out, nil
}

// processBatch runs every file through the pipeline and concatenates the
// results in upload order. strict controls whether a file the pipeline
// cannot handle fails the batch or becomes a warning.
func (s *Service) processBatch(ctx context.Context, files []UploadedFile, opts statement.Options, strict bool) ([]statement.TransactionRow, Meta, error) {
	meta := Meta{Warnings: []string{}}
	if len(files) == 0 {
		return nil, meta, ErrNoFiles
	}

	var all []statement.TransactionRow
	failed := 0
	for i, file := range files {
		rows, report, warnings, err := s.processFile(ctx, file, opts)
		if err != nil {
			if strict {
				// The batch is abandoned; files behind the failing one
				// never reach processFile, so their spool entries are
				// deleted here.
				s.discard(files[i+1:])
				return nil, meta, fmt.Errorf("%s: %w", file.Name, err)
			}
			failed++
			meta.Warnings = append(meta.Warnings, fmt.Sprintf("%s: %v", file.Name, err))
			meta.Files = append(meta.Files, FileReport{File: file.Name})
			continue
		}
		meta.Warnings = append(meta.Warnings, warnings...)
		meta.Files = append(meta.Files, FileReport{File: file.Name, Rows: len(rows), Header: report})
		all = append(all, rows...)
	}
	if failed == len(files) {
		return nil, meta, fmt.Errorf("%w: %s", ErrAllFilesFailed, meta.Warnings[0])
	}
	meta.Rows = len(all)
	return all, meta, nil
}

// discard deletes spooled files that will not be processed.
func (s *Service) discard(files []UploadedFile) {
	for _, file := range files {
		if err := s.spool.Remove(file.Path); err != nil {
			s.logger.Warn("spool cleanup failed",
				slog.String("file", file.Name),
				slog.Any("error", err),
			)
		}
	}
}

// processFile runs one spooled upload through extraction, the adapter
// chain, reconciliation and normalization. The spooled file is deleted on
// every exit path.
func (s *Service) processFile(ctx context.Context, file UploadedFile, opts statement.Options) ([]statement.TransactionRow, *reconcile.Report, []string, error) {
	defer func() {
		if err := s.spool.Remove(file.Path); err != nil {
			s.logger.Warn("spool cleanup failed",
				slog.String("file", file.Name),
				slog.Any("error", err),
			)
		}
	}()

	r, err := s.spool.Open(file.Path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer r.Close()

	var (
		rows     []statement.TransactionRow
		report   *reconcile.Report
		warnings []string
	)
	switch ext := strings.ToLower(filepath.Ext(file.Name)); ext {
	case ".csv":
		rows, warnings, err = source.ParseCSV(r, s.currency, opts.Toggles)
		if err != nil {
			return nil, nil, nil, err
		}
	case ".txt", ".text", ".pdf":
		var extractor extract.TextExtractor = extract.PlainText{}
		if ext == ".pdf" {
			extractor = extract.PDF{}
		}
		pages, err := extractor.Extract(ctx, r)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("extract text: %w", err)
		}

		result := s.engine.Parse(pages, s.currency, opts)
		rows = result.Rows
		warnings = result.Warnings

		report = reconcile.ExtractHeader(pagesText(pages))
		if opts.Toggles.IncludeRunningBalance && report.OpeningBalance != nil {
			reconcile.FillRunningBalance(rows, *report.OpeningBalance)
		}
		reconWarnings, err := reconcile.Run(report, rows, s.currency, opts.Toggles.FailOnBalanceMismatch)
		if err != nil {
			return nil, nil, nil, err
		}
		warnings = append(warnings, reconWarnings...)
	default:
		return nil, nil, nil, fmt.Errorf("%w %q", ErrUnsupportedType, ext)
	}

	s.finalize(rows, report, file.Name, opts)
	s.logger.Info("file processed",
		slog.String("file", file.Name),
		slog.Int("rows", len(rows)),
		slog.Int("warnings", len(warnings)),
	)
	return rows, report, warnings, nil
}

// finalize stamps identity and provenance on accepted rows and applies the
// output date format. Fingerprints are computed over the ISO dates so the
// requested display format never changes a transaction's identity.
func (s *Service) finalize(rows []statement.TransactionRow, report *reconcile.Report, sourceFile string, opts statement.Options) {
	statementID := uuid.NewString()
	layout := normalize.LayoutFromPattern(opts.DateFormat)
	for i := range rows {
		row := &rows[i]
		row.StatementID = statementID
		row.SourceFile = sourceFile
		if report != nil && row.AccountNumber == "" {
			row.AccountNumber = report.AccountNumber
		}
		row.TransactionID = normalize.Fingerprint(
			row.Date, row.Description, row.Amount, row.Balance, row.PageNo, row.LineNo,
		)
		row.Date = normalize.FormatDate(row.Date, layout)
		row.ValueDate = normalize.FormatDate(row.ValueDate, layout)
	}
}

func pagesText(pages []statement.Page) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p.Text)
		b.WriteString("\n")
	}
	return b.String()
}
