// Package handler exposes the conversion pipeline over HTTP multipart
// endpoints. Preview returns structured JSON; convert streams a download
// with the batch metadata riding a response header.
package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
	"github.com/tmashinini/bankconvert/internal/domain/statement/reconcile"
	"github.com/tmashinini/bankconvert/internal/domain/statement/service"
	"github.com/tmashinini/bankconvert/pkg/middleware"
	"github.com/tmashinini/bankconvert/pkg/storage"
)

// metaHeader carries the base64-encoded batch metadata on convert
// responses, where the body is the download itself.
const metaHeader = "X-Conversion-Meta"

// maxUploadFiles bounds one batch.
const maxUploadFiles = 10

// StatementHandler handles statement conversion requests.
type StatementHandler struct {
	svc      *service.Service
	spool    *storage.Spool
	logger   *slog.Logger
	defaults statement.Options
	maxBytes int64
}

// NewStatementHandler creates a new statement handler. defaults supplies
// the server-configured option values a request may override per call.
func NewStatementHandler(svc *service.Service, spool *storage.Spool, logger *slog.Logger, defaults statement.Options, maxBytes int64) *StatementHandler {
	return &StatementHandler{
		svc:      svc,
		spool:    spool,
		logger:   logger,
		defaults: defaults,
		maxBytes: maxBytes,
	}
}

// Register attaches the conversion routes to mux.
func (h *StatementHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/bank/preview", h.Preview)
	mux.HandleFunc("/v1/bank/convert", h.Convert)
}

// Preview parses the uploaded statements and returns the structured rows
// as JSON without producing a download.
func (h *StatementHandler) Preview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	files, opts, ok := h.acceptUpload(w, r)
	if !ok {
		observe("preview", "bad_request", 0, time.Since(start))
		return
	}

	out, err := h.svc.Preview(r.Context(), files, opts)
	if err != nil {
		h.writeServiceError(w, "preview", err)
		observe("preview", "error", 0, time.Since(start))
		return
	}

	observe("preview", "ok", len(out.Rows), time.Since(start))
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		h.logger.Error("failed to encode preview response", slog.Any("error", err))
	}
}

// Convert parses the uploaded statements and streams the serialized
// export. Batch metadata is base64-encoded into the X-Conversion-Meta
// header so clients can surface warnings alongside the download.
func (h *StatementHandler) Convert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	files, opts, ok := h.acceptUpload(w, r)
	if !ok {
		observe("convert", "bad_request", 0, time.Since(start))
		return
	}

	out, err := h.svc.Convert(r.Context(), files, opts)
	if err != nil {
		h.writeServiceError(w, "convert", err)
		observe("convert", "error", 0, time.Since(start))
		return
	}

	meta, err := json.Marshal(out.Meta)
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	observe("convert", "ok", out.Meta.Rows, time.Since(start))
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	w.Header().Set(metaHeader, base64.StdEncoding.EncodeToString(meta))
	if _, err := w.Write(out.Data); err != nil {
		h.logger.Error("failed to write convert response", slog.Any("error", err))
	}
}

// acceptUpload parses the multipart form, spools every uploaded file and
// decodes the request options. On failure it writes the error response
// itself and returns ok=false.
func (h *StatementHandler) acceptUpload(w http.ResponseWriter, r *http.Request) ([]service.UploadedFile, statement.Options, bool) {
	opts := h.defaults

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return nil, opts, false
	}

	var err error
	opts, err = h.parseOptions(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, opts, false
	}

	uploads := r.MultipartForm.File["files"]
	if len(uploads) > maxUploadFiles {
		middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("too many files: %d exceeds the limit of %d", len(uploads), maxUploadFiles))
		return nil, opts, false
	}

	var files []service.UploadedFile
	// A failure mid-loop abandons the request; files already spooled are
	// deleted rather than left for the sweeper.
	discard := func() {
		for _, file := range files {
			if err := h.spool.Remove(file.Path); err != nil {
				h.logger.Warn("spool cleanup failed",
					slog.String("file", file.Name),
					slog.Any("error", err),
				)
			}
		}
	}
	for _, header := range uploads {
		f, err := header.Open()
		if err != nil {
			discard()
			middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("unreadable upload %q", header.Filename))
			return nil, opts, false
		}
		path, err := h.spool.Save(header.Filename, f)
		f.Close()
		if err != nil {
			h.logger.Error("failed to spool upload",
				slog.String("file", header.Filename),
				slog.Any("error", err),
			)
			discard()
			middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return nil, opts, false
		}
		files = append(files, service.UploadedFile{Name: header.Filename, Path: path})
	}
	return files, opts, true
}

// parseOptions overlays form fields on the server defaults. columns and
// toggles arrive as JSON-encoded form values.
func (h *StatementHandler) parseOptions(r *http.Request) (statement.Options, error) {
	opts := h.defaults

	if v := r.FormValue("date_format"); v != "" {
		opts.DateFormat = v
	}
	if v := r.FormValue("format"); v != "" {
		if v != "csv" && v != "xlsx" {
			return opts, fmt.Errorf("unsupported format %q", v)
		}
		opts.Format = v
	}
	if v := r.FormValue("columns"); v != "" {
		var columns []string
		if err := json.Unmarshal([]byte(v), &columns); err != nil {
			return opts, fmt.Errorf("invalid columns: %v", err)
		}
		opts.Columns = columns
	}
	if v := r.FormValue("toggles"); v != "" {
		var flags map[string]bool
		if err := json.Unmarshal([]byte(v), &flags); err != nil {
			return opts, fmt.Errorf("invalid toggles: %v", err)
		}
		toggles, err := statement.ParseToggles(flags)
		if err != nil {
			return opts, err
		}
		opts.Toggles = toggles
	}
	return opts, nil
}

// writeServiceError maps pipeline errors onto HTTP statuses.
func (h *StatementHandler) writeServiceError(w http.ResponseWriter, operation string, err error) {
	h.logger.Warn("conversion failed",
		slog.String("operation", operation),
		slog.Any("error", err),
	)
	switch {
	case errors.Is(err, service.ErrNoFiles):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnsupportedType):
		middleware.WriteError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrEmptyBatch),
		errors.Is(err, service.ErrAllFilesFailed),
		errors.Is(err, reconcile.ErrMismatch):
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		middleware.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
