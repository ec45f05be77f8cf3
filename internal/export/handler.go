package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/siteplan/siteplan/backend-go/internal/auth"
	"github.com/siteplan/siteplan/backend-go/internal/catalog"
	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
	"github.com/siteplan/siteplan/backend-go/internal/metrics"
)

const maxFloorplanSize = 4 << 20 // 4MB

// Source loads the current floorplan of a project on behalf of a user.
type Source interface {
	LatestFloorplan(ctx context.Context, projectID, userID string) (name string, fp floorplan.FloorplanWithStairs, err error)
}

type Handler struct {
	source  Source
	catalog *catalog.Catalog
	status  func(error) int
}

// NewHandler builds the export endpoints. status maps source errors to HTTP
// codes; nil treats every error as internal.
func NewHandler(source Source, c *catalog.Catalog, status func(error) int) *Handler {
	if c == nil {
		c = catalog.Default()
	}
	if status == nil {
		status = func(error) int { return http.StatusInternalServerError }
	}
	return &Handler{source: source, catalog: c, status: status}
}

// ExportProject renders the stored floorplan of {projectId} in {format}.
func (h *Handler) ExportProject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	format := vars["format"]
	if !validFormat(format) {
		http.Error(w, "invalid format: must be xlsx or pdf", http.StatusBadRequest)
		return
	}

	name, fp, err := h.source.LatestFloorplan(r.Context(), vars["projectId"], auth.UserIDFromContext(r.Context()))
	if err != nil {
		code := h.status(err)
		if code >= http.StatusInternalServerError {
			slog.Error("load floorplan for export", "error", err, "project", vars["projectId"])
		}
		http.Error(w, http.StatusText(code), code)
		return
	}

	h.write(w, format, name, fp.Floorplan)
}

// ExportFloorplan renders a floorplan posted in the request body. Used by the
// offline editor, which has no stored project.
func (h *Handler) ExportFloorplan(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]
	if !validFormat(format) {
		http.Error(w, "invalid format: must be xlsx or pdf", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFloorplanSize))
	if err != nil {
		http.Error(w, "request too large", http.StatusBadRequest)
		return
	}
	fp, err := floorplan.Decode(data)
	if err != nil {
		http.Error(w, "invalid floorplan", http.StatusBadRequest)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "floorplan"
	}
	h.write(w, format, name, fp.Floorplan)
}

func (h *Handler) write(w http.ResponseWriter, format, name string, fp floorplan.Floorplan) {
	start := time.Now()
	rows := BuildSchedule(fp, h.catalog)

	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case FormatXLSX:
		data, err = BuildScheduleXLSX(name, rows)
		contentType = ContentTypeXLSX
	case FormatPDF:
		data, err = BuildSchedulePDF(name, rows)
		contentType = ContentTypePDF
	}
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start).Seconds())
		slog.Error("export failed", "format", format, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(start).Seconds())

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, sanitizeFilename(name), format))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)

	slog.Info("export complete", "format", format, "devices", len(rows), "size", len(data))
}

func validFormat(format string) bool {
	return format == FormatXLSX || format == FormatPDF
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
