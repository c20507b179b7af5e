package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/crunchclean/internal/core"
	"github.com/JonMunkholm/crunchclean/internal/export"
	"github.com/JonMunkholm/crunchclean/internal/logging"
	"github.com/JonMunkholm/crunchclean/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// lastResultCookie remembers the browser's most recent result so the upload
// page can show it again.
const lastResultCookie = "cbclean_last"

// CleanSummary is the JSON response of POST /api/clean.
type CleanSummary struct {
	ID         string            `json:"id"`
	FileName   string            `json:"file_name"`
	Stats      core.Stats        `json:"stats"`
	DurationMS int64             `json:"duration_ms"`
	ResultURL  string            `json:"result_url"`
	Downloads  map[string]string `json:"downloads"`
}

func newCleanSummary(res *core.Result) CleanSummary {
	base := "/api/results/" + res.ID
	return CleanSummary{
		ID:         res.ID,
		FileName:   res.FileName,
		Stats:      res.Stats,
		DurationMS: res.Duration.Milliseconds(),
		ResultURL:  base,
		Downloads: map[string]string{
			string(export.FormatCSV):  base + "/download/" + string(export.FormatCSV),
			string(export.FormatXLSX): base + "/download/" + string(export.FormatXLSX),
		},
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// handleStatus reports the upload limiter state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.service.LimiterStatus())
}

// handleIndex renders the upload form, followed by the last result when the
// cookie still points at a live one.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := templates.IndexData{MaxFileSizeMB: s.maxFileSizeMB()}

	if c, err := r.Cookie(lastResultCookie); err == nil && c.Value != "" {
		res, err := s.service.Result(r.Context(), c.Value)
		switch {
		case err == nil:
			data.Result = templates.NewResultView(res)
		case errors.Is(err, core.ErrResultNotFound):
			clearLastResult(w)
		default:
			logging.FromContext(r.Context()).Warn("load last result", "error", err)
		}
	}

	s.renderPage(w, r, http.StatusOK, templates.Index(data))
}

// handleCleanForm runs a clean from the upload form and redirects to the
// result page. Failures re-render the form with the error.
func (s *Server) handleCleanForm(w http.ResponseWriter, r *http.Request) {
	res, err := s.cleanUpload(w, r)
	if err != nil {
		statusCode := statusFor(err)
		msg := logError(r, err, statusCode)
		s.renderPage(w, r, statusCode, templates.Index(templates.IndexData{
			MaxFileSizeMB: s.maxFileSizeMB(),
			Error:         &msg,
		}))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     lastResultCookie,
		Value:    res.ID,
		Path:     "/",
		MaxAge:   int(s.cfg.Store.TTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/results/"+res.ID, http.StatusSeeOther)
}

// handleAPIClean runs a clean and returns a JSON summary.
func (s *Server) handleAPIClean(w http.ResponseWriter, r *http.Request) {
	res, err := s.cleanUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newCleanSummary(res))
}

// cleanUpload reads the multipart upload and runs the service on it.
func (s *Server) cleanUpload(w http.ResponseWriter, r *http.Request) (*core.Result, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return nil, uploadError(err)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, uploadError(err)
	}
	defer file.Close()

	opts := core.ReadOptions{
		Delimiter: r.FormValue("delimiter"),
		Encoding:  r.FormValue("encoding"),
	}

	ctx := WithRequestMetadata(r.Context(), r)
	return s.service.Clean(ctx, header.Filename, file, opts)
}

// uploadError maps multipart parsing failures to core errors.
func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return fmt.Errorf("%w: limit %d bytes", core.ErrFileTooLarge, maxErr.Limit)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return core.ErrNoFile
	case errors.Is(err, multipart.ErrMessageTooLarge):
		return core.ErrFileTooLarge
	default:
		return fmt.Errorf("read upload: %w", err)
	}
}

// handleResultPage renders a stored result.
func (s *Server) handleResultPage(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.renderPage(w, r, http.StatusOK, templates.Result(templates.NewResultView(res)))
}

// handleAPIResult returns a stored result as JSON.
func (s *Server) handleAPIResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, res)
}

// handleDownload serves a stored result in a fixed format.
func (s *Server) handleDownload(format export.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.download(w, r, format)
	}
}

// handleAPIDownload serves a stored result in the format named by the URL.
func (s *Server) handleAPIDownload(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.download(w, r, format)
}

// download renders the whole file before writing so a failure can still
// produce an error response.
func (s *Server) download(w http.ResponseWriter, r *http.Request, format export.Format) {
	res, err := s.service.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := format.Write(&buf, res.Rows); err != nil {
		s.respondError(w, r, fmt.Errorf("export %s: %w", format, err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := io.Copy(w, &buf); err != nil {
		slog.Warn("write download", "error", err, "id", res.ID)
	}
}

// renderPage writes an HTML component with the given status.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, statusCode int, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err, "path", r.URL.Path)
	}
}

func (s *Server) maxFileSizeMB() int64 {
	return s.cfg.Upload.MaxFileSize / (1 << 20)
}

func clearLastResult(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     lastResultCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
