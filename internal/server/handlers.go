package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bobiverse/docxfill"
	"github.com/bobiverse/docxfill/internal/storage"
)

const docxExt = ".docx"

// GenerateRequest - body of POST /api/generate
type GenerateRequest struct {
	TemplateID string          `json:"templateId"`
	Data       json.RawMessage `json:"data"`
}

// GenerateResponse - where generated document can be downloaded
type GenerateResponse struct {
	FileID      string `json:"fileId"`
	DownloadURL string `json:"downloadUrl"`
}

// ErrorResponse - body of every failed request
type ErrorResponse struct {
	Title   string `json:"Title"`
	Message string `json:"Message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, ErrorResponse{Title: "Error", Message: fmt.Sprintf(format, args...)})
}

// validFileName - plain file name without any path parts
func validFileName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body exceeds %d bytes", maxErr.Limit)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body: %v", err)
		return
	}

	templateID := strings.TrimSpace(req.TemplateID)
	if templateID == "" {
		writeError(w, http.StatusBadRequest, "templateId parameter is required")
		return
	}
	if !validFileName(templateID) {
		writeError(w, http.StatusBadRequest, "Invalid templateId")
		return
	}
	if len(req.Data) == 0 || string(req.Data) == "null" {
		writeError(w, http.StatusBadRequest, "data parameter is required")
		return
	}

	rec, err := docxfill.ParseRecord(req.Data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	if !strings.HasSuffix(strings.ToLower(templateID), docxExt) {
		templateID += docxExt
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.renderTimeout)
	defer cancel()

	fileID, err := s.generate(ctx, templateID, rec)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Template not found")
		return
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "Document generation timed out")
		return
	case isTemplateError(err):
		writeError(w, http.StatusUnprocessableEntity, "Invalid template: %v", err)
		return
	default:
		log.Printf("generate %s: %v", templateID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error: %v", err)
		return
	}

	writeJSON(w, http.StatusCreated, GenerateResponse{
		FileID:      fileID,
		DownloadURL: "/api/download?file=" + url.QueryEscape(fileID),
	})
}

func isTemplateError(err error) bool {
	var docErr *docxfill.DocumentError
	return errors.As(err, &docErr)
}

// generate - render template with record and store result.
// Returns stored file name.
func (s *Server) generate(ctx context.Context, templateID string, rec docxfill.Record) (string, error) {
	buf, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return "", err
	}

	tdoc, err := docxfill.OpenTemplateWithBytes(buf)
	if err != nil {
		return "", err
	}
	tdoc.Debug = s.debug

	if err := tdoc.Render(rec); err != nil {
		return "", err
	}
	out, err := tdoc.Bytes()
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	fileID := s.newID() + docxExt
	if err := s.generated.Put(ctx, fileID, out, storage.ContentTypeDocx); err != nil {
		return "", err
	}
	return fileID, nil
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("file")
	if filename == "" {
		filename = r.PathValue("filename")
	}

	if filename == "" {
		writeError(w, http.StatusBadRequest, "Filename parameter is required")
		return
	}
	if !validFileName(filename) {
		writeError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	buf, err := s.generated.Get(r.Context(), filename)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		log.Printf("download %s: %v", filename, err)
		writeError(w, http.StatusInternalServerError, "Internal server error: %v", err)
		return
	}

	w.Header().Set("Content-Type", storage.ContentType(filename))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf); err != nil {
		log.Printf("write %s: %v", filename, err)
	}
}
