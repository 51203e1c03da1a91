package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ersonp/codex-core/internal/domain/entities"
)

type questionRequest struct {
	Text  string `json:"text"`
	Limit int    `json:"limit,omitempty"`
}

type createCollectionRequest struct {
	Name string `json:"name"`
}

type renameCollectionRequest struct {
	NewName string `json:"new_name"`
}

type deleteDocumentsRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{"status": "ok", "qdrant": "ok", "llm": "ok"}
	code := http.StatusOK

	if err := s.vectors.Ping(ctx); err != nil {
		s.logger.Warn("qdrant unreachable", zap.Error(err))
		status["qdrant"] = "unavailable"
		status["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}
	if err := s.llm.Ping(ctx); err != nil {
		s.logger.Warn("llm unreachable", zap.Error(err))
		status["llm"] = "unavailable"
		status["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}

	s.respondJSON(w, code, status)
}

func (s *Server) handleQueryDefault(w http.ResponseWriter, r *http.Request) {
	s.runQuery(w, r, s.defaultColl)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	s.runQuery(w, r, chi.URLParam(r, "name"))
}

func (s *Server) runQuery(w http.ResponseWriter, r *http.Request, collection string) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		s.respondError(w, http.StatusBadRequest, "question text is required")
		return
	}

	s.logger.Debug("query request",
		zap.String("collection", collection),
		zap.String("text", req.Text),
		zap.Int("limit", req.Limit))

	answer, err := s.query.Query(r.Context(), collection, req.Text, req.Limit)
	if err != nil {
		s.respondServiceError(w, err, "query failed")
		return
	}

	s.respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleCollectionsList(w http.ResponseWriter, r *http.Request) {
	colls, err := s.collections.List(r.Context())
	if err != nil {
		s.respondServiceError(w, err, "listing collections failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"collections": colls})
}

func (s *Server) handleCollectionCreate(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	coll, err := s.collections.Create(r.Context(), req.Name)
	if err != nil {
		s.respondServiceError(w, err, "creating collection failed")
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"message":    fmt.Sprintf("Collection '%s' created successfully", coll.Name),
		"collection": coll,
	})
}

func (s *Server) handleCollectionDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := s.collections.Delete(r.Context(), name); err != nil {
		s.respondServiceError(w, err, "deleting collection failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Collection '%s' deleted successfully", name),
	})
}

func (s *Server) handleCollectionRename(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req renameCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.collections.Rename(r.Context(), name, req.NewName); err != nil {
		s.respondServiceError(w, err, "renaming collection failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Collection renamed from '%s' to '%s' successfully", name, req.NewName),
	})
}

func (s *Server) handleDocumentsList(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	docs, err := s.ingest.ListDocuments(r.Context(), name)
	if err != nil {
		s.respondServiceError(w, err, "listing documents failed")
		return
	}

	count, err := s.ingest.CountDocuments(r.Context(), name)
	if err != nil {
		s.respondServiceError(w, err, "counting documents failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"documents": docs, "count": count})
}

func (s *Server) handleDocumentsUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	paths, cleanup, err := s.saveUploads(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	result, err := s.ingest.Upload(r.Context(), name, paths)
	if err != nil {
		s.respondServiceError(w, err, "upload failed")
		return
	}

	if len(result.Conflicts) > 0 {
		s.respondJSON(w, http.StatusConflict, map[string]any{
			"message":         "Some files already exist. Use the update endpoint to replace them.",
			"files_to_update": result.Conflicts,
		})
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"message": fmt.Sprintf("Successfully added %d files to the index", len(result.Added)),
		"added":   result.Added,
	})
}

func (s *Server) handleDocumentsUpdate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	paths, cleanup, err := s.saveUploads(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	result, err := s.ingest.Update(r.Context(), name, paths)
	if err != nil {
		s.respondServiceError(w, err, "update failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Successfully updated %d files in the index", len(result.Added)),
		"updated": result.Added,
	})
}

func (s *Server) handleDocumentsDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req deleteDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		s.respondError(w, http.StatusBadRequest, "ids are required")
		return
	}

	deleted, err := s.ingest.DeleteDocuments(r.Context(), name, req.IDs)
	if err != nil {
		s.respondServiceError(w, err, "deleting documents failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("%d document(s) deleted successfully", deleted),
		"deleted": deleted,
	})
}

// maxUploadBytes caps one multipart upload request.
const maxUploadBytes = 512 << 20

// saveUploads writes every file of a multipart request into a fresh
// temporary directory and returns the file paths plus a cleanup func.
// Each request gets its own directory, so concurrent uploads never share
// state on disk.
func (s *Server) saveUploads(r *http.Request) ([]string, func(), error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, func() {}, fmt.Errorf("parsing multipart form: %w", err)
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		return nil, func() {}, errors.New("no files provided (use the 'files' field)")
	}

	tmpDir, err := os.MkdirTemp("", "codex-upload-*")
	if err != nil {
		return nil, func() {}, fmt.Errorf("creating upload directory: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			s.logger.Warn("removing upload directory", zap.Error(err))
		}
	}

	var paths []string
	for _, fh := range files {
		fileName := filepath.Base(fh.Filename)
		if fileName == "" || fileName == "." {
			cleanup()
			return nil, func() {}, fmt.Errorf("invalid file name %q", fh.Filename)
		}
		if !s.ingest.Supported(filepath.Ext(fileName)) {
			cleanup()
			return nil, func() {}, fmt.Errorf("unsupported file type %q", filepath.Ext(fileName))
		}

		path := filepath.Join(tmpDir, fileName)
		if err := saveUploadedFile(fh, path); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		paths = append(paths, path)
	}

	return paths, cleanup, nil
}

func saveUploadedFile(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("writing upload %s: %w", fh.Filename, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("writing upload %s: %w", fh.Filename, err)
	}

	return out.Close()
}

// respondServiceError maps domain sentinel errors onto HTTP statuses;
// anything unrecognized is logged and reported as a 500.
func (s *Server) respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, entities.ErrInvalidName):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrCollectionNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrNoDocumentsDeleted):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrCollectionExists):
		s.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, entities.ErrLLMUnavailable):
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error(logMsg, zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
