package billstore

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/zombor/billed/internal/bill"
)

// maxUploadSize bounds the multipart form of a receipt upload
const maxUploadSize = int64(10 << 20)

// writeError writes a JSON error body
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleListBills returns the bills of the email query parameter
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.service.ListBills(r.URL.Query().Get("email"))
	if err != nil {
		slog.Error("Error listing bills", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

// handleCreateBill receives the receipt upload and reserves a bill key
func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large. Maximum size is 10MB.")
			return
		}
		writeError(w, http.StatusBadRequest, "Error parsing form")
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Error reading file")
		return
	}

	uploaded, err := s.service.CreateFromUpload(header.Filename, data, r.FormValue("email"))
	if err != nil {
		slog.Error("Error creating bill", "filename", header.Filename, "error", err)
		switch {
		case errors.Is(err, ErrUnsupportedFile), errors.Is(err, ErrMissingEmail):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Error storing receipt")
		}
		return
	}

	writeJSON(w, http.StatusCreated, uploaded)
}

// handleGetBill returns a single bill
func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	b, err := s.service.GetBill(r.PathValue("id"))
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleUpdateBill persists the bill sent by the employee
func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var update bill.Bill
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b, err := s.service.UpdateBill(r.PathValue("id"), update)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleDeleteBill deletes a bill and its receipt
func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteBill(r.PathValue("id")); err != nil {
		s.writeLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetFile serves a stored receipt
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetReceiptFile(r.PathValue("name"))
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

func (s *Server) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Bill not found")
		return
	}
	slog.Error("Error handling bill", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
