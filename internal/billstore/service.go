package billstore

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/zombor/billed/internal/bill"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file format, allowed formats are jpeg, jpg and png")
	ErrMissingEmail    = errors.New("email is required")
)

// IDGenerator generates bill keys
type IDGenerator interface {
	Generate() string
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

// Service implements the bills API on top of a DB and a Storage
type Service struct {
	db          DB
	storage     Storage
	publicURL   string
	idGenerator IDGenerator
}

// NewService creates a Service generating uuid keys. publicURL is the
// externally visible root used to build receipt URLs.
func NewService(db DB, storage Storage, publicURL string) *Service {
	return NewServiceWithDeps(db, storage, publicURL, uuidGenerator{})
}

// NewServiceWithDeps creates a Service with a custom ID generator for testing
func NewServiceWithDeps(db DB, storage Storage, publicURL string, idGen IDGenerator) *Service {
	return &Service{
		db:          db,
		storage:     storage,
		publicURL:   strings.TrimRight(publicURL, "/"),
		idGenerator: idGen,
	}
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	spaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename strips special characters and shortens long phone
// generated names, keeping the extension
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = unsafeChars.ReplaceAllString(base, "")
	base = spaces.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}
	return base + ext
}

// FileURL is the public URL of a stored receipt
func (s *Service) FileURL(name string) string {
	return s.publicURL + "/files/" + url.PathEscape(name)
}

// CreateFromUpload stores the receipt and reserves a bill key for it. The
// reserved bill stays out of listings until UpdateBill fills it in.
func (s *Service) CreateFromUpload(filename string, data []byte, email string) (*bill.Uploaded, error) {
	if email == "" {
		return nil, ErrMissingEmail
	}
	filename = bill.FileName(filename)
	if !bill.AcceptedReceipt(filename) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}

	id := s.idGenerator.Generate()
	saved, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	reserved := &bill.Bill{
		ID:       id,
		Email:    email,
		FileURL:  s.FileURL(saved),
		FileName: filename,
	}
	if err := s.db.SaveBill(reserved); err != nil {
		if delErr := s.storage.Delete(saved); delErr != nil {
			slog.Warn("Failed to delete file", "filename", saved, "error", delErr)
		}
		return nil, fmt.Errorf("saving bill to database: %w", err)
	}

	return &bill.Uploaded{
		FileURL:  reserved.FileURL,
		BillID:   id,
		FileName: filename,
	}, nil
}

// UpdateBill replaces the bill stored under id. The key, receipt URL and
// owner stay the ones assigned at upload. Callers cannot set the review
// status: a reserved bill becomes pending and a reviewed one keeps its status.
func (s *Service) UpdateBill(id string, update bill.Bill) (*bill.Bill, error) {
	existing, err := s.db.GetBill(id)
	if err != nil {
		return nil, fmt.Errorf("getting bill: %w", err)
	}

	update.ID = existing.ID
	update.FileURL = existing.FileURL
	if update.FileName == "" {
		update.FileName = existing.FileName
	}
	if existing.Email != "" {
		update.Email = existing.Email
	}
	update.Status = existing.Status
	if update.Status == "" {
		update.Status = bill.StatusPending
	}

	if err := s.db.SaveBill(&update); err != nil {
		return nil, fmt.Errorf("saving bill: %w", err)
	}
	return &update, nil
}

// GetBill retrieves a bill by ID
func (s *Service) GetBill(id string) (*bill.Bill, error) {
	b, err := s.db.GetBill(id)
	if err != nil {
		return nil, fmt.Errorf("getting bill: %w", err)
	}
	return b, nil
}

// ListBills returns the persisted bills of email, or of everyone when
// email is empty
func (s *Service) ListBills(email string) ([]*bill.Bill, error) {
	all, err := s.db.ListBills()
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}

	bills := make([]*bill.Bill, 0, len(all))
	for _, b := range all {
		if b.Status == "" {
			continue
		}
		if email != "" && b.Email != email {
			continue
		}
		bills = append(bills, b)
	}
	return bills, nil
}

// DeleteBill removes a bill and its receipt
func (s *Service) DeleteBill(id string) error {
	b, err := s.db.GetBill(id)
	if err != nil {
		return fmt.Errorf("getting bill for deletion: %w", err)
	}

	if name := s.storedName(b.FileURL); name != "" {
		if err := s.storage.Delete(name); err != nil {
			// Log error but continue with database deletion
			slog.Warn("Failed to delete file", "filename", name, "error", err)
		}
	}

	if err := s.db.DeleteBill(id); err != nil {
		return fmt.Errorf("deleting bill from database: %w", err)
	}
	return nil
}

// GetReceiptFile reads a stored receipt and guesses its content type
func (s *Service) GetReceiptFile(name string) ([]byte, string, error) {
	data, err := s.storage.Get(name)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// storedName recovers the storage name from a receipt URL built by FileURL
func (s *Service) storedName(fileURL string) string {
	escaped, ok := strings.CutPrefix(fileURL, s.publicURL+"/files/")
	if !ok {
		return ""
	}
	name, err := url.PathUnescape(escaped)
	if err != nil {
		return ""
	}
	return name
}
