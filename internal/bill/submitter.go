package bill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/sync/semaphore"
)

// DefaultPct is used when the form's pct field does not parse
const DefaultPct = 20

// ErrSubmitInFlight is returned when Submit is called while a previous
// submission on the same Submitter has not finished
var ErrSubmitInFlight = errors.New("a submission is already in progress")

var allowedExtensions = []string{"jpeg", "jpg", "png"}

// FileInput is the form's file field
type FileInput interface {
	// Filename is the selected file's path, empty when nothing is selected
	Filename() string
	// Clear drops the current selection
	Clear()
}

// Receipt is the file selected for upload
type Receipt struct {
	Path string
	Data []byte
}

// Form holds the raw values typed into the new bill form
type Form struct {
	Type       string
	Name       string
	Amount     string
	Date       string
	VAT        string
	Pct        string
	Commentary string
}

// Submitter validates receipts and submits new bills
type Submitter struct {
	store    Store
	session  Session
	navigate Navigator
	inFlight *semaphore.Weighted
}

// NewSubmitter creates a Submitter
func NewSubmitter(store Store, session Session, navigate Navigator) *Submitter {
	return &Submitter{
		store:    store,
		session:  session,
		navigate: navigate,
		inFlight: semaphore.NewWeighted(1),
	}
}

// FileName returns the last segment of a path split on either separator
func FileName(path string) string {
	return path[strings.LastIndexAny(path, `/\`)+1:]
}

// AcceptedReceipt reports whether name has a jpg, jpeg or png extension
func AcceptedReceipt(name string) bool {
	ext := strings.ToLower(name[strings.LastIndex(name, ".")+1:])
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ValidateFile checks the selected file's extension and clears the input
// when it is not an accepted image
func (s *Submitter) ValidateFile(input FileInput) bool {
	name := FileName(input.Filename())
	if name == "" {
		slog.Warn("No file selected")
		return false
	}

	if !AcceptedReceipt(name) {
		input.Clear()
		slog.Warn("Invalid file format. Allowed formats are jpeg, jpg and png", "filename", name)
		return false
	}
	return true
}

// Submit uploads the receipt then persists the bill built from form.
// Navigation to the bills list happens only when both calls succeed.
func (s *Submitter) Submit(ctx context.Context, form Form, receipt Receipt) error {
	if !s.inFlight.TryAcquire(1) {
		return ErrSubmitInFlight
	}
	defer s.inFlight.Release(1)

	user, err := CurrentUser(s.session)
	if err != nil {
		return fmt.Errorf("reading session: %w", err)
	}

	uploaded, err := s.upload(ctx, user.Email, receipt)
	if err != nil {
		slog.Error("Failed to upload receipt", "filename", receipt.Path, "error", err)
		return err
	}

	draft := NewDraft(user.Email, form, uploaded)
	if err := s.store.Update(ctx, uploaded.BillID, draft); err != nil {
		slog.Error("Failed to persist bill", "id", uploaded.BillID, "error", err)
		return fmt.Errorf("persisting bill: %w", err)
	}

	s.navigate(RouteBills)
	return nil
}

func (s *Submitter) upload(ctx context.Context, email string, receipt Receipt) (Uploaded, error) {
	fileName := FileName(receipt.Path)
	uploaded, err := s.store.Create(ctx, Upload{
		Filename: fileName,
		Data:     receipt.Data,
		Email:    email,
	})
	if err != nil {
		return Uploaded{}, fmt.Errorf("uploading receipt: %w", err)
	}

	return Uploaded{
		FileURL:  uploaded.FileURL,
		BillID:   uploaded.BillID,
		FileName: fileName,
	}, nil
}

// NewDraft assembles a pending bill from form values and an upload result
func NewDraft(email string, form Form, uploaded Uploaded) Bill {
	amount, _ := parseInt(form.Amount)
	pct, ok := parseInt(form.Pct)
	if !ok || pct == 0 {
		pct = DefaultPct
	}

	return Bill{
		Email:      email,
		Type:       form.Type,
		Name:       form.Name,
		Amount:     amount,
		Date:       form.Date,
		VAT:        form.VAT,
		Pct:        pct,
		Commentary: form.Commentary,
		FileURL:    uploaded.FileURL,
		FileName:   uploaded.FileName,
		Status:     StatusPending,
	}
}

// parseInt reads an optional sign and the leading decimal digits of s,
// ignoring whatever follows them ("50.5" is 50, "12abc" is 12). Values
// that do not fit in an int do not parse.
func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		d := int(s[digits] - '0')
		if n > (math.MaxInt-d)/10 {
			return 0, false
		}
		n = n*10 + d
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
