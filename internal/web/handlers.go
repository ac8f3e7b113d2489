package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/zombor/billed/internal/bill"
)

// maxFormSize bounds the new bill form including the receipt
const maxFormSize = 10 << 20 // 10MB

var expenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

type billsPage struct {
	Rows []bill.Row
}

type newBillPage struct {
	Types       []string
	Form        bill.Form
	Error       string
	FileCleared bool
}

type receiptPage struct {
	Bill bill.Bill
}

type errorPage struct {
	Message string
}

// errorMessage is the text shown to the user for a failed store call
func errorMessage(err error) string {
	var storeErr *bill.StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Error()
	}
	return err.Error()
}

func (s *Server) renderError(w http.ResponseWriter, code int, message string) {
	s.render(w, code, "error.html", errorPage{Message: message})
}

// currentUser resolves the session user or writes a 401 page
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (bill.User, bool) {
	user, err := bill.CurrentUser(s.session(r))
	if err != nil {
		slog.Warn("Request without session", "path", r.URL.Path, "error", err)
		s.renderError(w, http.StatusUnauthorized, "Vous devez être connecté")
		return bill.User{}, false
	}
	return user, true
}

// handleBills renders the current user's bills, newest first
func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	reader := bill.NewReader(s.storeFor(user.Email), s.formatter)
	rows, err := reader.List(r.Context())
	if err != nil {
		slog.Error("Error listing bills", "email", user.Email, "error", err)
		s.renderError(w, http.StatusBadGateway, errorMessage(err))
		return
	}

	bill.SortAntiChrono(rows)
	s.render(w, http.StatusOK, "bills.html", billsPage{Rows: rows})
}

// handleNewBill renders an empty new bill form
func (s *Server) handleNewBill(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.currentUser(w, r); !ok {
		return
	}
	s.render(w, http.StatusOK, "newbill.html", newBillPage{Types: expenseTypes})
}

// handleSubmitBill validates the receipt, uploads it and persists the bill
func (s *Server) handleSubmitBill(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	page := newBillPage{Types: expenseTypes}
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		page.Error = "Formulaire invalide"
		s.render(w, http.StatusBadRequest, "newbill.html", page)
		return
	}

	page.Form = bill.Form{
		Type:       r.FormValue("expense-type"),
		Name:       r.FormValue("expense-name"),
		Amount:     r.FormValue("amount"),
		Date:       r.FormValue("datepicker"),
		VAT:        r.FormValue("vat"),
		Pct:        r.FormValue("pct"),
		Commentary: r.FormValue("commentary"),
	}

	var navigated string
	submitter := bill.NewSubmitter(s.storeFor(user.Email), s.session(r), func(route string) {
		navigated = route
	})

	input := &formFile{}
	if _, header, err := r.FormFile("file"); err == nil {
		input.header = header
	}
	if !submitter.ValidateFile(input) {
		page.FileCleared = input.cleared
		if !input.cleared {
			page.Error = "Veuillez sélectionner un justificatif"
		}
		s.render(w, http.StatusBadRequest, "newbill.html", page)
		return
	}

	data, err := readFormFile(input)
	if err != nil {
		slog.Error("Error reading receipt", "filename", input.Filename(), "error", err)
		page.Error = "Impossible de lire le justificatif"
		s.render(w, http.StatusBadRequest, "newbill.html", page)
		return
	}

	receipt := bill.Receipt{Path: input.Filename(), Data: data}
	if err := submitter.Submit(r.Context(), page.Form, receipt); err != nil {
		page.Error = errorMessage(err)
		s.render(w, http.StatusBadGateway, "newbill.html", page)
		return
	}

	if path, ok := routePaths[navigated]; ok {
		http.Redirect(w, r, path, http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "newbill.html", page)
}

func readFormFile(input *formFile) ([]byte, error) {
	f, err := input.header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// handleReceipt shows the receipt of one of the current user's bills
func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	bills, err := s.storeFor(user.Email).List(r.Context())
	if err != nil {
		slog.Error("Error listing bills", "email", user.Email, "error", err)
		s.renderError(w, http.StatusBadGateway, errorMessage(err))
		return
	}

	for _, b := range bills {
		if b.ID == id {
			s.render(w, http.StatusOK, "receipt.html", receiptPage{Bill: b})
			return
		}
	}
	s.renderError(w, http.StatusNotFound, "Note de frais introuvable")
}
