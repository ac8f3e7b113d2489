package web

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/zombor/billed/internal/bill"
)

// StoreFor returns the bill store of the user identified by email
type StoreFor func(email string) bill.Store

// Server serves the employee pages
type Server struct {
	storeFor    StoreFor
	formatter   bill.Formatter
	defaultUser string
	templates   *template.Template
	mux         *http.ServeMux
}

// NewServer creates a new Server with default mux and the French formatter.
// defaultUser, when not empty, is the email used for requests without a
// session cookie.
func NewServer(storeFor StoreFor, defaultUser string) *Server {
	return NewServerWithMux(storeFor, bill.FrenchFormatter{}, defaultUser, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom formatter and mux for testing
func NewServerWithMux(storeFor StoreFor, formatter bill.Formatter, defaultUser string, mux *http.ServeMux) *Server {
	s := &Server{
		storeFor:    storeFor,
		formatter:   formatter,
		defaultUser: defaultUser,
		templates:   parseTemplates(),
		mux:         mux,
	}
	s.registerRoutes()
	return s
}

// routePaths maps Navigator route names to URLs
var routePaths = map[string]string{
	bill.RouteBills:   "/bills",
	bill.RouteNewBill: "/bills/new",
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /bills/new", s.handleNewBill)
	s.mux.HandleFunc("POST /bills/new", s.handleSubmitBill)
	s.mux.HandleFunc("GET /bills/{id}/receipt", s.handleReceipt)
	s.mux.HandleFunc("GET /bills", s.handleBills)
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, routePaths[bill.RouteBills], http.StatusFound)
	})
}

func (s *Server) session(r *http.Request) bill.Session {
	return requestSession{r: r, defaultUser: s.defaultUser}
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting employee pages", "address", addr)
	return http.ListenAndServe(addr, s)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
