package web

import (
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/zombor/billed/internal/bill"
)

// requestSession reads session values from URL-escaped cookies. When the
// request has no user cookie and a default user is configured, that user
// is reported as an employee. A cookie that does not decode is no session.
type requestSession struct {
	r           *http.Request
	defaultUser string
}

func (s requestSession) Get(key string) (string, bool) {
	if c, err := s.r.Cookie(key); err == nil {
		v, err := url.QueryUnescape(c.Value)
		if err != nil {
			slog.Warn("Undecodable session cookie", "key", key, "error", err)
			return "", false
		}
		return v, true
	}

	if key != bill.SessionUserKey || s.defaultUser == "" {
		return "", false
	}
	data, err := json.Marshal(bill.User{Email: s.defaultUser, Type: "Employee"})
	if err != nil {
		return "", false
	}
	return string(data), true
}

// formFile is the file field of a submitted form
type formFile struct {
	header  *multipart.FileHeader
	cleared bool
}

func (f *formFile) Filename() string {
	if f.header == nil {
		return ""
	}
	return f.header.Filename
}

func (f *formFile) Clear() {
	f.header = nil
	f.cleared = true
}
