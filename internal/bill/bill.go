package bill

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Status is the review state of a bill
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

// Route names understood by a Navigator
const (
	RouteBills   = "Bills"
	RouteNewBill = "NewBill"
)

// Bill is one expense report as stored remotely
type Bill struct {
	ID         string `json:"id,omitempty"`
	Email      string `json:"email"`
	Type       string `json:"type"`
	Name       string `json:"name"`
	Amount     int    `json:"amount"`
	Date       string `json:"date"`
	VAT        string `json:"vat"`
	Pct        int    `json:"pct"`
	Commentary string `json:"commentary"`
	FileURL    string `json:"fileUrl"`
	FileName   string `json:"fileName"`
	Status     Status `json:"status"`
}

// Navigator moves the employee to a named route
type Navigator func(route string)

// SessionUserKey is the session key holding the JSON encoded User
const SessionUserKey = "user"

// Session is a read-only key/value view of the employee's session
type Session interface {
	Get(key string) (string, bool)
}

// MapSession is a Session backed by a plain map
type MapSession map[string]string

func (m MapSession) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// User is the identity stored in the session
type User struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

// ErrNoSession is returned when the session carries no usable user
var ErrNoSession = errors.New("no user in session")

// CurrentUser decodes the session user and requires an email
func CurrentUser(session Session) (User, error) {
	raw, ok := session.Get(SessionUserKey)
	if !ok || raw == "" {
		return User{}, ErrNoSession
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return User{}, fmt.Errorf("decoding session user: %w", err)
	}
	if user.Email == "" {
		return User{}, ErrNoSession
	}
	return user, nil
}
