package bill

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrUnknownStatus = errors.New("unknown status")
)

// Formatter turns stored values into display strings
type Formatter interface {
	FormatDate(iso string) (string, error)
	FormatStatus(status Status) (string, error)
}

// FrenchFormatter renders dates and statuses for the French locale
type FrenchFormatter struct{}

// Short French month names, capitalized and cut to three letters
var frenchMonths = [12]string{
	"Jan", "Fév", "Mar", "Avr", "Mai", "Jui",
	"Jui", "Aoû", "Sep", "Oct", "Nov", "Déc",
}

var statusLabels = map[Status]string{
	StatusPending:  "En attente",
	StatusAccepted: "Accepté",
	StatusRefused:  "Refusé",
}

// FormatDate renders 2004-04-04 as "4 Avr. 04"
func (FrenchFormatter) FormatDate(iso string) (string, error) {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, iso)
	}
	return fmt.Sprintf("%d %s. %02d", t.Day(), frenchMonths[t.Month()-1], t.Year()%100), nil
}

func (FrenchFormatter) FormatStatus(status Status) (string, error) {
	label, ok := statusLabels[status]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	return label, nil
}

// ParseStatusLabel is the inverse of FormatStatus
func ParseStatusLabel(label string) (Status, error) {
	for status, l := range statusLabels {
		if l == label {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: label %q", ErrUnknownStatus, label)
}
