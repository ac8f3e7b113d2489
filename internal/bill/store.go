package bill

import (
	"context"
	"fmt"
)

// Store is the remote persistence for bills
type Store interface {
	// List returns the bills of the user the store is bound to
	List(ctx context.Context) ([]Bill, error)

	// Create uploads a receipt and reserves a bill key for it
	Create(ctx context.Context, upload Upload) (Uploaded, error)

	// Update writes the full bill under id
	Update(ctx context.Context, id string, b Bill) error
}

// Upload is the multipart payload of the upload phase
type Upload struct {
	Filename string
	Data     []byte
	Email    string
}

// Uploaded is the result of the upload phase
type Uploaded struct {
	FileURL  string `json:"fileUrl"`
	BillID   string `json:"key"`
	FileName string `json:"-"`
}

// StoreError is a rejected remote call carrying the store's status code
type StoreError struct {
	Code    int
	Message string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("Erreur %d", e.Code)
}
