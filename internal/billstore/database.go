package billstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/zombor/billed/internal/bill"
)

const billsBucket = "bills"

// ErrNotFound is returned when no bill is stored under a key
var ErrNotFound = errors.New("bill not found")

// DB defines the interface for bill persistence
type DB interface {
	// SaveBill inserts or replaces a bill keyed by its ID
	SaveBill(b *bill.Bill) error

	// GetBill retrieves a bill by ID
	GetBill(id string) (*bill.Bill, error)

	// ListBills returns all bills
	ListBills() ([]*bill.Bill, error)

	// DeleteBill removes a bill
	DeleteBill(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements DB on a bbolt file
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB opens (or creates) the database at path
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(billsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

func (b *BoltDB) SaveBill(bl *bill.Bill) error {
	if bl.ID == "" {
		return errors.New("saving bill: missing id")
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(bl)
		if err != nil {
			return fmt.Errorf("marshaling bill: %w", err)
		}
		return tx.Bucket([]byte(billsBucket)).Put([]byte(bl.ID), data)
	})
}

func (b *BoltDB) GetBill(id string) (*bill.Bill, error) {
	var bl *bill.Bill
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(billsBucket)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &bl)
	})
	if err != nil {
		return nil, err
	}
	return bl, nil
}

// ListBills returns all bills in key order
func (b *BoltDB) ListBills() ([]*bill.Bill, error) {
	bills := make([]*bill.Bill, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(billsBucket)).ForEach(func(k, v []byte) error {
			var bl bill.Bill
			if err := json.Unmarshal(v, &bl); err != nil {
				return fmt.Errorf("unmarshaling bill %s: %w", k, err)
			}
			bills = append(bills, &bl)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return bills, nil
}

func (b *BoltDB) DeleteBill(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(billsBucket)).Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
