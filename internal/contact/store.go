package contact

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/folio/internal/db"
)

// Submission is a contact message received by the server.
type Submission struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists received contact messages.
type Store struct {
	db *db.DB
}

// NewStore creates a new contact message store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create validates and stores a message.
func (s *Store) Create(ctx context.Context, f Fields, remoteAddr string) (*Submission, error) {
	f = f.Trimmed()
	if err := Validate(f); err != nil {
		return nil, err
	}
	sub := Submission{
		ID:         uuid.New().String(),
		Name:       f.Name,
		Email:      f.Email,
		Message:    f.Message,
		RemoteAddr: remoteAddr,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, message, remote_addr, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Name, sub.Email, sub.Message, sub.RemoteAddr, sub.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting contact message: %w", err)
	}
	return &sub, nil
}

// List returns the most recent messages, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, message, remote_addr, created_at
		 FROM contact_messages ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing contact messages: %w", err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Message, &sub.RemoteAddr, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning contact message: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// Count returns how many messages are stored.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting contact messages: %w", err)
	}
	return n, nil
}

// LocalChannel delivers form submissions straight into a Store.
type LocalChannel struct {
	store      *Store
	remoteAddr string
}

// NewLocalChannel creates a channel writing to store. remoteAddr is recorded
// with each message.
func NewLocalChannel(store *Store, remoteAddr string) *LocalChannel {
	return &LocalChannel{store: store, remoteAddr: remoteAddr}
}

// Submit returns Rejected for messages that fail validation and NetworkError
// when the message could not be stored.
func (c *LocalChannel) Submit(ctx context.Context, f Fields) Outcome {
	_, err := c.store.Create(ctx, f, c.remoteAddr)
	switch {
	case err == nil:
		return OK
	case errors.Is(err, ErrRequiredFields), errors.Is(err, ErrInvalidEmail):
		return Rejected
	default:
		log.Printf("contact: storing message: %v", err)
		return NetworkError
	}
}
