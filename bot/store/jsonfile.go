// Package store provides the persistence backends for completed
// enquiries: a SQLite database and a single-document JSON file. Both
// satisfy contract.InquiryStore and are interchangeable.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	contractx "github.com/bairolabs/bairo/bot/contract"
)

// JSONFileStore keeps all enquiries in one JSON document, the shape
// being {"inquiries": [...]}. A missing file is an empty store; an
// unreadable or unparseable file is ErrStoreUnavailable, never treated
// as empty.
type JSONFileStore struct {
	path string
	mu   sync.Mutex

	now func() time.Time
}

type jsonDocument struct {
	Inquiries []contractx.Inquiry `json:"inquiries"`
}

// JSONFileOption customizes a JSONFileStore.
type JSONFileOption func(*JSONFileStore)

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(now func() time.Time) JSONFileOption {
	return func(s *JSONFileStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewJSONFile creates a store persisting to the given path.
func NewJSONFile(path string, opts ...JSONFileOption) (*JSONFileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json store path is required")
	}
	s := &JSONFileStore{
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *JSONFileStore) load() (*jsonDocument, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &jsonDocument{}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", contractx.ErrStoreUnavailable, s.path, err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", contractx.ErrStoreUnavailable, s.path, err)
	}
	return &doc, nil
}

// save writes through a temp file and rename so a crash mid-write
// cannot leave a half document behind.
func (s *JSONFileStore) save(doc *jsonDocument) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode store: %v", contractx.ErrStoreUnavailable, err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create store directory: %v", contractx.ErrStoreUnavailable, err)
	}
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", contractx.ErrStoreUnavailable, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", contractx.ErrStoreUnavailable, s.path, err)
	}
	return nil
}

func matchesContact(inq contractx.Inquiry, mobile, email string) bool {
	return inq.Mobile == mobile || inq.Email == email
}

// Exists reports whether any recorded enquiry shares the mobile or the
// email.
func (s *JSONFileStore) Exists(ctx context.Context, mobile, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return false, err
	}
	for _, inq := range doc.Inquiries {
		if matchesContact(inq, mobile, email) {
			return true, nil
		}
	}
	return false, nil
}

// Append records the enquiry without any duplicate check.
func (s *JSONFileStore) Append(ctx context.Context, inq *contractx.Inquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.append(inq)
}

func (s *JSONFileStore) append(inq *contractx.Inquiry) error {
	if inq == nil {
		return fmt.Errorf("%w: nil inquiry", contractx.ErrValidation)
	}
	if strings.TrimSpace(inq.ID) == "" {
		inq.ID = uuid.NewString()
	}
	if inq.CreatedAt.IsZero() {
		inq.CreatedAt = s.now().UTC()
	}

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Inquiries = append(doc.Inquiries, *inq)
	return s.save(doc)
}

// Register checks the contact and appends under one lock hold, so the
// check-then-act sequence cannot interleave with another session.
func (s *JSONFileStore) Register(ctx context.Context, inq *contractx.Inquiry) error {
	if inq == nil {
		return fmt.Errorf("%w: nil inquiry", contractx.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	for _, existing := range doc.Inquiries {
		if matchesContact(existing, inq.Mobile, inq.Email) {
			return fmt.Errorf("%w: mobile=%s", contractx.ErrDuplicateContact, inq.Mobile)
		}
	}
	return s.append(inq)
}

// ListAll returns every enquiry in insertion order.
func (s *JSONFileStore) ListAll(ctx context.Context) ([]contractx.Inquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]contractx.Inquiry, len(doc.Inquiries))
	copy(out, doc.Inquiries)
	return out, nil
}
