package idempotency

import (
	"net/http"
	"time"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/apperr"
)

var (
	ErrKeyRequired = apperr.New("PAY007", "idempotency key wajib diisi", http.StatusBadRequest)

	// ErrInProgress: ada request lain dengan key sama yang masih jalan.
	// Kebijakan eksplisit: tolak dengan conflict yang retryable, jangan nunggu.
	ErrInProgress = apperr.Retryable("IDEM001", "request dengan key ini sedang diproses", http.StatusConflict)
)

// TTL record; lewat dari ini disapu background sweeper.
const TTL = 24 * time.Hour

// Record = satu sighting key per resource type. Completed <=> ResourceID terisi.
// Paling banyak satu record COMPLETED per (key, resource type) — dijaga unique
// constraint di storage.
type Record struct {
	Key          string
	ResourceType string
	ResourceID   *int64
	ResponseBody *string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

func NewRecord(key, resourceType string, now time.Time) *Record {
	return &Record{
		Key:          key,
		ResourceType: resourceType,
		ExpiresAt:    now.Add(TTL),
		CreatedAt:    now,
	}
}

func (r *Record) IsCompleted() bool { return r.ResourceID != nil }

func (r *Record) IsExpired(now time.Time) bool { return now.After(r.ExpiresAt) }

type Status int

const (
	StatusNewRequest Status = iota
	StatusDuplicate
	StatusInProgress
)

// Result dari CheckAndCreate. ResourceID/ResponseBody hanya terisi utk Duplicate.
type Result struct {
	Status       Status
	ResourceID   *int64
	ResponseBody *string
}

func (r Result) IsNewRequest() bool { return r.Status == StatusNewRequest }
func (r Result) IsDuplicate() bool  { return r.Status == StatusDuplicate }
func (r Result) IsInProgress() bool { return r.Status == StatusInProgress }
