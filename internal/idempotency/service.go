package idempotency

import (
	"context"
	"log"
	"strings"
	"time"
)

type Repo interface {
	CreateIfAbsent(ctx context.Context, r *Record) (bool, error)
	Find(ctx context.Context, key, resourceType string) (*Record, error)
	Complete(ctx context.Context, key, resourceType string, resourceID int64, body string) error
	Delete(ctx context.Context, key, resourceType string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Service = idempotency ledger: memetakan (key, resource type) ke outcome.
type Service struct {
	repo Repo
	now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CheckAndCreate: klaim key. Urutannya penting:
//  1. coba insert atomik -> menang = NewRequest, lanjut jalankan side effect.
//  2. kalah -> baca record yang ada: completed = Duplicate (jangan ulang efek),
//     belum completed = InProgress (race beneran antara dua request).
func (s *Service) CheckAndCreate(ctx context.Context, key, resourceType string) (Result, error) {
	if strings.TrimSpace(key) == "" {
		return Result{}, ErrKeyRequired
	}

	inserted, err := s.repo.CreateIfAbsent(ctx, NewRecord(key, resourceType, s.now()))
	if err != nil {
		return Result{}, err
	}
	if inserted {
		return Result{Status: StatusNewRequest}, nil
	}

	existing, err := s.repo.Find(ctx, key, resourceType)
	if err != nil {
		return Result{}, err
	}
	if existing == nil {
		// record keburu dihapus di antara insert & read (attempt lain gagal);
		// coba klaim lagi sekali.
		inserted, err = s.repo.CreateIfAbsent(ctx, NewRecord(key, resourceType, s.now()))
		if err != nil {
			return Result{}, err
		}
		if inserted {
			return Result{Status: StatusNewRequest}, nil
		}
		return Result{Status: StatusInProgress}, nil
	}

	if existing.IsCompleted() {
		return Result{
			Status:       StatusDuplicate,
			ResourceID:   existing.ResourceID,
			ResponseBody: existing.ResponseBody,
		}, nil
	}
	return Result{Status: StatusInProgress}, nil
}

func (s *Service) Complete(ctx context.Context, key, resourceType string, resourceID int64, body string) error {
	return s.repo.Complete(ctx, key, resourceType, resourceID, body)
}

// Delete melepas key setelah attempt gagal, supaya client bisa retry dengan key sama.
func (s *Service) Delete(ctx context.Context, key, resourceType string) error {
	return s.repo.Delete(ctx, key, resourceType)
}

// CleanupExpired: housekeeping, bukan jalur correctness.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

// RunSweeper: loop periodik sampai ctx selesai. Error cuma di-log — telat
// nyapu hanya menunda reclaim storage.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			n, err := s.CleanupExpired(ctx)
			if err != nil {
				log.Printf("idempotency sweep: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("idempotency sweep: deleted %d expired records", n)
			}
		}
	}
}
