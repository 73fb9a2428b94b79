package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepo struct{ DB *pgxpool.Pool }

// CreateIfAbsent: titik serialisasi satu-satunya utk "request ini sudah pernah
// menghasilkan efek?". Harus satu statement atomik (unique constraint pada
// (idempotency_key, resource_type)), BUKAN read lalu write — dua request
// bersamaan dengan key sama tidak boleh dua-duanya lihat "absent".
func (p *PgRepo) CreateIfAbsent(ctx context.Context, r *Record) (bool, error) {
	ct, err := p.DB.Exec(ctx, `
		INSERT INTO idempotency_records(idempotency_key, resource_type, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (idempotency_key, resource_type) DO NOTHING`,
		r.Key, r.ResourceType, r.ExpiresAt, r.CreatedAt)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (p *PgRepo) Find(ctx context.Context, key, resourceType string) (*Record, error) {
	var r Record
	err := p.DB.QueryRow(ctx, `
		SELECT idempotency_key, resource_type, resource_id, response_body, expires_at, created_at
		FROM idempotency_records
		WHERE idempotency_key=$1 AND resource_type=$2`, key, resourceType).
		Scan(&r.Key, &r.ResourceType, &r.ResourceID, &r.ResponseBody, &r.ExpiresAt, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Complete: set hasil sekali saja. Idempotent — pemanggilan kedua dengan nilai
// sama tidak mengubah apa-apa (guard resource_id IS NULL OR nilai sama).
func (p *PgRepo) Complete(ctx context.Context, key, resourceType string, resourceID int64, body string) error {
	_, err := p.DB.Exec(ctx, `
		UPDATE idempotency_records
		SET resource_id=$3, response_body=$4
		WHERE idempotency_key=$1 AND resource_type=$2
		  AND (resource_id IS NULL OR resource_id=$3)`,
		key, resourceType, resourceID, body)
	return err
}

// Delete hanya record yang belum completed, supaya attempt gagal bisa
// di-retry dengan key yang sama.
func (p *PgRepo) Delete(ctx context.Context, key, resourceType string) error {
	_, err := p.DB.Exec(ctx, `
		DELETE FROM idempotency_records
		WHERE idempotency_key=$1 AND resource_type=$2 AND resource_id IS NULL`,
		key, resourceType)
	return err
}

func (p *PgRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ct, err := p.DB.Exec(ctx,
		`DELETE FROM idempotency_records WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
