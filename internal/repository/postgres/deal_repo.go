package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gomintco/gomint-api/internal/errs"
	"github.com/gomintco/gomint-api/internal/model"
)

// DealRepo implements DealRepository using PostgreSQL.
type DealRepo struct{ db *DB }

// NewDealRepo constructs a deal repository.
func NewDealRepo(db *DB) *DealRepo { return &DealRepo{db: db} }

// Create inserts a content-addressed deal. Uniqueness of the hash is enforced
// by the store; a violation is reported as ErrDuplicateEntity.
func (r *DealRepo) Create(ctx context.Context, d *model.Deal) error {
	body, err := json.Marshal(d.Body)
	if err != nil {
		return fmt.Errorf("serialize deal body: %w", err)
	}
	const q = `
INSERT INTO deals (id, hash, body)
VALUES ($1, $2, $3)`
	_, err = r.db.Pool.Exec(ctx, q, d.ID, d.Hash, body)
	if isUniqueViolation(err) {
		return errs.ErrDuplicateEntity
	}
	return err
}

// GetByHash loads a deal by its content hash.
func (r *DealRepo) GetByHash(ctx context.Context, hash string) (*model.Deal, error) {
	const q = `
SELECT id, hash, body, created_at FROM deals WHERE hash=$1`
	var d model.Deal
	var body []byte
	err := r.db.Pool.QueryRow(ctx, q, hash).Scan(&d.ID, &d.Hash, &body, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	if err := json.Unmarshal(body, &d.Body); err != nil {
		return nil, fmt.Errorf("decode deal body: %w", err)
	}
	return &d, nil
}
