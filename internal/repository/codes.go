package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/caxtonapp/push-relay-go/internal/database"
	"github.com/caxtonapp/push-relay-go/internal/model"
)

// CodeRepository persists pairing codes. Codes may collide; every lookup
// takes the most recently created matching row.
type CodeRepository interface {
	Create(ctx context.Context, pushToken, code string) (*model.PairingCode, error)
	FindByCode(ctx context.Context, code string) (*model.PairingCode, error)
	DeleteByCode(ctx context.Context, code string) error
	// RedeemByCode deletes and returns the newest row matching code that is
	// younger than maxAge, as a single statement. Returns nil when no live
	// row matches, so a code can be redeemed at most once.
	RedeemByCode(ctx context.Context, code string, maxAge time.Duration) (*model.PairingCode, error)
	DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

type codeRepo struct {
	db database.DBTX
}

func NewCodeRepository(db database.DBTX) CodeRepository {
	return &codeRepo{db: db}
}

func (r *codeRepo) Create(ctx context.Context, pushToken, code string) (*model.PairingCode, error) {
	var pc model.PairingCode
	err := r.db.GetContext(ctx, &pc, `
		INSERT INTO codes (pushtoken, code)
		VALUES ($1, $2)
		RETURNING *
	`, pushToken, code)
	if err != nil {
		return nil, err
	}
	return &pc, nil
}

func (r *codeRepo) FindByCode(ctx context.Context, code string) (*model.PairingCode, error) {
	var pc model.PairingCode
	err := r.db.GetContext(ctx, &pc, `
		SELECT * FROM codes
		WHERE code = $1
		ORDER BY created DESC
		LIMIT 1
	`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pc, nil
}

func (r *codeRepo) DeleteByCode(ctx context.Context, code string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM codes WHERE code = $1
	`, code)
	return err
}

func (r *codeRepo) RedeemByCode(ctx context.Context, code string, maxAge time.Duration) (*model.PairingCode, error) {
	var pc model.PairingCode
	err := r.db.GetContext(ctx, &pc, `
		DELETE FROM codes
		WHERE id = (
			SELECT id FROM codes
			WHERE code = $1 AND created > NOW() - make_interval(secs => $2)
			ORDER BY created DESC
			LIMIT 1
		)
		RETURNING *
	`, code, maxAge.Seconds())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pc, nil
}

func (r *codeRepo) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM codes
		WHERE created < NOW() - make_interval(secs => $1)
	`, age.Seconds())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
