package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sharelist/sharelist/internal/models"
	"github.com/sharelist/sharelist/internal/repository"
)

type shareRepository struct {
	db *sql.DB
}

// NewShareRepository creates a new list share repository
func NewShareRepository(db *sql.DB) repository.ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) Create(ctx context.Context, share *models.ListShare) (*models.ListShare, error) {
	query := `
		INSERT INTO list_shares (id, list_id, target_user_id, target_family_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	if share.ID == uuid.Nil {
		share.ID = uuid.New()
	}
	share.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		share.ID,
		share.ListID,
		share.TargetUserID,
		share.TargetFamilyID,
		share.CreatedAt,
	).Scan(&share.ID, &share.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create list share: %w", err)
	}

	return share, nil
}

func (r *shareRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ListShare, error) {
	query := `
		SELECT id, list_id, target_user_id, target_family_id, created_at
		FROM list_shares
		WHERE id = $1`

	share := &models.ListShare{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&share.ID,
		&share.ListID,
		&share.TargetUserID,
		&share.TargetFamilyID,
		&share.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get list share by ID: %w", err)
	}

	return share, nil
}

func (r *shareRepository) GetForList(ctx context.Context, listID uuid.UUID) ([]*models.ListShare, error) {
	query := `
		SELECT id, list_id, target_user_id, target_family_id, created_at
		FROM list_shares
		WHERE list_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query list shares: %w", err)
	}
	defer rows.Close()

	return scanShares(rows)
}

func (r *shareRepository) GetListIDsForUser(ctx context.Context, userID string) ([]uuid.UUID, error) {
	query := `SELECT list_id FROM list_shares WHERE target_user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user shares: %w", err)
	}
	defer rows.Close()

	return scanListIDs(rows)
}

func (r *shareRepository) GetListIDsForFamilies(ctx context.Context, familyIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(familyIDs) == 0 {
		return nil, nil
	}

	query := `SELECT list_id FROM list_shares WHERE target_family_id = ANY($1)`

	ids := make([]string, len(familyIDs))
	for i, id := range familyIDs {
		ids[i] = id.String()
	}

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query family shares: %w", err)
	}
	defer rows.Close()

	return scanListIDs(rows)
}

func (r *shareRepository) ExistsForUser(ctx context.Context, listID uuid.UUID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM list_shares WHERE list_id = $1 AND target_user_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, listID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user share: %w", err)
	}
	return exists, nil
}

func (r *shareRepository) ExistsForFamily(ctx context.Context, listID, familyID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM list_shares WHERE list_id = $1 AND target_family_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, listID, familyID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check family share: %w", err)
	}
	return exists, nil
}

func (r *shareRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM list_shares WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete list share: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("list share with ID %s not found", id)
	}

	return nil
}

func scanShares(rows *sql.Rows) ([]*models.ListShare, error) {
	var shares []*models.ListShare
	for rows.Next() {
		share := &models.ListShare{}
		if err := rows.Scan(
			&share.ID,
			&share.ListID,
			&share.TargetUserID,
			&share.TargetFamilyID,
			&share.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan list share: %w", err)
		}
		shares = append(shares, share)
	}
	return shares, rows.Err()
}

func scanListIDs(rows *sql.Rows) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan list id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
