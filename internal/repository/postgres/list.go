package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sharelist/sharelist/internal/models"
	"github.com/sharelist/sharelist/internal/repository"
)

type listRepository struct {
	db *sql.DB
}

// NewListRepository creates a new list repository
func NewListRepository(db *sql.DB) repository.ListRepository {
	return &listRepository{db: db}
}

func (r *listRepository) Create(ctx context.Context, list *models.List) (*models.List, error) {
	query := `
		INSERT INTO lists (id, owner_user_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	if list.ID == uuid.Nil {
		list.ID = uuid.New()
	}
	list.CreatedAt = now
	list.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		list.ID,
		list.OwnerUserID,
		list.Name,
		list.CreatedAt,
		list.UpdatedAt,
	).Scan(&list.ID, &list.CreatedAt, &list.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}

	return list, nil
}

func (r *listRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.List, error) {
	query := `
		SELECT id, owner_user_id, name, created_at, updated_at
		FROM lists
		WHERE id = $1`

	list := &models.List{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&list.ID,
		&list.OwnerUserID,
		&list.Name,
		&list.CreatedAt,
		&list.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get list by ID: %w", err)
	}

	return list, nil
}

func (r *listRepository) GetOwnedBy(ctx context.Context, userID string) ([]*models.List, error) {
	query := `
		SELECT id, owner_user_id, name, created_at, updated_at
		FROM lists
		WHERE owner_user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query owned lists: %w", err)
	}
	defer rows.Close()

	return scanLists(rows)
}

func (r *listRepository) Update(ctx context.Context, list *models.List) (*models.List, error) {
	query := `
		UPDATE lists
		SET name = $2, updated_at = $3
		WHERE id = $1`

	list.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query, list.ID, list.Name, list.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update list: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, fmt.Errorf("list with ID %s not found", list.ID)
	}

	return list, nil
}

func (r *listRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM lists WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("list with ID %s not found", id)
	}

	return nil
}

func scanLists(rows *sql.Rows) ([]*models.List, error) {
	var lists []*models.List
	for rows.Next() {
		list := &models.List{}
		if err := rows.Scan(
			&list.ID,
			&list.OwnerUserID,
			&list.Name,
			&list.CreatedAt,
			&list.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}
