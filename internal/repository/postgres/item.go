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

type itemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

// itemSelect joins category names in so item rows come back ready for the
// live event payload.
const itemSelect = `
	SELECT i.id, i.list_id, i.name, i.quantity, i.is_checked, i.added_at,
	       i.category_id, c.name, i.sub_category_id, sc.name
	FROM items i
	LEFT JOIN categories c ON c.id = i.category_id
	LEFT JOIN sub_categories sc ON sc.id = i.sub_category_id`

func (r *itemRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	query := `
		INSERT INTO items (id, list_id, name, quantity, is_checked, added_at, category_id, sub_category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.AddedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.ListID,
		item.Name,
		item.Quantity,
		item.IsChecked,
		item.AddedAt,
		item.CategoryID,
		item.SubCategoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	// Re-read through the joined select so category names are populated.
	return r.GetByID(ctx, item.ID)
}

func (r *itemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	query := itemSelect + ` WHERE i.id = $1`

	item := &models.Item{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.ListID,
		&item.Name,
		&item.Quantity,
		&item.IsChecked,
		&item.AddedAt,
		&item.CategoryID,
		&item.CategoryName,
		&item.SubCategoryID,
		&item.SubCategoryName,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item by ID: %w", err)
	}

	return item, nil
}

func (r *itemRepository) GetByList(ctx context.Context, listID uuid.UUID) ([]*models.Item, error) {
	query := itemSelect + ` WHERE i.list_id = $1 ORDER BY i.added_at ASC`

	rows, err := r.db.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(
			&item.ID,
			&item.ListID,
			&item.Name,
			&item.Quantity,
			&item.IsChecked,
			&item.AddedAt,
			&item.CategoryID,
			&item.CategoryName,
			&item.SubCategoryID,
			&item.SubCategoryName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *itemRepository) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	query := `
		UPDATE items
		SET name = $2, quantity = $3, is_checked = $4, list_id = $5,
		    category_id = $6, sub_category_id = $7
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.Quantity,
		item.IsChecked,
		item.ListID,
		item.CategoryID,
		item.SubCategoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, fmt.Errorf("item with ID %s not found", item.ID)
	}

	return r.GetByID(ctx, item.ID)
}

func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM items WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("item with ID %s not found", id)
	}

	return nil
}
