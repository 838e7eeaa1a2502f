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

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sql.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) UpsertCategory(ctx context.Context, name string) (*models.Category, error) {
	query := `
		INSERT INTO categories (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`

	cat := &models.Category{}
	err := r.db.QueryRowContext(ctx, query, uuid.New(), name).Scan(&cat.ID, &cat.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert category: %w", err)
	}
	return cat, nil
}

func (r *categoryRepository) UpsertSubCategory(ctx context.Context, name string, parentID uuid.UUID) (*models.SubCategory, error) {
	query := `
		INSERT INTO sub_categories (id, name, parent_category_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (name, parent_category_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, parent_category_id`

	sub := &models.SubCategory{}
	err := r.db.QueryRowContext(ctx, query, uuid.New(), name, parentID).Scan(
		&sub.ID, &sub.Name, &sub.ParentCategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert sub-category: %w", err)
	}
	return sub, nil
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]*models.Category, error) {
	query := `SELECT id, name FROM categories ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var cats []*models.Category
	byID := make(map[uuid.UUID]*models.Category)
	for rows.Next() {
		cat := &models.Category{}
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, cat)
		byID[cat.ID] = cat
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subQuery := `SELECT id, name, parent_category_id FROM sub_categories ORDER BY name ASC`
	subRows, err := r.db.QueryContext(ctx, subQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub-categories: %w", err)
	}
	defer subRows.Close()

	for subRows.Next() {
		sub := &models.SubCategory{}
		if err := subRows.Scan(&sub.ID, &sub.Name, &sub.ParentCategoryID); err != nil {
			return nil, fmt.Errorf("failed to scan sub-category: %w", err)
		}
		if parent, ok := byID[sub.ParentCategoryID]; ok {
			parent.SubCategories = append(parent.SubCategories, sub)
		}
	}

	return cats, subRows.Err()
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	query := `SELECT id, name FROM categories WHERE lower(name) = lower($1)`

	cat := &models.Category{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(&cat.ID, &cat.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find category by name: %w", err)
	}
	return cat, nil
}

func (r *categoryRepository) FindSubByName(ctx context.Context, name string, parentID uuid.UUID) (*models.SubCategory, error) {
	query := `
		SELECT id, name, parent_category_id
		FROM sub_categories
		WHERE lower(name) = lower($1) AND parent_category_id = $2`

	sub := &models.SubCategory{}
	err := r.db.QueryRowContext(ctx, query, name, parentID).Scan(
		&sub.ID, &sub.Name, &sub.ParentCategoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find sub-category by name: %w", err)
	}
	return sub, nil
}

type itemNameRepository struct {
	db *sql.DB
}

// NewItemNameRepository creates a new previous-item-name repository
func NewItemNameRepository(db *sql.DB) repository.ItemNameRepository {
	return &itemNameRepository{db: db}
}

func (r *itemNameRepository) Record(ctx context.Context, userID, name string) error {
	query := `
		INSERT INTO previous_item_names (id, user_id, name, last_used_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, name) DO UPDATE SET last_used_at = EXCLUDED.last_used_at`

	_, err := r.db.ExecContext(ctx, query, uuid.New(), userID, name, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record item name: %w", err)
	}
	return nil
}

func (r *itemNameRepository) GetForUser(ctx context.Context, userID, prefix string, limit int) ([]*models.PreviousItemName, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, user_id, name, last_used_at
		FROM previous_item_names
		WHERE user_id = $1 AND lower(name) LIKE lower($2) || '%'
		ORDER BY last_used_at DESC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, userID, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query item names: %w", err)
	}
	defer rows.Close()

	var names []*models.PreviousItemName
	for rows.Next() {
		n := &models.PreviousItemName{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Name, &n.LastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item name: %w", err)
		}
		names = append(names, n)
	}

	return names, rows.Err()
}
