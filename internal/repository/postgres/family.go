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

type familyRepository struct {
	db *sql.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *sql.DB) repository.FamilyRepository {
	return &familyRepository{db: db}
}

func (r *familyRepository) Create(ctx context.Context, family *models.Family) (*models.Family, error) {
	query := `
		INSERT INTO families (id, owner_user_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	if family.ID == uuid.Nil {
		family.ID = uuid.New()
	}
	family.CreatedAt = now
	family.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		family.ID,
		family.OwnerUserID,
		family.Name,
		family.CreatedAt,
		family.UpdatedAt,
	).Scan(&family.ID, &family.CreatedAt, &family.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	return family, nil
}

func (r *familyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Family, error) {
	query := `
		SELECT id, owner_user_id, name, created_at, updated_at
		FROM families
		WHERE id = $1`

	family := &models.Family{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&family.ID,
		&family.OwnerUserID,
		&family.Name,
		&family.CreatedAt,
		&family.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get family by ID: %w", err)
	}

	return family, nil
}

func (r *familyRepository) Update(ctx context.Context, family *models.Family) (*models.Family, error) {
	query := `
		UPDATE families
		SET name = $2, updated_at = $3
		WHERE id = $1`

	family.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query, family.ID, family.Name, family.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update family: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, fmt.Errorf("family with ID %s not found", family.ID)
	}

	return family, nil
}

func (r *familyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM families WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("family with ID %s not found", id)
	}

	return nil
}

func (r *familyRepository) AddMember(ctx context.Context, familyID uuid.UUID, userID, role string) (*models.FamilyMember, error) {
	query := `
		INSERT INTO family_members (id, family_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, joined_at`

	member := &models.FamilyMember{
		ID:       uuid.New(),
		FamilyID: familyID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now(),
	}

	err := r.db.QueryRowContext(ctx, query,
		member.ID,
		member.FamilyID,
		member.UserID,
		member.Role,
		member.JoinedAt,
	).Scan(&member.ID, &member.JoinedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to add family member: %w", err)
	}

	return member, nil
}

func (r *familyRepository) RemoveMember(ctx context.Context, familyID uuid.UUID, userID string) error {
	query := `DELETE FROM family_members WHERE family_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, familyID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove family member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user %s is not a member of family %s", userID, familyID)
	}

	return nil
}

func (r *familyRepository) GetMemberships(ctx context.Context, familyID uuid.UUID) ([]*models.FamilyMember, error) {
	query := `
		SELECT id, family_id, user_id, role, joined_at
		FROM family_members
		WHERE family_id = $1
		ORDER BY joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family members: %w", err)
	}
	defer rows.Close()

	return scanMemberships(rows)
}

func (r *familyRepository) GetMembershipsForUser(ctx context.Context, userID string) ([]*models.FamilyMember, error) {
	query := `
		SELECT id, family_id, user_id, role, joined_at
		FROM family_members
		WHERE user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships for user: %w", err)
	}
	defer rows.Close()

	return scanMemberships(rows)
}

func (r *familyRepository) GetOwnedBy(ctx context.Context, userID string) ([]*models.Family, error) {
	query := `
		SELECT id, owner_user_id, name, created_at, updated_at
		FROM families
		WHERE owner_user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query owned families: %w", err)
	}
	defer rows.Close()

	var families []*models.Family
	for rows.Next() {
		family := &models.Family{}
		if err := rows.Scan(
			&family.ID,
			&family.OwnerUserID,
			&family.Name,
			&family.CreatedAt,
			&family.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, family)
	}

	return families, rows.Err()
}

func (r *familyRepository) HasMember(ctx context.Context, familyID uuid.UUID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM family_members WHERE family_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, familyID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check family membership: %w", err)
	}
	return exists, nil
}

func scanMemberships(rows *sql.Rows) ([]*models.FamilyMember, error) {
	var members []*models.FamilyMember
	for rows.Next() {
		member := &models.FamilyMember{}
		if err := rows.Scan(
			&member.ID,
			&member.FamilyID,
			&member.UserID,
			&member.Role,
			&member.JoinedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}
