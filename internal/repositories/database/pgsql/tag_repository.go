package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/mymoney_app/internal/apperrors"
	"github.com/SscSPs/mymoney_app/internal/core/domain"
	portsrepo "github.com/SscSPs/mymoney_app/internal/core/ports/repositories"
	"github.com/SscSPs/mymoney_app/internal/models"
	"github.com/SscSPs/mymoney_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTagRepository struct {
	db *pgxpool.Pool
}

func newPgxTagRepository(db *pgxpool.Pool) portsrepo.TagRepositoryFacade {
	return &PgxTagRepository{db: db}
}

var _ portsrepo.TagRepositoryFacade = (*PgxTagRepository)(nil)

func (r *PgxTagRepository) SaveTag(ctx context.Context, tag domain.Tag) error {
	m := mapping.ToModelTag(tag)
	query := `
		INSERT INTO tags (tag_id, name, owner_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db.Exec(ctx, query, m.TagID, m.Name, m.OwnerID, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return mapWriteError(err, "tag "+m.Name)
	}
	return nil
}

func (r *PgxTagRepository) FindTagByID(ctx context.Context, tagID string) (*domain.Tag, error) {
	query := `
		SELECT tag_id, name, owner_id, created_at, created_by, last_updated_at, last_updated_by
		FROM tags
		WHERE tag_id = $1;
	`
	var m models.Tag
	err := r.db.QueryRow(ctx, query, tagID).Scan(
		&m.TagID, &m.Name, &m.OwnerID, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapReadError(err, "tag "+tagID)
	}
	tag := mapping.ToDomainTag(m)
	return &tag, nil
}

func (r *PgxTagRepository) ListTagsByOwner(ctx context.Context, ownerID string) ([]domain.Tag, error) {
	query := `
		SELECT tag_id, name, owner_id, created_at, created_by, last_updated_at, last_updated_by
		FROM tags
		WHERE owner_id = $1
		ORDER BY name;
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		var m models.Tag
		if err := rows.Scan(&m.TagID, &m.Name, &m.OwnerID, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, mapping.ToDomainTag(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}
	return tags, nil
}

func (r *PgxTagRepository) UpdateTag(ctx context.Context, tag domain.Tag) error {
	query := `
		UPDATE tags
		SET name = $2, last_updated_at = $3, last_updated_by = $4
		WHERE tag_id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query, tag.TagID, tag.Name, tag.LastUpdatedAt, tag.LastUpdatedBy)
	if err != nil {
		return mapWriteError(err, "tag "+tag.Name)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteTag removes the tag; referencing transactions and schedulers get a NULL tag.
func (r *PgxTagRepository) DeleteTag(ctx context.Context, tagID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM tags WHERE tag_id = $1;`, tagID)
	if err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", tagID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
