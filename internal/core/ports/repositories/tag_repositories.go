package repositories

import (
	"context"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
)

// TagReader defines read operations for tag data
type TagReader interface {
	FindTagByID(ctx context.Context, tagID string) (*domain.Tag, error)
	ListTagsByOwner(ctx context.Context, ownerID string) ([]domain.Tag, error)
}

// TagWriter defines write operations for tag data
type TagWriter interface {
	SaveTag(ctx context.Context, tag domain.Tag) error
	UpdateTag(ctx context.Context, tag domain.Tag) error
	// DeleteTag removes a tag; referencing transactions and schedulers keep existing with a NULL tag.
	DeleteTag(ctx context.Context, tagID string) error
}

// TagRepositoryFacade combines all tag-related repository interfaces
type TagRepositoryFacade interface {
	TagReader
	TagWriter
}
