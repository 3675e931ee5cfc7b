package services

import (
	"context"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/SscSPs/mymoney_app/internal/dto"
)

// TagSvcFacade defines the tag operations. Tags are private to their owner.
type TagSvcFacade interface {
	CreateTag(ctx context.Context, req dto.CreateTagRequest, userID string) (*domain.Tag, error)
	ListTags(ctx context.Context, userID string) ([]domain.Tag, error)
	UpdateTag(ctx context.Context, tagID string, req dto.UpdateTagRequest, userID string) (*domain.Tag, error)
	DeleteTag(ctx context.Context, tagID string, userID string) error

	// EnsureTagOwner fails with ErrValidation when tagID does not belong to userID.
	EnsureTagOwner(ctx context.Context, tagID string, userID string) error
}
