package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/mymoney_app/internal/apperrors"
	"github.com/SscSPs/mymoney_app/internal/core/domain"
	portsrepo "github.com/SscSPs/mymoney_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mymoney_app/internal/core/ports/services"
	"github.com/SscSPs/mymoney_app/internal/dto"
	"github.com/google/uuid"
)

type tagService struct {
	BaseService
	tagRepo portsrepo.TagRepositoryFacade
	now     func() time.Time
}

// NewTagService creates a new tag service.
func NewTagService(tagRepo portsrepo.TagRepositoryFacade) portssvc.TagSvcFacade {
	return &tagService{tagRepo: tagRepo, now: defaultNow}
}

var _ portssvc.TagSvcFacade = (*tagService)(nil)

func (s *tagService) CreateTag(ctx context.Context, req dto.CreateTagRequest, userID string) (*domain.Tag, error) {
	now := s.now()
	tag := domain.Tag{
		TagID:   uuid.NewString(),
		Name:    req.Name,
		OwnerID: userID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.tagRepo.SaveTag(ctx, tag); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: tag %q already exists", apperrors.ErrDuplicate, req.Name)
		}
		s.LogError(ctx, err, "Failed to save tag", slog.String("name", req.Name))
		return nil, err
	}
	return &tag, nil
}

func (s *tagService) ListTags(ctx context.Context, userID string) ([]domain.Tag, error) {
	tags, err := s.tagRepo.ListTagsByOwner(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list tags", slog.String("user_id", userID))
		return nil, err
	}
	if tags == nil {
		return []domain.Tag{}, nil
	}
	return tags, nil
}

// ownedTag hides tags of other users behind ErrNotFound.
func (s *tagService) ownedTag(ctx context.Context, tagID, userID string) (*domain.Tag, error) {
	tag, err := s.tagRepo.FindTagByID(ctx, tagID)
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to find tag", slog.String("tag_id", tagID))
		return nil, err
	}
	if tag.OwnerID != userID {
		return nil, fmt.Errorf("%w: tag %s", apperrors.ErrNotFound, tagID)
	}
	return tag, nil
}

func (s *tagService) UpdateTag(ctx context.Context, tagID string, req dto.UpdateTagRequest, userID string) (*domain.Tag, error) {
	tag, err := s.ownedTag(ctx, tagID, userID)
	if err != nil {
		return nil, err
	}
	tag.Name = req.Name
	tag.LastUpdatedAt = s.now()
	tag.LastUpdatedBy = userID

	if err := s.tagRepo.UpdateTag(ctx, *tag); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.logUnlessNotFound(ctx, err, "Failed to update tag", slog.String("tag_id", tagID))
		}
		return nil, err
	}
	return tag, nil
}

// DeleteTag leaves tagged transactions and schedulers untagged.
func (s *tagService) DeleteTag(ctx context.Context, tagID string, userID string) error {
	if _, err := s.ownedTag(ctx, tagID, userID); err != nil {
		return err
	}
	if err := s.tagRepo.DeleteTag(ctx, tagID); err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to delete tag", slog.String("tag_id", tagID))
		return err
	}
	return nil
}

func (s *tagService) EnsureTagOwner(ctx context.Context, tagID string, userID string) error {
	if _, err := s.ownedTag(ctx, tagID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: unknown tag %s", apperrors.ErrValidation, tagID)
		}
		return err
	}
	return nil
}
