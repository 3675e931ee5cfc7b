package dto

import (
	"time"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
)

// CreateTagRequest defines the data needed to create a tag.
type CreateTagRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// UpdateTagRequest renames a tag.
type UpdateTagRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// TagResponse defines the data returned for a tag.
type TagResponse struct {
	TagID     string    `json:"tagID"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToTagResponse converts a domain.Tag to TagResponse DTO.
func ToTagResponse(t *domain.Tag) TagResponse {
	return TagResponse{TagID: t.TagID, Name: t.Name, CreatedAt: t.CreatedAt}
}

// ListTagsResponse wraps the list of tags.
type ListTagsResponse struct {
	Tags []TagResponse `json:"tags"`
}

// ToListTagsResponse converts a slice of domain.Tag to ListTagsResponse DTO.
func ToListTagsResponse(tags []domain.Tag) ListTagsResponse {
	res := make([]TagResponse, len(tags))
	for i := range tags {
		res[i] = ToTagResponse(&tags[i])
	}
	return ListTagsResponse{Tags: res}
}
