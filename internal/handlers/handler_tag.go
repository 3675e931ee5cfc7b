package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/mymoney_app/internal/core/ports/services"
	"github.com/SscSPs/mymoney_app/internal/dto"
	"github.com/gin-gonic/gin"
)

type tagHandler struct {
	tagService portssvc.TagSvcFacade
}

func registerTagRoutes(rg *gin.RouterGroup, tagService portssvc.TagSvcFacade) {
	h := &tagHandler{tagService: tagService}

	tags := rg.Group("/tags")
	{
		tags.POST("", h.createTag)
		tags.GET("", h.listTags)
		tags.PUT("/:tagID", h.updateTag)
		tags.DELETE("/:tagID", h.deleteTag)
	}
}

// createTag godoc
// @Summary Create a tag
// @Tags tags
// @Accept  json
// @Produce  json
// @Param   tag body dto.CreateTagRequest true "Tag"
// @Success 201 {object} dto.TagResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 409 {object} ErrorResponse "Tag already exists"
// @Security BearerAuth
// @Router /tags [post]
func (h *tagHandler) createTag(c *gin.Context) {
	var req dto.CreateTagRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	tag, err := h.tagService.CreateTag(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create tag")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTagResponse(tag))
}

// listTags godoc
// @Summary List tags
// @Tags tags
// @Produce  json
// @Success 200 {object} dto.ListTagsResponse
// @Security BearerAuth
// @Router /tags [get]
func (h *tagHandler) listTags(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	tags, err := h.tagService.ListTags(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to list tags")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTagsResponse(tags))
}

// updateTag godoc
// @Summary Rename a tag
// @Tags tags
// @Accept  json
// @Produce  json
// @Param   tagID path string true "Tag ID"
// @Param   tag body dto.UpdateTagRequest true "Tag"
// @Success 200 {object} dto.TagResponse
// @Failure 404 {object} ErrorResponse "Tag not found"
// @Failure 409 {object} ErrorResponse "Tag already exists"
// @Security BearerAuth
// @Router /tags/{tagID} [put]
func (h *tagHandler) updateTag(c *gin.Context) {
	var req dto.UpdateTagRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	tag, err := h.tagService.UpdateTag(c.Request.Context(), c.Param("tagID"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update tag")
		return
	}
	c.JSON(http.StatusOK, dto.ToTagResponse(tag))
}

// deleteTag godoc
// @Summary Delete a tag
// @Description Deletes a tag. Transactions and schedulers using it lose the tag.
// @Tags tags
// @Param   tagID path string true "Tag ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse "Tag not found"
// @Security BearerAuth
// @Router /tags/{tagID} [delete]
func (h *tagHandler) deleteTag(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.tagService.DeleteTag(c.Request.Context(), c.Param("tagID"), userID); err != nil {
		respondError(c, err, "Failed to delete tag")
		return
	}
	c.Status(http.StatusNoContent)
}
