package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/insightink/insightink/store"
)

type tagPayload struct {
	ID        int32  `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type createTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type updateTagRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func convertTag(tag *store.Tag) *tagPayload {
	return &tagPayload{
		ID:        tag.ID,
		Name:      tag.Name,
		Color:     tag.Color,
		CreatedAt: time.Unix(tag.CreatedTs, 0).UTC().Format(time.RFC3339),
		UpdatedAt: time.Unix(tag.UpdatedTs, 0).UTC().Format(time.RFC3339),
	}
}

func convertTags(tags []*store.Tag) []*tagPayload {
	payloads := make([]*tagPayload, 0, len(tags))
	for _, tag := range tags {
		payloads = append(payloads, convertTag(tag))
	}
	return payloads
}

func (s *APIV1Service) listTags(c echo.Context) error {
	tags, err := s.tagService.ListTags(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, convertTags(tags))
}

// createTag is idempotent: posting a name that already exists
// case-insensitively returns the existing tag unchanged.
func (s *APIV1Service) createTag(c echo.Context) error {
	request := &createTagRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if request.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tag name is required")
	}

	tag, err := s.tagService.CreateTag(c.Request().Context(), request.Name, request.Color)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, convertTag(tag))
}

func (s *APIV1Service) getTag(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	tag, err := s.tagService.GetTag(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if tag == nil {
		return echo.NewHTTPError(http.StatusNotFound, "tag not found")
	}
	return c.JSON(http.StatusOK, convertTag(tag))
}

func (s *APIV1Service) updateTag(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	request := &updateTagRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}

	tag, err := s.tagService.UpdateTag(c.Request().Context(), id, request.Name, request.Color)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, convertTag(tag))
}

func (s *APIV1Service) deleteTag(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.tagService.DeleteTag(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) notesByTag(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	notes, err := s.tagService.NotesByTag(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, convertNotes(notes))
}
