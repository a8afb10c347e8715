// Package v1 exposes the REST API consumed by the web client.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	notesvc "github.com/insightink/insightink/server/service/note"
	tagsvc "github.com/insightink/insightink/server/service/tag"
	"github.com/insightink/insightink/store"
)

// APIV1Service groups the v1 route handlers.
type APIV1Service struct {
	noteService *notesvc.Service
	tagService  *tagsvc.Service
}

// NewAPIV1Service creates the v1 API surface.
func NewAPIV1Service(noteService *notesvc.Service, tagService *tagsvc.Service) *APIV1Service {
	return &APIV1Service{
		noteService: noteService,
		tagService:  tagService,
	}
}

// RegisterRoutes mounts all v1 routes on the given group.
func (s *APIV1Service) RegisterRoutes(g *echo.Group) {
	g.GET("/notes", s.listNotes)
	g.POST("/notes", s.createNote)
	g.GET("/notes/search", s.searchNotes)
	g.GET("/notes/:id", s.getNote)
	g.PATCH("/notes/:id", s.updateNote)
	g.DELETE("/notes/:id", s.deleteNote)
	g.GET("/notes/:id/versions", s.listNoteVersions)
	g.POST("/notes/:id/versions", s.createNoteVersion)
	g.POST("/notes/:id/suggest-tags", s.suggestTags)

	g.GET("/tags", s.listTags)
	g.POST("/tags", s.createTag)
	g.GET("/tags/:id", s.getTag)
	g.PATCH("/tags/:id", s.updateTag)
	g.DELETE("/tags/:id", s.deleteTag)
	g.GET("/tags/:id/notes", s.notesByTag)
}

// httpError maps store errors onto HTTP statuses. Transaction failures fall
// through to 500, which the client treats as retryable.
func httpError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidReference):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrTagNameExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
