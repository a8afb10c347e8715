package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	notesvc "github.com/insightink/insightink/server/service/note"
	"github.com/insightink/insightink/store"
)

type notePayload struct {
	ID        int32            `json:"id"`
	UID       string           `json:"uid"`
	Title     string           `json:"title"`
	Content   *string          `json:"content"`
	Category  *string          `json:"category"`
	CreatedAt string           `json:"createdAt"`
	UpdatedAt string           `json:"updatedAt"`
	NoteTags  []noteTagPayload `json:"noteTags"`
}

type noteTagPayload struct {
	Tag tagPayload `json:"tag"`
}

type noteVersionPayload struct {
	ID        int32   `json:"id"`
	NoteID    int32   `json:"noteId"`
	Title     string  `json:"title"`
	Content   *string `json:"content"`
	CreatedAt string  `json:"createdAt"`
}

type upsertNoteRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
	TagIDs   []int32 `json:"tagIds"`
	TagList  *string `json:"tagList"`
}

type createNoteVersionRequest struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
}

type suggestTagsRequest struct {
	Limit int `json:"limit"`
}

func convertNote(note *store.Note) *notePayload {
	payload := &notePayload{
		ID:        note.ID,
		UID:       note.UID,
		Title:     note.Title,
		Content:   note.Content,
		Category:  note.Category,
		CreatedAt: time.Unix(note.CreatedTs, 0).UTC().Format(time.RFC3339),
		UpdatedAt: time.Unix(note.UpdatedTs, 0).UTC().Format(time.RFC3339),
		NoteTags:  []noteTagPayload{},
	}
	for _, noteTag := range note.Tags {
		if noteTag.Tag == nil {
			continue
		}
		payload.NoteTags = append(payload.NoteTags, noteTagPayload{Tag: *convertTag(noteTag.Tag)})
	}
	return payload
}

func convertNotes(notes []*store.Note) []*notePayload {
	payloads := make([]*notePayload, 0, len(notes))
	for _, note := range notes {
		payloads = append(payloads, convertNote(note))
	}
	return payloads
}

func convertNoteVersion(version *store.NoteVersion) *noteVersionPayload {
	return &noteVersionPayload{
		ID:        version.ID,
		NoteID:    version.NoteID,
		Title:     version.Title,
		Content:   version.Content,
		CreatedAt: time.Unix(version.CreatedTs, 0).UTC().Format(time.RFC3339),
	}
}

func pathID(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return int32(id), nil
}

func (s *APIV1Service) listNotes(c echo.Context) error {
	notes, err := s.noteService.ListNotes(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, convertNotes(notes))
}

func (s *APIV1Service) createNote(c echo.Context) error {
	request := &upsertNoteRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}

	note, err := s.noteService.CreateNote(c.Request().Context(), &notesvc.NoteInput{
		Title:    request.Title,
		Content:  request.Content,
		Category: request.Category,
		TagIDs:   request.TagIDs,
		TagList:  request.TagList,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, convertNote(note))
}

func (s *APIV1Service) getNote(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	note, err := s.noteService.GetNote(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if note == nil {
		return echo.NewHTTPError(http.StatusNotFound, "note not found")
	}
	return c.JSON(http.StatusOK, convertNote(note))
}

func (s *APIV1Service) updateNote(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	request := &upsertNoteRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}

	note, err := s.noteService.UpdateNote(c.Request().Context(), id, &notesvc.NoteInput{
		Title:    request.Title,
		Content:  request.Content,
		Category: request.Category,
		TagIDs:   request.TagIDs,
		TagList:  request.TagList,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, convertNote(note))
}

func (s *APIV1Service) deleteNote(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.noteService.DeleteNote(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// searchNotes serves substring search by default and vector-similarity
// ranking when semantic=true. Both forms share the q and limit parameters.
func (s *APIV1Service) searchNotes(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	var (
		notes []*store.Note
		err   error
	)
	if c.QueryParam("semantic") == "true" {
		notes, err = s.noteService.SemanticSearchNotes(c.Request().Context(), query, limit)
	} else {
		notes, err = s.noteService.SearchNotes(c.Request().Context(), query, limit)
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, convertNotes(notes))
}

func (s *APIV1Service) listNoteVersions(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	versions, err := s.noteService.ListVersions(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	payloads := make([]*noteVersionPayload, 0, len(versions))
	for _, version := range versions {
		payloads = append(payloads, convertNoteVersion(version))
	}
	return c.JSON(http.StatusOK, payloads)
}

func (s *APIV1Service) createNoteVersion(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	request := &createNoteVersionRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}

	version, err := s.noteService.CreateVersion(c.Request().Context(), id, request.Title, request.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, convertNoteVersion(version))
}

func (s *APIV1Service) suggestTags(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	request := &suggestTagsRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}

	suggestions, err := s.noteService.SuggestTags(c.Request().Context(), id, request.Limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"tags": suggestions})
}
