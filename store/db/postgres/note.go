package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/insightink/insightink/store"
)

func (d *DB) CreateNote(ctx context.Context, create *store.Note, tagIDs []int32) (*store.Note, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt := `
		INSERT INTO note (uid, title, content, category, embedding)
		VALUES (` + placeholders(5) + `)
		RETURNING id, created_ts, updated_ts
	`
	if err := tx.QueryRowContext(ctx, stmt,
		create.UID,
		create.Title,
		nullableString(create.Content),
		nullableString(create.Category),
		nullableVector(create.Embedding),
	).Scan(&create.ID, &create.CreatedTs, &create.UpdatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to create note")
	}

	if err := insertNoteTags(ctx, tx, create.ID, tagIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit note creation")
	}

	list, err := d.ListNotes(ctx, &store.FindNote{ID: &create.ID})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.Errorf("created note %d not found", create.ID)
	}
	return list[0], nil
}

func (d *DB) ListNotes(ctx context.Context, find *store.FindNote) ([]*store.Note, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "note.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "note.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.TagID; v != nil {
		where = append(where, "EXISTS (SELECT 1 FROM note_tag WHERE note_tag.note_id = note.id AND note_tag.tag_id = "+placeholder(len(args)+1)+")")
		args = append(args, *v)
	}
	if v := find.Search; v != nil {
		pattern := "%" + escapeLike(*v) + "%"
		p1, p2 := placeholder(len(args)+1), placeholder(len(args)+2)
		where = append(where, "(note.title ILIKE "+p1+" OR note.content ILIKE "+p2+")")
		args = append(args, pattern, pattern)
	}
	if find.MissingEmbedding {
		where = append(where, "note.embedding IS NULL AND note.content IS NOT NULL AND note.content != ''")
	}

	query := `
		SELECT id, uid, title, content, category, embedding, created_ts, updated_ts
		FROM note
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY note.updated_ts DESC, note.id DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query notes")
	}
	defer rows.Close()

	list, err := scanNotes(rows)
	if err != nil {
		return nil, err
	}
	if err := d.hydrateNoteTags(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpdateNote(ctx context.Context, update *store.UpdateNote) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	set, args := []string{}, []any{}
	if v := update.Title; v != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Content; v != nil {
		set, args = append(set, "content = "+placeholder(len(args)+1)), append(args, nullableString(v))
	}
	if v := update.Category; v != nil {
		set, args = append(set, "category = "+placeholder(len(args)+1)), append(args, nullableString(v))
	}
	if update.SetEmbedding {
		set, args = append(set, "embedding = "+placeholder(len(args)+1)), append(args, nullableVector(update.Embedding))
	}
	// Every mutating operation refreshes updated_ts; GREATEST keeps it
	// non-decreasing under clock skew.
	set, args = append(set, "updated_ts = GREATEST(updated_ts, "+placeholder(len(args)+1)+")"), append(args, time.Now().Unix())
	args = append(args, update.ID)

	stmt := "UPDATE note SET " + strings.Join(set, ", ") + " WHERE id = " + placeholder(len(args))
	result, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return errors.Wrap(err, "failed to update note")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if rowsAffected == 0 {
		return errors.Wrapf(store.ErrNotFound, "note %d", update.ID)
	}

	if update.TagIDs != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM note_tag WHERE note_id = $1", update.ID); err != nil {
			return errors.Wrap(err, "failed to clear note tags")
		}
		if err := insertNoteTags(ctx, tx, update.ID, *update.TagIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit note update")
	}
	return nil
}

func (d *DB) DeleteNote(ctx context.Context, delete *store.DeleteNote) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM note_tag WHERE note_id = $1", delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete note tags")
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM note_version WHERE note_id = $1", delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete note versions")
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM note WHERE id = $1", delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete note")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if rowsAffected == 0 {
		return errors.Wrapf(store.ErrNotFound, "note %d", delete.ID)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit note deletion")
	}
	return nil
}

func (d *DB) UpdateNoteEmbedding(ctx context.Context, id int32, embedding []float32) error {
	result, err := d.db.ExecContext(ctx, "UPDATE note SET embedding = $1 WHERE id = $2", nullableVector(embedding), id)
	if err != nil {
		return errors.Wrap(err, "failed to update note embedding")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if rowsAffected == 0 {
		return errors.Wrapf(store.ErrNotFound, "note %d", id)
	}
	return nil
}

// SearchNotesByVector ranks notes by cosine similarity using pgvector.
// The <=> operator computes cosine distance (1 - cosine_similarity).
func (d *DB) SearchNotesByVector(ctx context.Context, embedding []float32, limit int) ([]*store.Note, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, uid, title, content, category, embedding, created_ts, updated_ts
		FROM note
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`

	rows, err := d.db.QueryContext(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search notes")
	}
	defer rows.Close()

	list, err := scanNotes(rows)
	if err != nil {
		return nil, err
	}
	if err := d.hydrateNoteTags(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// nullVector scans a nullable pgvector column.
type nullVector struct {
	vector pgvector.Vector
	valid  bool
}

func (v *nullVector) Scan(src any) error {
	if src == nil {
		v.valid = false
		return nil
	}
	v.valid = true
	return v.vector.Scan(src)
}

func scanNotes(rows *sql.Rows) ([]*store.Note, error) {
	list := make([]*store.Note, 0)
	for rows.Next() {
		var note store.Note
		var content, category sql.NullString
		var embedding nullVector
		if err := rows.Scan(
			&note.ID,
			&note.UID,
			&note.Title,
			&content,
			&category,
			&embedding,
			&note.CreatedTs,
			&note.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan note")
		}
		if content.Valid {
			note.Content = &content.String
		}
		if category.Valid {
			note.Category = &category.String
		}
		if embedding.valid {
			note.Embedding = embedding.vector.Slice()
		}
		note.Tags = []*store.NoteTag{}
		list = append(list, &note)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate notes")
	}
	return list, nil
}

// hydrateNoteTags attaches the tag join rows to each note, ordered by tag
// name ascending.
func (d *DB) hydrateNoteTags(ctx context.Context, notes []*store.Note) error {
	if len(notes) == 0 {
		return nil
	}

	byID := make(map[int32]*store.Note, len(notes))
	ids := make([]int32, 0, len(notes))
	for _, note := range notes {
		byID[note.ID] = note
		ids = append(ids, note.ID)
	}

	query := `
		SELECT note_tag.note_id, tag.id, tag.name, tag.color, tag.created_ts, tag.updated_ts
		FROM note_tag
		JOIN tag ON tag.id = note_tag.tag_id
		WHERE note_tag.note_id = ANY($1)
		ORDER BY tag.name ASC`

	rows, err := d.db.QueryContext(ctx, query, pqInt32Array(ids))
	if err != nil {
		return errors.Wrap(err, "failed to query note tags")
	}
	defer rows.Close()

	for rows.Next() {
		var noteID int32
		var tag store.Tag
		if err := rows.Scan(&noteID, &tag.ID, &tag.Name, &tag.Color, &tag.CreatedTs, &tag.UpdatedTs); err != nil {
			return errors.Wrap(err, "failed to scan note tag")
		}
		if note, ok := byID[noteID]; ok {
			note.Tags = append(note.Tags, &store.NoteTag{NoteID: noteID, TagID: tag.ID, Tag: &tag})
		}
	}
	return errors.Wrap(rows.Err(), "failed to iterate note tags")
}

func insertNoteTags(ctx context.Context, tx *sql.Tx, noteID int32, tagIDs []int32) error {
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO note_tag (note_id, tag_id) VALUES ($1, $2) ON CONFLICT (note_id, tag_id) DO NOTHING",
			noteID, tagID,
		); err != nil {
			if isForeignKeyViolation(err) {
				return errors.Wrapf(store.ErrInvalidReference, "tag %d", tagID)
			}
			return errors.Wrapf(err, "failed to attach tag %d", tagID)
		}
	}
	return nil
}

// nullableVector maps a nil slice to NULL, otherwise to a pgvector value.
func nullableVector(embedding []float32) any {
	if embedding == nil {
		return nil
	}
	return pgvector.NewVector(embedding)
}

// nullableString maps a nil pointer or an empty string to NULL so an
// explicit clear removes the stored value.
func nullableString(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}
