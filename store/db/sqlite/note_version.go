package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/insightink/insightink/store"
)

func (d *DB) CreateNoteVersion(ctx context.Context, create *store.NoteVersion) (*store.NoteVersion, error) {
	stmt := `
		INSERT INTO note_version (note_id, title, content)
		VALUES (` + placeholders(3) + `)
		RETURNING id, created_ts
	`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.NoteID,
		create.Title,
		nullableString(create.Content),
	).Scan(&create.ID, &create.CreatedTs); err != nil {
		if isForeignKeyViolation(err) {
			return nil, errors.Wrapf(store.ErrInvalidReference, "note %d", create.NoteID)
		}
		return nil, errors.Wrap(err, "failed to create note version")
	}
	return create, nil
}

func (d *DB) ListNoteVersions(ctx context.Context, find *store.FindNoteVersion) ([]*store.NoteVersion, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "note_version.id = ?"), append(args, *v)
	}
	if v := find.NoteID; v != nil {
		where, args = append(where, "note_version.note_id = ?"), append(args, *v)
	}

	query := `
		SELECT id, note_id, title, content, created_ts
		FROM note_version
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, id DESC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query note versions")
	}
	defer rows.Close()

	list := make([]*store.NoteVersion, 0)
	for rows.Next() {
		var version store.NoteVersion
		var content sql.NullString
		if err := rows.Scan(&version.ID, &version.NoteID, &version.Title, &content, &version.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan note version")
		}
		if content.Valid {
			version.Content = &content.String
		}
		list = append(list, &version)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate note versions")
	}
	return list, nil
}
