package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/insightink/insightink/store"
)

func (d *DB) CreateTag(ctx context.Context, create *store.Tag) (*store.Tag, error) {
	stmt := `
		INSERT INTO tag (name, color)
		VALUES (` + placeholders(2) + `)
		RETURNING id, created_ts, updated_ts
	`
	if err := d.db.QueryRowContext(ctx, stmt, create.Name, create.Color).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, errors.Wrapf(store.ErrTagNameExists, "tag %q", create.Name)
		}
		return nil, errors.Wrap(err, "failed to create tag")
	}
	return create, nil
}

func (d *DB) ListTags(ctx context.Context, find *store.FindTag) ([]*store.Tag, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "tag.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Name; v != nil {
		where, args = append(where, "LOWER(tag.name) = LOWER("+placeholder(len(args)+1)+")"), append(args, *v)
	}

	query := `
		SELECT id, name, color, created_ts, updated_ts
		FROM tag
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY tag.name ASC`
	if find.Limit != nil {
		query = query + " LIMIT " + placeholder(len(args)+1)
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query tags")
	}
	defer rows.Close()

	list := make([]*store.Tag, 0)
	for rows.Next() {
		var tag store.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedTs, &tag.UpdatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan tag")
		}
		list = append(list, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate tags")
	}
	return list, nil
}

func (d *DB) UpdateTag(ctx context.Context, update *store.UpdateTag) (*store.Tag, error) {
	set, args := []string{}, []any{}
	if v := update.Name; v != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Color; v != nil {
		set, args = append(set, "color = "+placeholder(len(args)+1)), append(args, *v)
	}
	set, args = append(set, "updated_ts = GREATEST(updated_ts, "+placeholder(len(args)+1)+")"), append(args, time.Now().Unix())
	args = append(args, update.ID)

	stmt := "UPDATE tag SET " + strings.Join(set, ", ") + " WHERE id = " + placeholder(len(args)) + " RETURNING id, name, color, created_ts, updated_ts"

	var tag store.Tag
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&tag.ID,
		&tag.Name,
		&tag.Color,
		&tag.CreatedTs,
		&tag.UpdatedTs,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(store.ErrNotFound, "tag %d", update.ID)
		}
		if isUniqueViolation(err) {
			return nil, errors.Wrapf(store.ErrTagNameExists, "tag %d", update.ID)
		}
		return nil, errors.Wrap(err, "failed to update tag")
	}
	return &tag, nil
}

func (d *DB) DeleteTag(ctx context.Context, delete *store.DeleteTag) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	// Join rows go first so no dangling references survive the delete.
	if _, err := tx.ExecContext(ctx, "DELETE FROM note_tag WHERE tag_id = $1", delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete tag associations")
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM tag WHERE id = $1", delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete tag")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if rowsAffected == 0 {
		return errors.Wrapf(store.ErrNotFound, "tag %d", delete.ID)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit tag deletion")
	}
	return nil
}
