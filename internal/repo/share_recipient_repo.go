package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/docvault/docvault/internal/model"
	"github.com/docvault/docvault/internal/pkg/dbutil"
)

type ShareRecipientRepo struct {
	db *sql.DB
}

func NewShareRecipientRepo(db *sql.DB) *ShareRecipientRepo {
	return &ShareRecipientRepo{db: db}
}

// Replace swaps the recipient set of a document; a new grant starts from a
// clean set.
func (r *ShareRecipientRepo) Replace(ctx context.Context, docID string, items []model.ShareRecipient) error {
	if err := r.Clear(ctx, docID); err != nil {
		return err
	}
	for i := range items {
		if err := r.create(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *ShareRecipientRepo) create(ctx context.Context, item *model.ShareRecipient) error {
	data := map[string]interface{}{
		"id":          item.ID,
		"document_id": item.DocumentID,
		"email":       item.Email,
		"ctime":       item.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("share_recipients", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ShareRecipientRepo) Clear(ctx context.Context, docID string) error {
	where := map[string]interface{}{"document_id": docID}
	sqlStr, args, err := builder.BuildDelete("share_recipients", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ShareRecipientRepo) ListByDocument(ctx context.Context, docID string) ([]model.ShareRecipient, error) {
	where := map[string]interface{}{"document_id": docID, "_orderby": "ctime asc"}
	sqlStr, args, err := builder.BuildSelect("share_recipients", where, []string{"id", "document_id", "email", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.ShareRecipient, 0)
	for rows.Next() {
		var item model.ShareRecipient
		if err := rows.Scan(&item.ID, &item.DocumentID, &item.Email, &item.Ctime); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
