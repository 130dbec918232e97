package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/docvault/docvault/internal/model"
	"github.com/docvault/docvault/internal/pkg/dbutil"
	appErr "github.com/docvault/docvault/internal/pkg/errors"
)

var documentFields = []string{
	"id", "user_id", "title", "category", "description",
	"file_name", "file_type", "file_size", "file_data",
	"shared", "share_token", "share_expires_at", "share_ctime",
	"ctime", "mtime",
}

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func scanDocument(rows *sql.Rows) (*model.Document, error) {
	var doc model.Document
	var token sql.NullString
	if err := rows.Scan(
		&doc.ID, &doc.UserID, &doc.Title, &doc.Category, &doc.Description,
		&doc.FileName, &doc.FileType, &doc.FileSize, &doc.FileData,
		&doc.Shared, &token, &doc.ShareExpiresAt, &doc.ShareCtime,
		&doc.Ctime, &doc.Mtime,
	); err != nil {
		return nil, err
	}
	doc.ShareToken = token.String
	return &doc, nil
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	data := map[string]interface{}{
		"id":               doc.ID,
		"user_id":          doc.UserID,
		"title":            doc.Title,
		"category":         doc.Category,
		"description":      doc.Description,
		"file_name":        doc.FileName,
		"file_type":        doc.FileType,
		"file_size":        doc.FileSize,
		"file_data":        doc.FileData,
		"shared":           0,
		"share_expires_at": 0,
		"share_ctime":      0,
		"ctime":            doc.Ctime,
		"mtime":            doc.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *DocumentRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.Document, error) {
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanDocument(rows)
}

// GetByID is deliberately unscoped so callers can distinguish a missing
// document from a foreign one.
func (r *DocumentRepo) GetByID(ctx context.Context, docID string) (*model.Document, error) {
	return r.getOne(ctx, map[string]interface{}{"id": docID})
}

func (r *DocumentRepo) GetByShareToken(ctx context.Context, token string) (*model.Document, error) {
	return r.getOne(ctx, map[string]interface{}{"share_token": token})
}

// List returns the owner's documents without payloads, newest first.
// category filters by equality, search by case-insensitive title substring.
func (r *DocumentRepo) List(ctx context.Context, userID, category, search string) ([]model.Document, error) {
	sqlStr := `
		SELECT id, user_id, title, category, description,
		       file_name, file_type, file_size,
		       shared, share_token, share_expires_at, share_ctime,
		       ctime, mtime
		FROM documents
		WHERE user_id = ?
	`
	args := []interface{}{userID}
	if category != "" && category != "all" {
		sqlStr += " AND category = ?"
		args = append(args, category)
	}
	if search != "" {
		sqlStr += " AND title ILIKE ?"
		args = append(args, "%"+search+"%")
	}
	sqlStr += " ORDER BY ctime DESC"

	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.Document, 0)
	for rows.Next() {
		var doc model.Document
		var token sql.NullString
		if err := rows.Scan(
			&doc.ID, &doc.UserID, &doc.Title, &doc.Category, &doc.Description,
			&doc.FileName, &doc.FileType, &doc.FileSize,
			&doc.Shared, &token, &doc.ShareExpiresAt, &doc.ShareCtime,
			&doc.Ctime, &doc.Mtime,
		); err != nil {
			return nil, err
		}
		doc.ShareToken = token.String
		items = append(items, doc)
	}
	return items, rows.Err()
}

func (r *DocumentRepo) ListAll(ctx context.Context) ([]model.Document, error) {
	sqlStr, args, err := builder.BuildSelect("documents", map[string]interface{}{"_orderby": "ctime desc"}, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *doc)
	}
	return items, rows.Err()
}

func (r *DocumentRepo) Update(ctx context.Context, docID string, update map[string]interface{}) error {
	where := map[string]interface{}{"id": docID}
	sqlStr, args, err := builder.BuildUpdate("documents", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *DocumentRepo) Delete(ctx context.Context, docID string) error {
	where := map[string]interface{}{"id": docID}
	sqlStr, args, err := builder.BuildDelete("documents", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// SetShare installs a grant, replacing any prior one in the same write. The
// partial unique index on share_token turns a token collision into
// ErrConflict so the caller can retry with a fresh token.
func (r *DocumentRepo) SetShare(ctx context.Context, docID, token string, expiresAt, now int64) error {
	update := map[string]interface{}{
		"shared":           1,
		"share_token":      token,
		"share_expires_at": expiresAt,
		"share_ctime":      now,
		"mtime":            now,
	}
	err := r.Update(ctx, docID, update)
	if dbutil.IsConflict(err) {
		return appErr.ErrConflict
	}
	return err
}

func (r *DocumentRepo) ClearShare(ctx context.Context, docID string, now int64) error {
	update := map[string]interface{}{
		"shared":           0,
		"share_token":      nil,
		"share_expires_at": 0,
		"share_ctime":      0,
		"mtime":            now,
	}
	return r.Update(ctx, docID, update)
}

// SweepExpiredShares clears share state whose expiry passed before cutoff.
// Resolution correctness never depends on this; it only bounds stale rows.
func (r *DocumentRepo) SweepExpiredShares(ctx context.Context, cutoff, now int64) (int64, error) {
	sqlStr := `
		UPDATE documents
		SET shared = 0, share_token = NULL, share_expires_at = 0, share_ctime = 0, mtime = ?
		WHERE shared = 1 AND share_expires_at > 0 AND share_expires_at < ?
	`
	args := []interface{}{now, cutoff}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
