package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/docvault/docvault/internal/model"
	"github.com/docvault/docvault/internal/pkg/dbutil"
	appErr "github.com/docvault/docvault/internal/pkg/errors"
)

type OTPRepo struct {
	db *sql.DB
}

func NewOTPRepo(db *sql.DB) *OTPRepo {
	return &OTPRepo{db: db}
}

func (r *OTPRepo) Create(ctx context.Context, item *model.OTPCode) error {
	data := map[string]interface{}{
		"id":         item.ID,
		"email":      item.Email,
		"purpose":    item.Purpose,
		"code_hash":  item.CodeHash,
		"used":       item.Used,
		"ctime":      item.Ctime,
		"expires_at": item.ExpiresAt,
	}
	sqlStr, args, err := builder.BuildInsert("otp_codes", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *OTPRepo) LatestByEmail(ctx context.Context, email, purpose string) (*model.OTPCode, error) {
	where := map[string]interface{}{
		"email":    email,
		"purpose":  purpose,
		"_orderby": "ctime desc",
		"_limit":   []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("otp_codes", where, []string{"id", "email", "purpose", "code_hash", "used", "ctime", "expires_at"})
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
	var item model.OTPCode
	if err := rows.Scan(&item.ID, &item.Email, &item.Purpose, &item.CodeHash, &item.Used, &item.Ctime, &item.ExpiresAt); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *OTPRepo) MarkUsed(ctx context.Context, id string) error {
	where := map[string]interface{}{"id": id}
	update := map[string]interface{}{"used": 1}
	sqlStr, args, err := builder.BuildUpdate("otp_codes", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *OTPRepo) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	sqlStr := "DELETE FROM otp_codes WHERE expires_at < ?"
	args := []interface{}{cutoff}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
