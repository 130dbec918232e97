package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/docvault/docvault/internal/model"
	"github.com/docvault/docvault/internal/pkg/dbutil"
	appErr "github.com/docvault/docvault/internal/pkg/errors"
)

var userFields = []string{"id", "name", "email", "password_hash", "aadhaar_number", "phone", "verified", "ctime", "mtime"}

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	data := map[string]interface{}{
		"id":             user.ID,
		"name":           user.Name,
		"email":          user.Email,
		"password_hash":  user.PasswordHash,
		"aadhaar_number": user.AadhaarNumber,
		"phone":          user.Phone,
		"verified":       user.Verified,
		"ctime":          user.Ctime,
		"mtime":          user.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("users", []map[string]interface{}{data})
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

func (r *UserRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.User, error) {
	sqlStr, args, err := builder.BuildSelect("users", where, userFields)
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
	var user model.User
	if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.AadhaarNumber, &user.Phone, &user.Verified, &user.Ctime, &user.Mtime); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"email": email})
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"id": userID})
}

// GetByEmailOrAadhaar returns the first account matching either identifier.
func (r *UserRepo) GetByEmailOrAadhaar(ctx context.Context, email, aadhaar string) (*model.User, error) {
	where := map[string]interface{}{
		"_or": []map[string]interface{}{
			{"email": email},
			{"aadhaar_number": aadhaar},
		},
	}
	return r.getOne(ctx, where)
}

func (r *UserRepo) MarkVerified(ctx context.Context, userID string, mtime int64) error {
	where := map[string]interface{}{"id": userID}
	update := map[string]interface{}{"verified": 1, "mtime": mtime}
	sqlStr, args, err := builder.BuildUpdate("users", where, update)
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

func (r *UserRepo) UpdateProfile(ctx context.Context, userID, name, phone string, mtime int64) error {
	update := map[string]interface{}{"mtime": mtime}
	if name != "" {
		update["name"] = name
	}
	if phone != "" {
		update["phone"] = phone
	}
	where := map[string]interface{}{"id": userID}
	sqlStr, args, err := builder.BuildUpdate("users", where, update)
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
