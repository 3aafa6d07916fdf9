package mysql

import (
	"context"
	"database/sql"
	"strings"

	"huski_bookings/internal/domain"
)

func (r *Repo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	role := u.Role
	if role == "" {
		role = "user"
	}
	res, err := r.db.ExecContext(ctx, insertUserSQL,
		u.Name, u.Email, u.PasswordHash, valStr(u.Address), valStr(u.Phone), role, u.IsVerified)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, selectUserSQL+" WHERE email = ? LIMIT 1", email))
}

func (r *Repo) UserByID(ctx context.Context, id int64) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, selectUserSQL+" WHERE id = ? LIMIT 1", id))
}

func (r *Repo) scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var address, phone sql.NullString
	var verified bool
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&address, &phone, &u.Role, &verified, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	u.Address = strPtr(address)
	u.Phone = strPtr(phone)
	u.IsVerified = verified
	return u, nil
}

func (r *Repo) MarkVerified(ctx context.Context, id int64) error {
	// Not affectedOrNotFound: re-activating an already verified user matches
	// zero changed rows and is not an error.
	_, err := r.db.ExecContext(ctx, markVerifiedSQL, id)
	return err
}

func (r *Repo) AllUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUserSQL+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		var address, phone sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
			&address, &phone, &u.Role, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Address = strPtr(address)
		u.Phone = strPtr(phone)
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateUser builds the SET list from the provided fields only. Column names
// are fixed here; user input travels exclusively through placeholders.
func (r *Repo) UpdateUser(ctx context.Context, id int64, upd domain.UserUpdate) error {
	var sets []string
	var args []any
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	add("name", upd.Name)
	add("email", upd.Email)
	add("password", upd.Password)
	add("address", upd.Address)
	add("phone", upd.Phone)
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *Repo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	_, err := r.db.ExecContext(ctx, updatePasswordSQL, hash, id)
	return err
}

func (r *Repo) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteUserSQL, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
