package patient

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthbot/healthbot/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Conn {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const patientCols = `id, first_name, last_name, email, mobile_number, role_id, status, dob, created`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Mobile,
		&p.RoleID, &p.Status, &p.DOB, &p.CreatedAt)
	return &p, err
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) queryPatients(ctx context.Context, sql string, args ...interface{}) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) SearchFirstLast(ctx context.Context, first, last string) ([]*Patient, error) {
	return r.queryPatients(ctx,
		`SELECT `+patientCols+` FROM users
		 WHERE first_name ILIKE $1 AND last_name ILIKE $2
		 ORDER BY id`,
		"%"+first+"%", "%"+last+"%")
}

func (r *repoPG) SearchAnyField(ctx context.Context, term string) ([]*Patient, error) {
	return r.queryPatients(ctx,
		`SELECT `+patientCols+` FROM users
		 WHERE first_name ILIKE $1 OR last_name ILIKE $1
		 ORDER BY id`,
		"%"+term+"%")
}

func (r *repoPG) SearchFullName(ctx context.Context, term string) ([]*Patient, error) {
	return r.queryPatients(ctx,
		`SELECT `+patientCols+` FROM users
		 WHERE first_name ILIKE $1 OR last_name ILIKE $1
		    OR (first_name || ' ' || last_name) ILIKE $1
		 ORDER BY id`,
		"%"+term+"%")
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.queryPatients(ctx,
		`SELECT `+patientCols+` FROM users ORDER BY last_name, first_name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
