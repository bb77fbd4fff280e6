package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists classes, users and records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// Class returns a class with its roster in enrollment order.
func (r *Repository) Class(ctx context.Context, classID string) (Class, error) {
	var cls Class
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, teacher_id FROM classes WHERE id = $1
	`, classID).Scan(&cls.ID, &cls.Name, &cls.TeacherID)
	if errors.Is(err, sql.ErrNoRows) {
		return Class{}, fmt.Errorf("%w: %q", ErrClassNotFound, classID)
	}
	if err != nil {
		return Class{}, storageErr("get class", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT student_id, name FROM class_students
		WHERE class_id = $1
		ORDER BY position
	`, classID)
	if err != nil {
		return Class{}, storageErr("get roster", err)
	}
	defer rows.Close()
	cls.Students = []Student{}
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return Class{}, storageErr("scan roster", err)
		}
		cls.Students = append(cls.Students, st)
	}
	if err := rows.Err(); err != nil {
		return Class{}, storageErr("get roster", err)
	}
	return cls, nil
}

// Classes returns every class ordered by id, rosters included.
func (r *Repository) Classes(ctx context.Context) ([]Class, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.teacher_id, s.student_id, s.name
		FROM classes c
		LEFT JOIN class_students s ON s.class_id = c.id
		ORDER BY c.id, s.position
	`)
	if err != nil {
		return nil, storageErr("list classes", err)
	}
	defer rows.Close()

	var out []Class
	for rows.Next() {
		var (
			id, name, teacher string
			sid, sname        sql.NullString
		)
		if err := rows.Scan(&id, &name, &teacher, &sid, &sname); err != nil {
			return nil, storageErr("scan class", err)
		}
		if len(out) == 0 || out[len(out)-1].ID != id {
			out = append(out, Class{ID: id, Name: name, TeacherID: teacher, Students: []Student{}})
		}
		if sid.Valid {
			last := &out[len(out)-1]
			last.Students = append(last.Students, Student{ID: sid.String, Name: sname.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list classes", err)
	}
	return out, nil
}

// PutClass upserts a class and replaces its roster.
func (r *Repository) PutClass(ctx context.Context, cls Class) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("put class", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO classes (id, name, teacher_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, teacher_id = EXCLUDED.teacher_id
	`, cls.ID, cls.Name, cls.TeacherID); err != nil {
		return storageErr("put class", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM class_students WHERE class_id = $1`, cls.ID); err != nil {
		return storageErr("put class", err)
	}
	for i, st := range cls.Students {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO class_students (class_id, position, student_id, name)
			VALUES ($1, $2, $3, $4)
		`, cls.ID, i, st.ID, st.Name); err != nil {
			return storageErr("put class", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storageErr("put class", err)
	}
	return nil
}

// InsertRecord writes a new record. Entries are kept in a single JSONB column
// so one roll call is exactly one row.
func (r *Repository) InsertRecord(ctx context.Context, rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	entries, err := json.Marshal(rec.Entries)
	if err != nil {
		return "", fmt.Errorf("encode entries: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, class_id, class_name, record_date, statuses, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ID, rec.ClassID, rec.ClassName, Day(rec.Date), entries, rec.RecordedBy)
	if err != nil {
		return "", storageErr("insert record", err)
	}
	return rec.ID, nil
}

// LatestRecord returns the newest record by date; seq breaks ties in insertion order.
func (r *Repository) LatestRecord(ctx context.Context, classID string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, class_id, class_name, record_date, statuses, recorded_by, created_at
		FROM attendance_records
		WHERE class_id = $1
		ORDER BY record_date DESC, seq DESC
		LIMIT 1
	`, classID)
	var (
		rec     Record
		entries []byte
	)
	if err := row.Scan(&rec.ID, &rec.ClassID, &rec.ClassName, &rec.Date, &entries, &rec.RecordedBy, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("%w for class %q", ErrRecordNotFound, classID)
		}
		return Record{}, storageErr("latest record", err)
	}
	if err := json.Unmarshal(entries, &rec.Entries); err != nil {
		return Record{}, fmt.Errorf("decode entries of %s: %w", rec.ID, err)
	}
	rec.Date = Day(rec.Date)
	return rec, nil
}

// User returns a user by id.
func (r *Repository) User(ctx context.Context, id string) (User, error) {
	return r.scanUser(ctx, `
		SELECT id, name, email, role, password_hash, created_at FROM users WHERE id = $1
	`, id)
}

// UserByEmail returns a user by case-insensitive email.
func (r *Repository) UserByEmail(ctx context.Context, email string) (User, error) {
	return r.scanUser(ctx, `
		SELECT id, name, email, role, password_hash, created_at FROM users WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *Repository) scanUser(ctx context.Context, query, arg string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("%w: %q", ErrUserNotFound, arg)
	}
	if err != nil {
		return User{}, storageErr("get user", err)
	}
	return u, nil
}

// CreateUser inserts a user; a duplicate email yields ErrEmailTaken.
func (r *Repository) CreateUser(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Name, u.Email, u.Role, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrEmailTaken
		}
		return User{}, storageErr("create user", err)
	}
	return u, nil
}
