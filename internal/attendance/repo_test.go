package attendance

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), mock
}

func TestRepositoryClass(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, teacher_id FROM classes WHERE id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "teacher_id"}).AddRow("c1", "Algebra", "t1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id, name FROM class_students")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "name"}).
			AddRow("s2", "Grace").
			AddRow("s1", "Ada"))

	cls, err := repo.Class(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Algebra", cls.Name)
	assert.Equal(t, []Student{{ID: "s2", Name: "Grace"}, {ID: "s1", Name: "Ada"}}, cls.Students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryClassNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM classes WHERE id = $1")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Class(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrClassNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryClassesGroupsRosters(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN class_students")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "teacher_id", "student_id", "name"}).
			AddRow("c1", "Algebra", "t1", "s1", "Ada").
			AddRow("c1", "Algebra", "t1", "s2", "Grace").
			AddRow("c2", "Empty", "t1", nil, nil))

	got, err := repo.Classes(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0].Students, 2)
	assert.Empty(t, got[1].Students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryPutClass(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO classes")).
		WithArgs("c1", "Algebra", "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM class_students WHERE class_id = $1")).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_students")).
		WithArgs("c1", 0, "s1", "Ada").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_students")).
		WithArgs("c1", 1, "s2", "Grace").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.PutClass(context.Background(), Class{
		ID: "c1", Name: "Algebra", TeacherID: "t1",
		Students: []Student{{ID: "s1", Name: "Ada"}, {ID: "s2", Name: "Grace"}},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryInsertRecord(t *testing.T) {
	repo, mock := newMockRepo(t)
	day := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance_records")).
		WithArgs(sqlmock.AnyArg(), "c1", "Algebra", day, []byte(`[{"studentId":"s1","status":"Present"}]`), "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.InsertRecord(context.Background(), Record{
		ClassID:    "c1",
		ClassName:  "Algebra",
		Date:       day.Add(10 * time.Hour),
		Entries:    []Entry{{StudentID: "s1", Status: Present}},
		RecordedBy: "t1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryInsertRecordStorageError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance_records")).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.InsertRecord(context.Background(), Record{ClassID: "c1"})
	assert.ErrorIs(t, err, ErrStorage)
}

func TestRepositoryLatestRecord(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2025, 9, 2, 8, 15, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY record_date DESC, seq DESC")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id", "class_name", "record_date", "statuses", "recorded_by", "created_at"}).
			AddRow("r2", "c1", "Algebra", time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC),
				[]byte(`[{"studentId":"s1","status":"Late"},{"studentId":"s2","status":"Absent"}]`), "t1", created))

	rec, err := repo.LatestRecord(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "r2", rec.ID)
	assert.Equal(t, []Entry{{StudentID: "s1", Status: Late}, {StudentID: "s2", Status: Absent}}, rec.Entries)
	assert.Equal(t, created, rec.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryLatestRecordEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_records")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id", "class_name", "record_date", "statuses", "recorded_by", "created_at"}))

	_, err := repo.LatestRecord(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRepositoryCreateUserDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.CreateUser(context.Background(), User{Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUserByEmailLowercases(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role", "password_hash", "created_at"}).
			AddRow("u1", "Jane", "jane@example.com", "teacher", "hash", created))

	u, err := repo.UserByEmail(context.Background(), " Jane@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "hash", u.PasswordHash)
}
