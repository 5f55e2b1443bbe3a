package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenleaf/internal/models"
)

var leadCols = []string{"id", "type", "phone", "first_name", "last_name", "middle_name", "email", "goal", "status", "created_at", "completed_at"}

func newMockRepo(t *testing.T) (*LeadRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewLeadRepository(db), mock
}

func TestLeadRepository_CreatePartner(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO requests")).
		WithArgs(models.KindPartner, "+7700", "Aida", "Nurlanova", sql.NullString{}, "aida@example.com", "business", models.StatusNew, created).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	lead := &models.Lead{
		Kind:      models.KindPartner,
		Phone:     "+7700",
		Status:    models.StatusNew,
		CreatedAt: created,
		Partner: &models.PartnerProfile{
			FirstName: "Aida",
			LastName:  "Nurlanova",
			Email:     "aida@example.com",
			Goal:      "business",
		},
	}
	require.NoError(t, repo.Create(context.Background(), lead))
	assert.Equal(t, int64(5), lead.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_CreateWrapsDriverError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO requests")).WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), &models.Lead{Kind: models.KindCallback, Phone: "+1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert request")
	assert.False(t, models.IsNotFound(err))
}

func TestLeadRepository_GetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	done := created.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM requests WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(leadCols).
			AddRow(int64(9), "partner", "+7700", "Aida", "Nurlanova", nil, nil, "discount", "completed", created, done))

	lead, err := repo.GetByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, models.KindPartner, lead.Kind)
	assert.Equal(t, models.StatusCompleted, lead.Status)
	require.NotNil(t, lead.Partner)
	assert.Equal(t, "Nurlanova Aida", lead.Partner.FullName())
	assert.Equal(t, "discount", lead.Partner.Goal)
	require.NotNil(t, lead.CompletedAt)
	assert.True(t, done.Equal(*lead.CompletedAt))
}

func TestLeadRepository_GetByIDCallbackHasNoProfile(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM requests WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(leadCols).
			AddRow(int64(3), "callback", "+7701", nil, nil, nil, nil, nil, "new", time.Now(), nil))

	lead, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, lead.Partner)
	assert.Nil(t, lead.CompletedAt)
}

func TestLeadRepository_GetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM requests WHERE id = $1")).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))

	var nf *models.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, int64(404), nf.ID)
}

func TestLeadRepository_ListCompletedBeyondRetention(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND status = ANY($1) ORDER BY completed_at DESC NULLS LAST, id DESC OFFSET $2")).
		WithArgs(sqlmock.AnyArg(), 10).
		WillReturnRows(sqlmock.NewRows(leadCols).
			AddRow(int64(1), "callback", "+1", nil, nil, nil, nil, nil, "completed", time.Now(), time.Now()))

	leads, err := repo.List(context.Background(), models.LeadFilter{
		Statuses: []models.LeadStatus{models.StatusCompleted},
		OrderBy:  models.OrderCompletedDesc,
		Offset:   10,
	})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_ListActiveByKind(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("AND status = ANY($1) AND type = $2 ORDER BY created_at DESC, id DESC LIMIT $3")).
		WithArgs(sqlmock.AnyArg(), "partner", 5).
		WillReturnRows(sqlmock.NewRows(leadCols))

	leads, err := repo.List(context.Background(), models.LeadFilter{
		Statuses: models.ActiveStatuses,
		Kind:     models.KindPartner,
		Limit:    5,
	})
	require.NoError(t, err)
	assert.Empty(t, leads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_UpdateStatusCompareAndSet(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	const update = "UPDATE requests SET status = $1, completed_at = $2 WHERE id = $3 AND status = $4"

	mock.ExpectExec(regexp.QuoteMeta(update)).
		WithArgs("completed", sqlmock.AnyArg(), int64(7), "viewed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(update)).
		WithArgs("viewed", sqlmock.AnyArg(), int64(7), "new").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdateStatus(context.Background(), 7, models.StatusViewed, models.StatusCompleted, &at)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateStatus(context.Background(), 7, models.StatusNew, models.StatusViewed, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM requests WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.Delete(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.Delete(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_EnsureSchema(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS requests")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSSLMode(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/app":                 "postgres://u:p@localhost:5432/app",
		"postgres://u:p@db.railway.app:5432/app":            "postgres://u:p@db.railway.app:5432/app?sslmode=require",
		"postgres://u:p@x.render.com/app?connect_timeout=5": "postgres://u:p@x.render.com/app?connect_timeout=5&sslmode=require",
		"postgres://u:p@db.railway.app/app?sslmode=disable": "postgres://u:p@db.railway.app/app?sslmode=disable",
		"host=ec2.heroku.com user=u dbname=app":             "host=ec2.heroku.com user=u dbname=app sslmode=require",
	}
	for in, want := range cases {
		assert.Equal(t, want, withSSLMode(in), in)
	}
}
