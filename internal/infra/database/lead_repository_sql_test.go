package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

var leadColumnNames = []string{
	"id", "name", "email", "phone", "company", "subject", "message", "source", "platform", "campaign",
	"ad_set", "ad_name", "status", "notes", "version", "external_event_id", "created_at", "updated_at",
}

func newSQLRepo(t *testing.T) (*LeadRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewLeadRepository(db), mock
}

func leadRow(id, status string, version int64) *sqlmock.Rows {
	created := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(leadColumnNames).AddRow(
		id, "Jane Doe", "jane@x.com", "", "", "", "", "contact_form", "", "",
		"", "", status, "", version, nil, created, created,
	)
}

func TestLeadRepositoryUpdateSwapsVersion(t *testing.T) {
	repo, mock := newSQLRepo(t)
	status := entity.StatusContacted

	mock.ExpectQuery(`UPDATE leads SET`).
		WithArgs("lead-1", "contacted", nil, sqlmock.AnyArg(), int64(1)).
		WillReturnRows(leadRow("lead-1", "contacted", 2))

	lead, err := repo.Update(context.Background(), "lead-1", entity.LeadUpdate{Status: &status}, 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, entity.StatusContacted, lead.Status)
	assert.Equal(t, int64(2), lead.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryUpdateNoRow(t *testing.T) {
	notes := "call back"

	tests := []struct {
		name    string
		lookup  func(*sqlmock.ExpectedQuery)
		wantErr error
	}{
		{
			name:    "stale version",
			lookup:  func(q *sqlmock.ExpectedQuery) { q.WillReturnRows(leadRow("lead-1", "new", 3)) },
			wantErr: entity.ErrVersionConflict,
		},
		{
			name:    "unknown id",
			lookup:  func(q *sqlmock.ExpectedQuery) { q.WillReturnRows(sqlmock.NewRows(leadColumnNames)) },
			wantErr: entity.ErrLeadNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newSQLRepo(t)

			mock.ExpectQuery(`UPDATE leads SET`).
				WithArgs("lead-1", nil, "call back", sqlmock.AnyArg(), int64(1)).
				WillReturnRows(sqlmock.NewRows(leadColumnNames))
			tt.lookup(mock.ExpectQuery(`SELECT .+ FROM leads WHERE id = \$1`).WithArgs("lead-1"))

			_, err := repo.Update(context.Background(), "lead-1", entity.LeadUpdate{Notes: &notes}, 1, time.Now())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLeadRepositoryUpdateMalformedID(t *testing.T) {
	repo, mock := newSQLRepo(t)
	notes := "x"
	invalid := &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}

	mock.ExpectQuery(`UPDATE leads SET`).WillReturnError(invalid)
	mock.ExpectQuery(`SELECT .+ FROM leads WHERE id = \$1`).WithArgs("abc").WillReturnError(invalid)

	_, err := repo.Update(context.Background(), "abc", entity.LeadUpdate{Notes: &notes}, 0, time.Now())
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryUpdateDriverError(t *testing.T) {
	repo, mock := newSQLRepo(t)
	notes := "x"

	mock.ExpectQuery(`UPDATE leads SET`).WillReturnError(errors.New("connection reset"))

	_, err := repo.Update(context.Background(), "lead-1", entity.LeadUpdate{Notes: &notes}, 0, time.Now())
	require.Error(t, err)
	assert.ErrorContains(t, err, "update lead: connection reset")
	assert.NotErrorIs(t, err, entity.ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryCreateDuplicateEvent(t *testing.T) {
	repo, mock := newSQLRepo(t)
	lead := entity.NewLead("Jane Doe", "jane@x.com", entity.SourceMetaAds, time.Now())
	lead.ExternalEventID = "meta_ads:444"

	args := make([]driver.Value, len(leadColumnNames))
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	mock.ExpectExec(`INSERT INTO leads`).WithArgs(args...).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	assert.ErrorIs(t, repo.Create(context.Background(), lead), entity.ErrDuplicateEvent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
