package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"explorewithme/internal/domain"
)

func TestRequestRepository_Create(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     *domain.ParticipationRequest
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success",
			req: &domain.ParticipationRequest{
				ID:          "req-1",
				EventID:     "ev-1",
				RequesterID: "user-1",
				Status:      domain.RequestStatusPending,
				Created:     created,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO requests`).
					WithArgs("req-1", "ev-1", "user-1", "PENDING", created).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantErr: false,
		},
		{
			name: "duplicate request maps unique violation to conflict",
			req: &domain.ParticipationRequest{
				ID:          "req-2",
				EventID:     "ev-1",
				RequesterID: "user-1",
				Status:      domain.RequestStatusPending,
				Created:     created,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO requests`).
					WithArgs("req-2", "ev-1", "user-1", "PENDING", created).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: true,
			errIs:   domain.ErrConflict,
		},
		{
			name: "db error",
			req: &domain.ParticipationRequest{
				ID:          "req-3",
				EventID:     "ev-1",
				RequesterID: "user-2",
				Status:      domain.RequestStatusConfirmed,
				Created:     created,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO requests`).
					WithArgs("req-3", "ev-1", "user-2", "CONFIRMED", created).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)
			repo := NewParticipationRequestRepository(db)
			err = repo.Create(ctx, tt.req)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRequestRepository_GetByIDAndRequester(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cols := []string{"id", "event_id", "requester_id", "status", "created"}

	tests := []struct {
		name     string
		id       string
		userID   string
		mock     func(mock sqlmock.Sqlmock)
		wantReq  *domain.ParticipationRequest
		wantErr  bool
		errIs    error
	}{
		{
			name:   "success",
			id:     "req-1",
			userID: "user-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, event_id, requester_id, status, created`).
					WithArgs("req-1", "user-1").
					WillReturnRows(sqlmock.NewRows(cols).
						AddRow("req-1", "ev-1", "user-1", "PENDING", created))
			},
			wantReq: &domain.ParticipationRequest{
				ID:          "req-1",
				EventID:     "ev-1",
				RequesterID: "user-1",
				Status:      domain.RequestStatusPending,
				Created:     created,
			},
		},
		{
			name:   "owned by someone else reads as not found",
			id:     "req-1",
			userID: "user-2",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, event_id, requester_id, status, created`).
					WithArgs("req-1", "user-2").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: true,
			errIs:   domain.ErrNotFound,
		},
		{
			name:   "db error",
			id:     "req-1",
			userID: "user-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, event_id, requester_id, status, created`).
					WithArgs("req-1", "user-1").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)
			repo := NewParticipationRequestRepository(db)
			got, err := repo.GetByIDAndRequester(ctx, tt.id, tt.userID)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantReq, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRequestRepository_CountByEventAndStatus(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM requests WHERE event_id = \$1 AND status = \$2`).
		WithArgs("ev-1", "CONFIRMED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	repo := NewParticipationRequestRepository(db)
	count, err := repo.CountByEventAndStatus(ctx, "ev-1", domain.RequestStatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, int64(7), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_ExistsByRequesterAndEvent(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1", "ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewParticipationRequestRepository(db)
	exists, err := repo.ExistsByRequesterAndEvent(ctx, "user-1", "ev-1")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_ListByEvent(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cols := []string{"id", "event_id", "requester_id", "status", "created"}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, event_id, requester_id, status, created`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("req-1", "ev-1", "user-1", "CONFIRMED", created).
			AddRow("req-2", "ev-1", "user-2", "PENDING", created.Add(time.Minute)))

	repo := NewParticipationRequestRepository(db)
	got, err := repo.ListByEvent(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "req-1", got[0].ID)
	require.Equal(t, domain.RequestStatusConfirmed, got[0].Status)
	require.Equal(t, "req-2", got[1].ID)
	require.Equal(t, domain.RequestStatusPending, got[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		status  domain.RequestStatus
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name:   "success",
			id:     "req-1",
			status: domain.RequestStatusCanceled,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE requests SET status = \$2 WHERE id = \$1`).
					WithArgs("req-1", "CANCELED").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:   "not found",
			id:     "req-missing",
			status: domain.RequestStatusCanceled,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE requests SET status = \$2 WHERE id = \$1`).
					WithArgs("req-missing", "CANCELED").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: true,
			errIs:   domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)
			repo := NewParticipationRequestRepository(db)
			err = repo.UpdateStatus(ctx, tt.id, tt.status)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRequestRepository_UpdateStatuses(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		ids     []string
		status  domain.RequestStatus
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name:   "all rows updated",
			ids:    []string{"req-1", "req-2"},
			status: domain.RequestStatusConfirmed,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE requests SET status = \$2 WHERE id = ANY\(\$1\)`).
					WithArgs(pq.Array([]string{"req-1", "req-2"}), "CONFIRMED").
					WillReturnResult(sqlmock.NewResult(0, 2))
			},
		},
		{
			name:   "partial update reads as not found",
			ids:    []string{"req-1", "req-missing"},
			status: domain.RequestStatusRejected,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE requests SET status = \$2 WHERE id = ANY\(\$1\)`).
					WithArgs(pq.Array([]string{"req-1", "req-missing"}), "REJECTED").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantErr: true,
			errIs:   domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)
			repo := NewParticipationRequestRepository(db)
			err = repo.UpdateStatuses(ctx, tt.ids, tt.status)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
