package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"explorewithme/internal/domain"
)

func publishedEvent(id, initiatorID string, limit int, moderation bool) *domain.Event {
	return &domain.Event{
		ID:                id,
		InitiatorID:       initiatorID,
		State:             domain.EventStatePublished,
		ParticipantLimit:  limit,
		RequestModeration: moderation,
	}
}

func newAdmission(users *memUserRepo, events *memEventRepo, reqs *memRequestRepo) *admissionService {
	return &admissionService{
		userRepo:    users,
		eventRepo:   events,
		requestRepo: reqs,
		locks:       newEventLocker(),
		now:         func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestAdmissionService_Join(t *testing.T) {
	tests := []struct {
		name       string
		event      *domain.Event
		existing   []*domain.ParticipationRequest
		userID     string
		wantStatus domain.RequestStatus
		wantErr    error
	}{
		{
			name:    "unknown user",
			event:   publishedEvent("e1", "owner", 0, true),
			userID:  "ghost",
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "initiator cannot join own event",
			event:   publishedEvent("e1", "u1", 0, true),
			userID:  "u1",
			wantErr: domain.ErrConflict,
		},
		{
			name: "unpublished event",
			event: &domain.Event{
				ID: "e1", InitiatorID: "owner", State: domain.EventStatePending,
			},
			userID:  "u1",
			wantErr: domain.ErrConflict,
		},
		{
			name:  "duplicate request",
			event: publishedEvent("e1", "owner", 10, true),
			existing: []*domain.ParticipationRequest{
				{ID: "r001", EventID: "e1", RequesterID: "u1", Status: domain.RequestStatusPending},
			},
			userID:  "u1",
			wantErr: domain.ErrConflict,
		},
		{
			name:  "duplicate even after cancellation",
			event: publishedEvent("e1", "owner", 10, true),
			existing: []*domain.ParticipationRequest{
				{ID: "r001", EventID: "e1", RequesterID: "u1", Status: domain.RequestStatusCanceled},
			},
			userID:  "u1",
			wantErr: domain.ErrConflict,
		},
		{
			name:  "limit reached",
			event: publishedEvent("e1", "owner", 1, true),
			existing: []*domain.ParticipationRequest{
				{ID: "r001", EventID: "e1", RequesterID: "u2", Status: domain.RequestStatusConfirmed},
			},
			userID:  "u1",
			wantErr: domain.ErrConflict,
		},
		{
			name:       "auto confirm when moderation off",
			event:      publishedEvent("e1", "owner", 10, false),
			userID:     "u1",
			wantStatus: domain.RequestStatusConfirmed,
		},
		{
			name:       "auto confirm when unlimited",
			event:      publishedEvent("e1", "owner", 0, true),
			userID:     "u1",
			wantStatus: domain.RequestStatusConfirmed,
		},
		{
			name:       "pending when moderated and limited",
			event:      publishedEvent("e1", "owner", 10, true),
			userID:     "u1",
			wantStatus: domain.RequestStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAdmission(
				newMemUserRepo("u1", "u2", "owner"),
				newMemEventRepo(tt.event),
				newMemRequestRepo(tt.existing...),
			)

			req, err := svc.Join(context.Background(), tt.userID, tt.event.ID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, req.ID)
			assert.Equal(t, tt.wantStatus, req.Status)
			assert.Equal(t, tt.userID, req.RequesterID)
		})
	}
}

func TestAdmissionService_Join_UnknownEvent(t *testing.T) {
	svc := newAdmission(newMemUserRepo("u1"), newMemEventRepo(), newMemRequestRepo())
	_, err := svc.Join(context.Background(), "u1", "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// Concurrent joins racing for the last slots must never overshoot the limit.
func TestAdmissionService_Join_ConcurrentLastSlot(t *testing.T) {
	const limit = 5
	const joiners = 50

	userIDs := make([]string, 0, joiners)
	for i := 0; i < joiners; i++ {
		userIDs = append(userIDs, fmt.Sprintf("u%02d", i))
	}
	users := newMemUserRepo(userIDs...)
	events := newMemEventRepo(publishedEvent("e1", "owner", limit, false))
	reqs := newMemRequestRepo()
	svc := newAdmission(users, events, reqs)

	var wg sync.WaitGroup
	errs := make([]error, joiners)
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Join(context.Background(), userIDs[i], "e1")
		}(i)
	}
	wg.Wait()

	var confirmed, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			confirmed++
		default:
			require.ErrorIs(t, err, domain.ErrConflict)
			conflicts++
		}
	}
	assert.Equal(t, limit, confirmed)
	assert.Equal(t, joiners-limit, conflicts)

	count, err := reqs.CountByEventAndStatus(context.Background(), "e1", domain.RequestStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, int64(limit), count)
}

func TestAdmissionService_Cancel(t *testing.T) {
	reqs := newMemRequestRepo(
		&domain.ParticipationRequest{ID: "r001", EventID: "e1", RequesterID: "u1", Status: domain.RequestStatusConfirmed},
	)
	svc := newAdmission(newMemUserRepo("u1", "u2"), newMemEventRepo(), reqs)

	t.Run("not own request", func(t *testing.T) {
		_, err := svc.Cancel(context.Background(), "u2", "r001")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("cancels even a confirmed request", func(t *testing.T) {
		req, err := svc.Cancel(context.Background(), "u1", "r001")
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusCanceled, req.Status)
		assert.Equal(t, domain.RequestStatusCanceled, reqs.statusOf("r001"))
	})
}

func TestAdmissionService_ListEventRequests(t *testing.T) {
	reqs := newMemRequestRepo(
		&domain.ParticipationRequest{ID: "r001", EventID: "e1", RequesterID: "u1", Status: domain.RequestStatusPending},
		&domain.ParticipationRequest{ID: "r002", EventID: "e1", RequesterID: "u2", Status: domain.RequestStatusPending},
	)
	svc := newAdmission(
		newMemUserRepo("owner", "u1", "u2"),
		newMemEventRepo(publishedEvent("e1", "owner", 0, true)),
		reqs,
	)

	t.Run("owner sees requests", func(t *testing.T) {
		got, err := svc.ListEventRequests(context.Background(), "owner", "e1")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("non owner gets not found", func(t *testing.T) {
		_, err := svc.ListEventRequests(context.Background(), "u1", "e1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAdmissionService_ChangeStatus_Reject(t *testing.T) {
	reqs := newMemRequestRepo(
		&domain.ParticipationRequest{ID: "r001", EventID: "e1", RequesterID: "u1", Status: domain.RequestStatusPending},
		&domain.ParticipationRequest{ID: "r002", EventID: "e1", RequesterID: "u2", Status: domain.RequestStatusPending},
	)
	svc := newAdmission(
		newMemUserRepo("owner", "u1", "u2"),
		newMemEventRepo(publishedEvent("e1", "owner", 10, true)),
		reqs,
	)

	result, err := svc.ChangeStatus(context.Background(), "owner", "e1",
		[]string{"r001", "r002"}, domain.RequestStatusRejected)
	require.NoError(t, err)
	assert.Empty(t, result.ConfirmedRequests)
	assert.Len(t, result.RejectedRequests, 2)
	assert.Equal(t, domain.RequestStatusRejected, reqs.statusOf("r001"))
	assert.Equal(t, domain.RequestStatusRejected, reqs.statusOf("r002"))
}

func TestAdmissionService_ChangeStatus_ConfirmUpToLimitAndCascade(t *testing.T) {
	// Limit 3 with 1 already confirmed leaves 2 free slots. Confirming a
	// batch of 4 must confirm the two lowest request ids, reject the rest,
	// and also reject the pending request outside the batch.
	reqs := newMemRequestRepo(
		&domain.ParticipationRequest{ID: "r001", EventID: "e1", RequesterID: "u0", Status: domain.RequestStatusConfirmed},
		&domain.ParticipationRequest{ID: "r002", EventID: "e1", RequesterID: "u1", Status: domain.RequestStatusPending},
		&domain.ParticipationRequest{ID: "r003", EventID: "e1", RequesterID: "u2", Status: domain.RequestStatusPending},
		&domain.ParticipationRequest{ID: "r004", EventID: "e1", RequesterID: "u3", Status: domain.RequestStatusPending},
		&domain.ParticipationRequest{ID: "r005", EventID: "e1", RequesterID: "u4", Status: domain.RequestStatusPending},
		&domain.ParticipationRequest{ID: "r006", EventID: "e1", RequesterID: "u5", Status: domain.RequestStatusPending},
	)
	svc := newAdmission(
		newMemUserRepo("owner"),
		newMemEventRepo(publishedEvent("e1", "owner", 3, true)),
		reqs,
	)

	// Batch listed out of order on purpose; processing is by ascending id.
	result, err := svc.ChangeStatus(context.Background(), "owner", "e1",
		[]string{"r005", "r002", "r004", "r003"}, domain.RequestStatusConfirmed)
	require.NoError(t, err)

	confirmedIDs := make([]string, 0, len(result.ConfirmedRequests))
	for _, r := range result.ConfirmedRequests {
		confirmedIDs = append(confirmedIDs, r.ID)
	}
	assert.Equal(t, []string{"r002", "r003"}, confirmedIDs)
	assert.Len(t, result.RejectedRequests, 3) // r004, r005 and the cascaded r006

	assert.Equal(t, domain.RequestStatusConfirmed, reqs.statusOf("r002"))
	assert.Equal(t, domain.RequestStatusConfirmed, reqs.statusOf("r003"))
	assert.Equal(t, domain.RequestStatusRejected, reqs.statusOf("r004"))
	assert.Equal(t, domain.RequestStatusRejected, reqs.statusOf("r005"))
	assert.Equal(t, domain.RequestStatusRejected, reqs.statusOf("r006"))
}

func TestAdmissionService_ChangeStatus_Preconditions(t *testing.T) {
	newFixture := func() (*admissionService, *memRequestRepo) {
		reqs := newMemRequestRepo(
			&domain.ParticipationRequest{ID: "r001", EventID: "e1", RequesterID: "u1", Status: domain.RequestStatusPending},
			&domain.ParticipationRequest{ID: "r002", EventID: "e1", RequesterID: "u2", Status: domain.RequestStatusCanceled},
		)
		svc := newAdmission(
			newMemUserRepo("owner", "u1", "u2"),
			newMemEventRepo(publishedEvent("e1", "owner", 10, true)),
			reqs,
		)
		return svc, reqs
	}

	t.Run("invalid desired status", func(t *testing.T) {
		svc, _ := newFixture()
		_, err := svc.ChangeStatus(context.Background(), "owner", "e1",
			[]string{"r001"}, domain.RequestStatusCanceled)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("non initiator gets not found", func(t *testing.T) {
		svc, _ := newFixture()
		_, err := svc.ChangeStatus(context.Background(), "u1", "e1",
			[]string{"r001"}, domain.RequestStatusConfirmed)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown request id in batch", func(t *testing.T) {
		svc, _ := newFixture()
		_, err := svc.ChangeStatus(context.Background(), "owner", "e1",
			[]string{"r001", "r999"}, domain.RequestStatusConfirmed)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("non pending member aborts the batch with zero writes", func(t *testing.T) {
		svc, reqs := newFixture()
		_, err := svc.ChangeStatus(context.Background(), "owner", "e1",
			[]string{"r001", "r002"}, domain.RequestStatusConfirmed)
		require.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, domain.RequestStatusPending, reqs.statusOf("r001"))
		assert.Equal(t, domain.RequestStatusCanceled, reqs.statusOf("r002"))
	})
}

// The scenario from the moderated single-slot event: A joins and waits, the
// organizer confirms A, B is turned away, A cancels, and the freed slot can
// be granted to the next pending request.
func TestAdmissionService_ModeratedSingleSlotScenario(t *testing.T) {
	ctx := context.Background()
	reqs := newMemRequestRepo()
	svc := newAdmission(
		newMemUserRepo("owner", "alice", "bob", "carol"),
		newMemEventRepo(publishedEvent("e1", "owner", 1, true)),
		reqs,
	)

	// Alice joins and is queued for moderation.
	aliceReq, err := svc.Join(ctx, "alice", "e1")
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusPending, aliceReq.Status)

	// The organizer confirms her.
	result, err := svc.ChangeStatus(ctx, "owner", "e1",
		[]string{aliceReq.ID}, domain.RequestStatusConfirmed)
	require.NoError(t, err)
	require.Len(t, result.ConfirmedRequests, 1)

	// Bob is turned away: the only slot is taken.
	_, err = svc.Join(ctx, "bob", "e1")
	require.ErrorIs(t, err, domain.ErrConflict)

	// Alice cancels, freeing her slot; Carol can now join and be confirmed.
	_, err = svc.Cancel(ctx, "alice", aliceReq.ID)
	require.NoError(t, err)

	carolReq, err := svc.Join(ctx, "carol", "e1")
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusPending, carolReq.Status)

	result, err = svc.ChangeStatus(ctx, "owner", "e1",
		[]string{carolReq.ID}, domain.RequestStatusConfirmed)
	require.NoError(t, err)
	require.Len(t, result.ConfirmedRequests, 1)
	assert.Equal(t, domain.RequestStatusConfirmed, reqs.statusOf(carolReq.ID))
}
