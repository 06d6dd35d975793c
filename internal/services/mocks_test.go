package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"explorewithme/internal/domain"
)

// In-memory fakes shared by the service tests. The request repository is a
// real (if tiny) ledger so admission tests can exercise full scenarios,
// including concurrent joins; it is safe for concurrent use.

type memUserRepo struct {
	users map[string]*domain.User
	err   error
}

func (m *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.err != nil {
		return m.err
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.users[id]
	return ok, nil
}

func (m *memUserRepo) List(ctx context.Context, ids []string, from, size int) ([]*domain.User, error) {
	return nil, nil
}

func (m *memUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func newMemUserRepo(ids ...string) *memUserRepo {
	m := &memUserRepo{users: make(map[string]*domain.User)}
	for _, id := range ids {
		m.users[id] = &domain.User{ID: id, Name: "user " + id}
	}
	return m
}

type memEventRepo struct {
	events       map[string]*domain.Event
	searchResult []*domain.Event
	inUse        bool
	err          error
}

func (m *memEventRepo) Create(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	if event.ID == "" {
		event.ID = fmt.Sprintf("e%d", len(m.events)+1)
	}
	m.events[event.ID] = event
	return nil
}

func (m *memEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (m *memEventRepo) Update(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.events[event.ID]; !ok {
		return domain.ErrNotFound
	}
	m.events[event.ID] = event
	return nil
}

func (m *memEventRepo) ListByInitiator(ctx context.Context, initiatorID string, from, size int) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range m.events {
		if e.InitiatorID == initiatorID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memEventRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, id := range ids {
		if e, ok := m.events[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEventRepo) Search(ctx context.Context, filter *domain.EventFilter) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.searchResult, nil
}

func (m *memEventRepo) ExistsByCategory(ctx context.Context, categoryID string) (bool, error) {
	return m.inUse, nil
}

func newMemEventRepo(events ...*domain.Event) *memEventRepo {
	m := &memEventRepo{events: make(map[string]*domain.Event)}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

type memRequestRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.ParticipationRequest
	seq  int
	err  error
}

func newMemRequestRepo(reqs ...*domain.ParticipationRequest) *memRequestRepo {
	m := &memRequestRepo{byID: make(map[string]*domain.ParticipationRequest)}
	for _, r := range reqs {
		m.byID[r.ID] = r
		m.seq++
	}
	return m
}

func (m *memRequestRepo) Create(ctx context.Context, req *domain.ParticipationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.seq++
	req.ID = fmt.Sprintf("r%03d", m.seq)
	clone := *req
	m.byID[req.ID] = &clone
	return nil
}

func (m *memRequestRepo) GetByIDAndRequester(ctx context.Context, id, requesterID string) (*domain.ParticipationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.byID[id]
	if !ok || req.RequesterID != requesterID {
		return nil, domain.ErrNotFound
	}
	clone := *req
	return &clone, nil
}

func (m *memRequestRepo) ExistsByRequesterAndEvent(ctx context.Context, requesterID, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, req := range m.byID {
		if req.RequesterID == requesterID && req.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRequestRepo) ExistsByRequesterAndEventAndStatus(ctx context.Context, requesterID, eventID string, status domain.RequestStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.byID {
		if req.RequesterID == requesterID && req.EventID == eventID && req.Status == status {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRequestRepo) CountByEventAndStatus(ctx context.Context, eventID string, status domain.RequestStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, req := range m.byID {
		if req.EventID == eventID && req.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *memRequestRepo) ListByRequester(ctx context.Context, requesterID string) ([]*domain.ParticipationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ParticipationRequest
	for _, req := range m.byID {
		if req.RequesterID == requesterID {
			clone := *req
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memRequestRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.ParticipationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ParticipationRequest
	for _, req := range m.byID {
		if req.EventID == eventID {
			clone := *req
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRequestRepo) ListByEventAndIDs(ctx context.Context, eventID string, ids []string) ([]*domain.ParticipationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ParticipationRequest
	for _, id := range ids {
		req, ok := m.byID[id]
		if !ok || req.EventID != eventID {
			continue
		}
		clone := *req
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memRequestRepo) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	req.Status = status
	return nil
}

func (m *memRequestRepo) UpdateStatuses(ctx context.Context, ids []string, status domain.RequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		req, ok := m.byID[id]
		if !ok {
			return domain.ErrNotFound
		}
		req.Status = status
	}
	return nil
}

// statusOf reads a request's current status directly from the ledger.
func (m *memRequestRepo) statusOf(id string) domain.RequestStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].Status
}

type memRatingRepo struct {
	mu      sync.Mutex
	byKey   map[string]*domain.EventRating
	seq     int
	err     error
}

func newMemRatingRepo() *memRatingRepo {
	return &memRatingRepo{byKey: make(map[string]*domain.EventRating)}
}

func ratingKey(userID, eventID string) string { return userID + ":" + eventID }

func (m *memRatingRepo) GetByUserAndEvent(ctx context.Context, userID, eventID string) (*domain.EventRating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.byKey[ratingKey(userID, eventID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (m *memRatingRepo) Upsert(ctx context.Context, rating *domain.EventRating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	key := ratingKey(rating.UserID, rating.EventID)
	if existing, ok := m.byKey[key]; ok {
		existing.IsLike = rating.IsLike
		existing.Created = rating.Created
		rating.ID = existing.ID
		return nil
	}
	m.seq++
	rating.ID = fmt.Sprintf("rt%d", m.seq)
	clone := *rating
	m.byKey[key] = &clone
	return nil
}

func (m *memRatingRepo) Delete(ctx context.Context, userID, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ratingKey(userID, eventID)
	if _, ok := m.byKey[key]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byKey, key)
	return nil
}

func (m *memRatingRepo) CountByEvent(ctx context.Context, eventID string, isLike bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.byKey {
		if r.EventID == eventID && r.IsLike == isLike {
			n++
		}
	}
	return n, nil
}

type stubStatsClient struct {
	mu     sync.Mutex
	hitErr error
	getErr error
	views  map[string]int64
	hits   []string
}

func (s *stubStatsClient) Hit(ctx context.Context, app, uri, ip string, timestamp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hitErr != nil {
		return s.hitErr
	}
	s.hits = append(s.hits, uri)
	return nil
}

func (s *stubStatsClient) GetViews(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	out := make(map[string]int64, len(uris))
	for _, uri := range uris {
		out[uri] = s.views[uri]
	}
	return out, nil
}
