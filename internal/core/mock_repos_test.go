package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"graficaos.service/internal/core/model"
	"graficaos.service/internal/ports/repository"
)

var errDBDown = errors.New("connection refused")

// ── Mock PunchRepository ──

type mockPunchRepo struct {
	mu      sync.Mutex
	records map[string]*model.PunchRecord
	users   map[string]*model.UserSummary
	nextID  int

	// beforeCreate runs ahead of every Create; returning an error aborts it.
	beforeCreate func(rec *model.PunchRecord) error
	// beforeAutoClose runs under the lock ahead of the AutoClose update.
	beforeAutoClose func()
	// setSlotLosses makes the next n SetSlot calls report no row updated.
	setSlotLosses int
	failWith      error
	autoCloseErr  error
	setSlotCalls  int
	autoCloseIDs  []string
}

func newMockPunchRepo() *mockPunchRepo {
	return &mockPunchRepo{
		records: make(map[string]*model.PunchRecord),
		users:   make(map[string]*model.UserSummary),
	}
}

func (m *mockPunchRepo) addUser(id, name, email string) {
	m.users[id] = &model.UserSummary{ID: id, Name: name, Email: email}
}

// seed stores a record as is and returns its id.
func (m *mockPunchRepo) seed(rec model.PunchRecord) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("rec-%d", m.nextID)
	}
	m.records[rec.ID] = &rec
	return rec.ID
}

func (m *mockPunchRepo) view(rec *model.PunchRecord) *model.PunchRecord {
	out := *rec
	out.User = m.users[rec.UserID]
	return &out
}

func (m *mockPunchRepo) FindByUserAndDate(_ context.Context, userID string, date time.Time) (*model.PunchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, r := range m.records {
		if r.UserID == userID && r.Date.Equal(date) {
			return m.view(r), nil
		}
	}
	return nil, nil
}

func (m *mockPunchRepo) GetByID(_ context.Context, id string) (*model.PunchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	r, ok := m.records[id]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return m.view(r), nil
}

func (m *mockPunchRepo) Create(_ context.Context, rec *model.PunchRecord) error {
	if m.beforeCreate != nil {
		if err := m.beforeCreate(rec); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for _, r := range m.records {
		if r.UserID == rec.UserID && r.Date.Equal(rec.Date) {
			return repository.ErrDuplicateRecord
		}
	}
	m.nextID++
	rec.ID = fmt.Sprintf("rec-%d", m.nextID)
	stored := *rec
	m.records[rec.ID] = &stored
	return nil
}

func (m *mockPunchRepo) SetSlot(_ context.Context, id string, slot model.Slot, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setSlotCalls++
	if m.failWith != nil {
		return false, m.failWith
	}
	if m.setSlotLosses > 0 {
		m.setSlotLosses--
		return false, nil
	}
	r, ok := m.records[id]
	if !ok || r.SlotTime(slot) != nil {
		return false, nil
	}
	r.SetSlot(slot, at)
	return true, nil
}

func (m *mockPunchRepo) FindOpenByDate(_ context.Context, date time.Time) ([]model.PunchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []model.PunchRecord
	for _, r := range m.records {
		if r.Date.Equal(date) && r.Entrada != nil && r.Saida == nil {
			out = append(out, *m.view(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockPunchRepo) AutoClose(_ context.Context, ids []string, saida time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.autoCloseErr != nil {
		return nil, m.autoCloseErr
	}
	if m.beforeAutoClose != nil {
		m.beforeAutoClose()
	}
	m.autoCloseIDs = append(m.autoCloseIDs, ids...)
	var closed []string
	for _, id := range ids {
		if r, ok := m.records[id]; ok && r.Saida == nil {
			s := saida
			r.Saida = &s
			r.AutoClosed = true
			closed = append(closed, id)
		}
	}
	return closed, nil
}

func (m *mockPunchRepo) List(_ context.Context, filter model.RecordFilter) ([]model.PunchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []model.PunchRecord
	for _, r := range m.records {
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		if r.Date.Before(filter.Range.Start) || r.Date.After(filter.Range.End) {
			continue
		}
		out = append(out, *m.view(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (m *mockPunchRepo) ListRecent(_ context.Context, userID string, limit int) ([]model.PunchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []model.PunchRecord
	for _, r := range m.records {
		if userID == "" || r.UserID == userID {
			out = append(out, *m.view(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo(users ...model.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*model.User)}
	for i := range users {
		m.users[users[i].ID] = &users[i]
	}
	return m
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrRecordNotFound
}

// ── helpers ──

var brt = time.FixedZone("UTC-03", -3*3600)

// civil returns the instant of hh:mm on y-m-d in UTC-3.
func civil(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, brt)
}

func ptr(t time.Time) *time.Time {
	return &t
}

// fakeNow is a settable clock source.
type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = t
}

func newTestClock(now *fakeNow) *CivilClock {
	return NewCivilClock(-3).WithNow(now.Now)
}
