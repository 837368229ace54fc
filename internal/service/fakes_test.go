package service

import (
	"context"
	"sync"

	"github.com/sheetcaller/backend/internal/models"
	"github.com/sheetcaller/backend/internal/telephony"
)

type fakeStore struct {
	mu       sync.Mutex
	leads    map[string]models.Lead
	queue    []string
	updates  []models.LeadUpdate
	fetchErr error
	writeErr error
}

func newFakeStore(leads ...models.Lead) *fakeStore {
	s := &fakeStore{leads: map[string]models.Lead{}}
	for _, l := range leads {
		s.leads[l.ID] = l
		s.queue = append(s.queue, l.ID)
	}
	return s
}

func (s *fakeStore) FetchNext(ctx context.Context) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	for _, id := range s.queue {
		if l := s.leads[id]; l.Status == models.StatusPending {
			return &l, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FetchByID(ctx context.Context, id string) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	l, ok := s.leads[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (s *fakeStore) Update(ctx context.Context, u models.LeadUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.updates = append(s.updates, u)
	l := s.leads[u.ID]
	l.ID = u.ID
	l.Status = u.Status
	l.Response = u.Response
	s.leads[u.ID] = l
	return nil
}

func (s *fakeStore) ListAll(ctx context.Context) ([]models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	out := make([]models.Lead, 0, len(s.queue))
	for _, id := range s.queue {
		out = append(out, s.leads[id])
	}
	return out, nil
}

func (s *fakeStore) Updates() []models.LeadUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.LeadUpdate(nil), s.updates...)
}

type memJournal struct {
	mu     sync.Mutex
	events []models.CallEvent
}

func (j *memJournal) Record(ctx context.Context, ev models.CallEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, ev)
	return nil
}

type recordingDialer struct {
	requests []telephony.CallRequest
	sid      string
	err      error
}

func (d *recordingDialer) PlaceCall(ctx context.Context, req telephony.CallRequest) (string, error) {
	d.requests = append(d.requests, req)
	if d.err != nil {
		return "", d.err
	}
	return d.sid, nil
}
