// Package regions keeps map-region download state and notifies
// subscribers on the control thread.
package regions

import (
	"sort"
	"sync"

	"placepage/internal/domain"
)

type Store struct {
	mu      sync.Mutex
	sched   domain.Scheduler
	regions map[string]domain.DownloadRegion
	subs    map[int]domain.StorageCallback
	next    int
}

func New(sched domain.Scheduler) *Store {
	return &Store{
		sched:   sched,
		regions: map[string]domain.DownloadRegion{},
		subs:    map[int]domain.StorageCallback{},
	}
}

// Put adds or replaces a region without notifying anyone.
func (s *Store) Put(r domain.DownloadRegion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions[r.ID] = r
}

func (s *Store) Fill(regionID string) (domain.DownloadRegion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.regions[regionID]
	return r, ok
}

func (s *Store) List() []domain.DownloadRegion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.DownloadRegion, 0, len(s.regions))
	for _, r := range s.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Subscribe returns a slot number; slots start at 1.
func (s *Store) Subscribe(cb domain.StorageCallback) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.subs[s.next] = cb
	return s.next
}

func (s *Store) Unsubscribe(slot int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, slot)
}

func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// SetStatus records a status change and dispatches it. Unknown regions are
// ignored.
func (s *Store) SetStatus(regionID string, st domain.RegionStatus) bool {
	s.mu.Lock()
	r, ok := s.regions[regionID]
	if ok {
		r.Status = st
		s.regions[regionID] = r
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	updates := []domain.StatusUpdate{{RegionID: regionID, Status: st}}
	s.dispatch(func(cb domain.StorageCallback) { cb.OnStatusChanged(updates) })
	return true
}

// Progress dispatches download progress for regionID.
func (s *Store) Progress(regionID string, local, remote int64) {
	s.mu.Lock()
	if r, ok := s.regions[regionID]; ok {
		r.LocalSize, r.RemoteSize = local, remote
		s.regions[regionID] = r
	}
	s.mu.Unlock()
	s.dispatch(func(cb domain.StorageCallback) { cb.OnProgress(regionID, local, remote) })
}

// dispatch posts one turn that notifies the subscribers still registered
// when it runs.
func (s *Store) dispatch(fn func(cb domain.StorageCallback)) {
	s.sched.Post(func() {
		s.mu.Lock()
		slots := make([]int, 0, len(s.subs))
		for slot := range s.subs {
			slots = append(slots, slot)
		}
		sort.Ints(slots)
		cbs := make([]domain.StorageCallback, 0, len(slots))
		for _, slot := range slots {
			cbs = append(cbs, s.subs[slot])
		}
		s.mu.Unlock()
		for _, cb := range cbs {
			fn(cb)
		}
	})
}
