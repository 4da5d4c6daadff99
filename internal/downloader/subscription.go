package downloader

import (
	"github.com/rs/zerolog/log"

	"placepage/internal/domain"
)

// Subscription tracks download progress of the region that contains the
// selected object. It owns at most one storage subscription slot.
type Subscription struct {
	storage domain.RegionStorage
	sched   domain.Scheduler
	surface domain.Surface

	slot    int
	current *domain.DownloadRegion
}

func New(storage domain.RegionStorage, sched domain.Scheduler, surface domain.Surface) *Subscription {
	return &Subscription{storage: storage, sched: sched, surface: surface}
}

// Attach subscribes to regionID when its status is worth watching. Calling
// it while attached is a contract violation and is ignored.
func (s *Subscription) Attach(regionID string) bool {
	if s.slot != 0 {
		if s.current == nil || s.current.ID != regionID {
			log.Error().Str("attached", s.attachedID()).Str("region", regionID).
				Msg("downloader: attach while attached, detach first")
		}
		return false
	}
	r, ok := s.storage.Fill(regionID)
	if !ok || !r.Status.Interesting() {
		return false
	}
	s.current = &r
	s.slot = s.storage.Subscribe(s)
	s.show(r, 0, 0)
	return true
}

// Detach drops the subscription; a no-op when detached.
func (s *Subscription) Detach() {
	if s.slot == 0 {
		return
	}
	s.storage.Unsubscribe(s.slot)
	s.slot = 0
	s.current = nil
	s.surface.SetDownloader(nil)
}

func (s *Subscription) Attached() (string, bool) {
	if s.slot == 0 || s.current == nil {
		return "", false
	}
	return s.current.ID, true
}

func (s *Subscription) OnStatusChanged(updates []domain.StatusUpdate) {
	if s.current == nil {
		return
	}
	for _, u := range updates {
		if u.RegionID == s.current.ID {
			s.refresh(0, 0)
			return
		}
	}
}

func (s *Subscription) OnProgress(regionID string, local, remote int64) {
	if s.current != nil && s.current.ID == regionID {
		s.refresh(local, remote)
	}
}

func (s *Subscription) refresh(local, remote int64) {
	r, ok := s.storage.Fill(s.current.ID)
	if !ok {
		s.scheduleDetach()
		return
	}
	s.current = &r
	if !r.Status.Interesting() {
		// still inside the storage dispatch; unsubscribing here would
		// mutate the listener set it is iterating
		s.scheduleDetach()
		return
	}
	s.show(r, local, remote)
}

func (s *Subscription) scheduleDetach() {
	if s.slot == 0 {
		return
	}
	slot := s.slot
	s.sched.Post(func() {
		// a newer attach owns the slot now
		if s.slot != slot {
			return
		}
		s.Detach()
	})
}

func (s *Subscription) show(r domain.DownloadRegion, local, remote int64) {
	s.surface.SetDownloader(&domain.DownloaderView{
		RegionID:   r.ID,
		Status:     r.Status,
		Size:       r.TotalSize,
		ChildCount: r.ChildCount,
		Local:      local,
		Remote:     remote,
	})
}

func (s *Subscription) attachedID() string {
	if s.current == nil {
		return ""
	}
	return s.current.ID
}
