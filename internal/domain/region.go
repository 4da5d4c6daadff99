package domain

type RegionStatus string

const (
	StatusDownloadable     RegionStatus = "downloadable"
	StatusEnqueued         RegionStatus = "enqueued"
	StatusFailed           RegionStatus = "failed"
	StatusPartlyDownloaded RegionStatus = "partly_downloaded"
	StatusInProgress       RegionStatus = "in_progress"
	StatusDownloaded       RegionStatus = "downloaded"
	StatusNotApplicable    RegionStatus = "not_applicable"
)

// Interesting reports whether a region in this status needs a live
// download subscription.
func (s RegionStatus) Interesting() bool {
	switch s {
	case StatusDownloadable, StatusEnqueued, StatusFailed, StatusPartlyDownloaded, StatusInProgress:
		return true
	}
	return false
}

type DownloadRegion struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Status     RegionStatus `json:"status"`
	TotalSize  int64        `json:"total_size"`
	LocalSize  int64        `json:"local_size"`
	RemoteSize int64        `json:"remote_size"`
	ChildCount int          `json:"child_count"`
}

type StatusUpdate struct {
	RegionID string       `json:"region_id"`
	Status   RegionStatus `json:"status"`
}
