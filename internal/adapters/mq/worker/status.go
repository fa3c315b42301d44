package worker

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/scout/internal/domain/model"
)

const defaultTrackerCapacity = 256

// Tracker keeps the latest status of recent jobs. Once full, the job whose
// status changed longest ago is dropped.
type Tracker struct {
	statuses *lru.Cache[string, model.ImportStatus]
}

// NewTracker creates a tracker holding up to capacity jobs.
func NewTracker(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = defaultTrackerCapacity
	}
	c, err := lru.New[string, model.ImportStatus](capacity)
	if err != nil {
		// Only returned for a non-positive size, excluded above.
		panic(err)
	}
	return &Tracker{statuses: c}
}

// Record stores status as the latest state of its job.
func (t *Tracker) Record(status model.ImportStatus) {
	t.statuses.Add(status.Job.ID, status)
}

// Get returns the latest status of job id. Reads do not refresh recency.
func (t *Tracker) Get(id string) (model.ImportStatus, bool) {
	return t.statuses.Peek(id)
}

// FailQueued marks every job still waiting in the queue as failed with
// reason and returns how many were marked.
func (t *Tracker) FailQueued(reason string) int {
	now := time.Now()
	n := 0
	for _, id := range t.statuses.Keys() {
		st, ok := t.statuses.Peek(id)
		if !ok || st.State != model.ImportQueued {
			continue
		}
		st.State = model.ImportFailed
		st.Error = reason
		st.FinishedAt = now
		t.statuses.Add(id, st)
		n++
	}
	return n
}

// Len returns the number of tracked jobs.
func (t *Tracker) Len() int { return t.statuses.Len() }
