package decision

import (
	"sync"
	"time"

	"github.com/rustyeddy/quantlab/signal"
)

// Record is one decision the service handed out.
type Record struct {
	Time     time.Time       `json:"time"`
	Snapshot signal.Snapshot `json:"snapshot"`
	Decision string          `json:"decision"`
	Reason   string          `json:"reason"`
}

// Recorder is the append-only decision log backing the dashboard. It is
// owned by the server and safe for concurrent handlers. Keep bounds the
// log: once full, the oldest records are dropped.
type Recorder struct {
	mu   sync.Mutex
	keep int
	recs []Record
}

// NewRecorder keeps the most recent keep records; keep <= 0 means 1000.
func NewRecorder(keep int) *Recorder {
	if keep <= 0 {
		keep = 1000
	}
	return &Recorder{keep: keep}
}

func (r *Recorder) Append(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rec)
	if len(r.recs) > r.keep {
		r.recs = r.recs[len(r.recs)-r.keep:]
	}
}

// List returns a copy, newest first.
func (r *Recorder) List() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.recs))
	for i, rec := range r.recs {
		out[len(r.recs)-1-i] = rec
	}
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recs)
}
