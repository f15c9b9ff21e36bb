package recommender

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fadilmartias/job-recommender/internal/model"
	"github.com/google/uuid"
)

// ErrSnapshotUnavailable is returned when no fully loaded snapshot has been
// published yet, or when required artifacts are missing on disk.
var ErrSnapshotUnavailable = errors.New("snapshot unavailable")

// Snapshot is one immutable, fully validated view of the job corpus: the
// ANN index, the parallel id/title-embedding arrays and the job table.
// Requests bind to a single snapshot for their whole duration.
type Snapshot struct {
	Version   string
	CreatedAt time.Time
	JobIDs    []int64
	TitleEmbs [][]float32 // slot may be nil when the title could not be embedded
	Index     *FlatIndex
	Jobs      map[int64]model.Job
}

// NewSnapshot validates index alignment and builds the snapshot. The three
// parallel arrays (ids, title embeddings, index rows) must share one length;
// anything else means the artifacts were written from different corpus
// versions and the snapshot must not be served.
func NewSnapshot(ids []int64, titleEmbs [][]float32, index *FlatIndex, jobs []model.Job) (*Snapshot, error) {
	if index == nil {
		return nil, fmt.Errorf("%w: no index", ErrSnapshotUnavailable)
	}
	if len(ids) != index.Ntotal() || len(titleEmbs) != index.Ntotal() {
		return nil, fmt.Errorf("%w: misaligned artifacts (ids=%d title_embs=%d index=%d)",
			ErrSnapshotUnavailable, len(ids), len(titleEmbs), index.Ntotal())
	}
	for i, emb := range titleEmbs {
		if emb != nil && len(emb) != index.Dim() {
			return nil, fmt.Errorf("%w: title embedding %d has dimension %d, index expects %d",
				ErrSnapshotUnavailable, i, len(emb), index.Dim())
		}
	}

	table := make(map[int64]model.Job, len(jobs))
	for _, j := range jobs {
		table[j.ID] = j
	}

	return &Snapshot{
		Version:   uuid.NewString(),
		CreatedAt: time.Now(),
		JobIDs:    ids,
		TitleEmbs: titleEmbs,
		Index:     index,
		Jobs:      table,
	}, nil
}

// Engine holds the currently published snapshot. Reload builds a complete
// replacement off to the side and swaps the pointer atomically, so in-flight
// requests always see either the fully old or fully new snapshot.
type Engine struct {
	current atomic.Pointer[Snapshot]
}

func NewEngine() *Engine {
	return &Engine{}
}

// Current returns the active snapshot, or ErrSnapshotUnavailable before the
// first successful load.
func (e *Engine) Current() (*Snapshot, error) {
	snap := e.current.Load()
	if snap == nil {
		return nil, ErrSnapshotUnavailable
	}
	return snap, nil
}

// Publish atomically replaces the active snapshot.
func (e *Engine) Publish(snap *Snapshot) {
	e.current.Store(snap)
}
