// Package scheduler runs the background jobs of the service, currently the
// orphan-document janitor. An upload that succeeds against the object store
// but never gets recorded on a case leaves an orphan behind; the janitor
// sweeps those out once they age past the retention window.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/lawchain/lawchain-api/storage"
)

// ObjectStore is the slice of the uploader the janitor needs.
type ObjectStore interface {
	ListUploads(ctx context.Context) ([]storage.ObjectInfo, error)
	CIDForKey(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// DocumentIndex answers whether a cid is recorded on any case.
type DocumentIndex interface {
	IsDocumentRecorded(ctx context.Context, cid string) (bool, error)
}

// OrphanTTL is how long an unrecorded upload may linger before the janitor
// removes it. Generous enough that an in-flight upload-then-record pair is
// never swept mid-way.
const OrphanTTL = 6 * time.Hour

const sweepTimeout = 5 * time.Minute

// Janitor handles periodic cleanup of orphaned uploads
type Janitor struct {
	cron  *cron.Cron
	store ObjectStore
	index DocumentIndex
	ttl   time.Duration
}

// NewJanitor creates a new janitor instance
func NewJanitor(store ObjectStore, index DocumentIndex) *Janitor {
	return &Janitor{
		cron:  cron.New(cron.WithLocation(time.UTC)),
		store: store,
		index: index,
		ttl:   OrphanTTL,
	}
}

// Start begins the janitor with all registered jobs
func (j *Janitor) Start() {
	// Sweep orphaned uploads hourly
	_, err := j.cron.AddFunc("0 * * * *", j.sweep)
	if err != nil {
		zap.S().Errorw("failed to register orphan sweep job", "error", err)
	}

	j.cron.Start()
	zap.S().Info("orphan janitor started")
}

// Stop gracefully stops the janitor
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	zap.S().Info("orphan janitor stopped")
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	j.Sweep(ctx)
}

// Sweep scans the uploads prefix and deletes objects older than the TTL
// whose cid is not recorded on any case. Failures on individual objects
// are logged and skipped, a partial sweep is still progress.
func (j *Janitor) Sweep(ctx context.Context) {
	objects, err := j.store.ListUploads(ctx)
	if err != nil {
		zap.S().Errorw("orphan sweep failed to list uploads", "error", err)
		return
	}

	cutoff := time.Now().Add(-j.ttl)
	removed := 0
	for _, obj := range objects {
		if obj.LastModified.After(cutoff) {
			continue
		}
		cid, err := j.store.CIDForKey(ctx, obj.Key)
		if err != nil {
			zap.S().Warnw("orphan sweep failed to read cid", "key", obj.Key, "error", err)
			continue
		}
		recorded, err := j.index.IsDocumentRecorded(ctx, cid)
		if err != nil {
			zap.S().Warnw("orphan sweep failed to check document record", "cid", cid, "error", err)
			continue
		}
		if recorded {
			continue
		}
		if err := j.store.Delete(ctx, obj.Key); err != nil {
			zap.S().Warnw("orphan sweep failed to delete object", "key", obj.Key, "error", err)
			continue
		}
		zap.S().Infow("orphan upload removed", "key", obj.Key, "cid", cid)
		removed++
	}

	zap.S().Infow("orphan sweep finished",
		"scanned", len(objects),
		"removed", removed,
	)
}
