package chain

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/lawchain/lawchain-api/models"
)

// Bridge forwards registry calls from the HTTP layer. Writes are collapsed
// through singleflight keyed per logical operation so that rapid duplicate
// submissions from the UI share a single in-flight call instead of hitting
// the registry twice. Reads pass straight through.
type Bridge struct {
	reg   Registry
	group singleflight.Group
}

// NewBridge wraps a registry.
func NewBridge(reg Registry) *Bridge {
	return &Bridge{reg: reg}
}

// Registry exposes the underlying registry for read paths that need no
// deduplication.
func (b *Bridge) Registry() Registry {
	return b.reg
}

// RegisterIdentity dispatches a registration to the role-specific registry
// method. One registration per address may be in flight at a time.
func (b *Bridge) RegisterIdentity(ctx context.Context, role string, id Identity) error {
	_, err, _ := b.group.Do("register:"+id.Address, func() (interface{}, error) {
		switch role {
		case models.RoleClient:
			return nil, b.reg.RegisterClient(ctx, id)
		case models.RoleLawyer:
			return nil, b.reg.RegisterLawyer(ctx, id)
		case models.RoleJudge:
			return nil, b.reg.RegisterJudge(ctx, id)
		default:
			return nil, fmt.Errorf("unknown role %q", role)
		}
	})
	return err
}

// SubmitCase collapses duplicate submissions from the same client. The
// returned id is the chain-assigned sequential case id.
func (b *Bridge) SubmitCase(ctx context.Context, draft models.CaseDraft) (int64, error) {
	v, err, _ := b.group.Do("submit-case:"+draft.Client+":"+draft.Title, func() (interface{}, error) {
		return b.reg.SubmitCase(ctx, draft)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// RecordDocument appends a document reference to a case, one in-flight
// recording per (case, cid) pair.
func (b *Bridge) RecordDocument(ctx context.Context, caseID int64, doc models.Document) error {
	key := fmt.Sprintf("record-document:%d:%s", caseID, doc.CID)
	_, err, _ := b.group.Do(key, func() (interface{}, error) {
		return nil, b.reg.AddDocument(ctx, caseID, doc)
	})
	return err
}

// Approve flips approval for an address, deduplicated per address.
func (b *Bridge) Approve(ctx context.Context, address string) (*models.UserDetails, error) {
	v, err, _ := b.group.Do("approve:"+address, func() (interface{}, error) {
		return b.reg.Approve(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.UserDetails), nil
}

// UpdateStatus forwards a status change, deduplicated per (case, status).
func (b *Bridge) UpdateStatus(ctx context.Context, caseID int64, status, by, nextHearing, courtRoom string) error {
	key := fmt.Sprintf("update-status:%d:%s", caseID, status)
	_, err, _ := b.group.Do(key, func() (interface{}, error) {
		return nil, b.reg.UpdateStatus(ctx, caseID, status, by, nextHearing, courtRoom)
	})
	return err
}
