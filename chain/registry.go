package chain

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/lawchain/lawchain-api/databases"
	"github.com/lawchain/lawchain-api/models"
)

// Identity carries the caller-supplied fields of a registration.
type Identity struct {
	Address      string
	Name         string
	Email        string
	IDNumber     string
	PasswordHash string
}

// Registry is the server-side stand-in for the identity/case contract.
// Registrations are immutable once created, case documents and history are
// append-only, and case ids are assigned sequentially.
type Registry interface {
	RegisterClient(ctx context.Context, id Identity) error
	RegisterLawyer(ctx context.Context, id Identity) error
	RegisterJudge(ctx context.Context, id Identity) error

	Role(ctx context.Context, address string) (string, error)
	IsRegistered(ctx context.Context, address string) (bool, error)
	IsApproved(ctx context.Context, address string) (bool, error)
	Identity(ctx context.Context, address string) (*models.UserDetails, error)
	IdentityByEmail(ctx context.Context, email string) (*models.UserDetails, error)
	Approve(ctx context.Context, address string) (*models.UserDetails, error)

	SubmitCase(ctx context.Context, draft models.CaseDraft) (int64, error)
	CaseByID(ctx context.Context, caseID int64) (*models.CaseDetails, error)
	CasesByParty(ctx context.Context, address string, limit, page int64) ([]models.CaseDetails, error)
	AddDocument(ctx context.Context, caseID int64, doc models.Document) error
	UpdateStatus(ctx context.Context, caseID int64, status, by, nextHearing, courtRoom string) error
	IsDocumentRecorded(ctx context.Context, cid string) (bool, error)
}

type registry struct {
	users databases.UserDatabase
	cases databases.CaseDatabase
}

// NewRegistry builds a registry over the mongo-backed databases.
func NewRegistry(users databases.UserDatabase, cases databases.CaseDatabase) Registry {
	return &registry{users: users, cases: cases}
}

// RegisterClient registers a client identity. Clients need no external
// approval and are usable immediately.
func (r *registry) RegisterClient(ctx context.Context, id Identity) error {
	return r.register(ctx, id, models.RoleClient)
}

// RegisterLawyer registers a lawyer identity keyed by bar id. Lawyers start
// unapproved until an admin reviews the bar id.
func (r *registry) RegisterLawyer(ctx context.Context, id Identity) error {
	return r.register(ctx, id, models.RoleLawyer)
}

// RegisterJudge registers a judge identity keyed by judicial id. Judges
// start unapproved.
func (r *registry) RegisterJudge(ctx context.Context, id Identity) error {
	return r.register(ctx, id, models.RoleJudge)
}

func (r *registry) register(ctx context.Context, id Identity, role string) error {
	count, err := r.users.CountDocuments(ctx, bson.M{"user.address": id.Address})
	if err != nil {
		return chainErr("count address", err)
	}
	if count > 0 {
		return ErrAlreadyRegistered
	}

	details := models.UserDetails{
		Address:      id.Address,
		Name:         id.Name,
		Email:        id.Email,
		Role:         role,
		IsRegistered: true,
		PasswordHash: id.PasswordHash,
		CreatedAt:    primitive.NewDateTimeFromTime(time.Now()),
	}

	switch role {
	case models.RoleLawyer:
		details.BarID = id.IDNumber
		if err := r.checkDuplicateID(ctx, "user.barId", id.IDNumber); err != nil {
			return err
		}
	case models.RoleJudge:
		details.JudicialID = id.IDNumber
		if err := r.checkDuplicateID(ctx, "user.judicialId", id.IDNumber); err != nil {
			return err
		}
	case models.RoleClient:
		details.IsApproved = true
	}

	user := models.User{
		ID:      primitive.NewObjectID(),
		Details: details,
	}
	if _, err := r.users.InsertOne(ctx, user); err != nil {
		return chainErr("insert identity", err)
	}

	zap.S().Infow("identity registered",
		"address", id.Address,
		"role", role,
	)
	return nil
}

func (r *registry) checkDuplicateID(ctx context.Context, field, idNumber string) error {
	if idNumber == "" {
		return nil
	}
	count, err := r.users.CountDocuments(ctx, bson.M{field: idNumber})
	if err != nil {
		return chainErr("count identifier", err)
	}
	if count > 0 {
		return ErrDuplicateID
	}
	return nil
}

// Role returns the role registered for an address, RoleNone when the
// address is unknown.
func (r *registry) Role(ctx context.Context, address string) (string, error) {
	details, err := r.Identity(ctx, address)
	if err != nil {
		return models.RoleNone, err
	}
	if details == nil {
		return models.RoleNone, nil
	}
	return details.Role, nil
}

func (r *registry) IsRegistered(ctx context.Context, address string) (bool, error) {
	details, err := r.Identity(ctx, address)
	if err != nil {
		return false, err
	}
	return details != nil, nil
}

func (r *registry) IsApproved(ctx context.Context, address string) (bool, error) {
	details, err := r.Identity(ctx, address)
	if err != nil {
		return false, err
	}
	if details == nil {
		return false, nil
	}
	return details.IsApproved, nil
}

// Identity returns the registered identity for an address, nil when the
// address is unknown.
func (r *registry) Identity(ctx context.Context, address string) (*models.UserDetails, error) {
	user, err := r.users.FindOne(ctx, bson.M{"user.address": address})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, chainErr("find identity", err)
	}
	return &user.Details, nil
}

// IdentityByEmail resolves the demo login credential path.
func (r *registry) IdentityByEmail(ctx context.Context, email string) (*models.UserDetails, error) {
	user, err := r.users.FindOne(ctx, bson.M{"user.email": email})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, chainErr("find identity by email", err)
	}
	return &user.Details, nil
}

// Approve flips the approval flag for a registered lawyer or judge and
// returns the updated identity.
func (r *registry) Approve(ctx context.Context, address string) (*models.UserDetails, error) {
	res, err := r.users.UpdateOne(ctx,
		bson.M{"user.address": address},
		bson.M{"$set": bson.M{
			"user.isApproved": true,
			"user.updatedAt":  primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return nil, chainErr("approve identity", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrUnregistered
	}
	return r.Identity(ctx, address)
}

// SubmitCase assigns the next sequential case id, persists the case with
// status Registered and a seeded history, and returns the id.
func (r *registry) SubmitCase(ctx context.Context, draft models.CaseDraft) (int64, error) {
	caseID, err := r.cases.NextCaseID(ctx)
	if err != nil {
		return 0, chainErr("next case id", err)
	}

	now := time.Now().UTC()
	details := models.CaseDetails{
		CaseID:      caseID,
		Title:       draft.Title,
		Description: draft.Description,
		CaseType:    draft.CaseType,
		SubmittedBy: draft.Client,
		AssignedTo:  draft.Lawyer,
		Judge:       draft.Judge,
		Status:      models.CaseStatusRegistered,
		FilingDate:  now.Format(time.RFC3339),
		Documents:   []models.Document{},
		History: []models.Event{
			{
				Date:   now.Format(time.RFC3339),
				Action: "Case Registered",
				By:     draft.Client,
			},
		},
		CreatedAt: primitive.NewDateTimeFromTime(now),
		UpdatedAt: primitive.NewDateTimeFromTime(now),
	}

	caseRecord := models.Case{
		ID:      primitive.NewObjectID(),
		Details: details,
	}
	if _, err := r.cases.InsertOne(ctx, caseRecord); err != nil {
		return 0, chainErr("insert case", err)
	}

	zap.S().Infow("case submitted",
		"caseId", caseID,
		"client", draft.Client,
	)
	return caseID, nil
}

func (r *registry) CaseByID(ctx context.Context, caseID int64) (*models.CaseDetails, error) {
	caseRecord, err := r.cases.FindOne(ctx, bson.M{"case.caseId": caseID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCaseNotFound
		}
		return nil, chainErr("find case", err)
	}
	return &caseRecord.Details, nil
}

// CasesByParty returns every case the address appears on, in any party role.
// A limit of zero returns the full set.
func (r *registry) CasesByParty(ctx context.Context, address string, limit, page int64) ([]models.CaseDetails, error) {
	filter := bson.M{"$or": []bson.M{
		{"case.submittedBy": address},
		{"case.assignedTo": address},
		{"case.judge": address},
	}}
	var opts []*options.FindOptions
	if limit > 0 {
		opts = append(opts, databases.Paginate(limit, page))
	}
	caseRecords, err := r.cases.Find(ctx, filter, opts...)
	if err != nil {
		return nil, chainErr("find cases", err)
	}
	details := make([]models.CaseDetails, 0, len(caseRecords))
	for _, c := range caseRecords {
		details = append(details, c.Details)
	}
	return details, nil
}

// AddDocument appends a document reference and a matching history event.
// Existing entries are never rewritten.
func (r *registry) AddDocument(ctx context.Context, caseID int64, doc models.Document) error {
	now := time.Now().UTC()
	event := models.Event{
		Date:   now.Format(time.RFC3339),
		Action: "Document Added: " + doc.Name,
		By:     doc.UploadedBy,
	}
	res, err := r.cases.UpdateOne(ctx,
		bson.M{"case.caseId": caseID},
		bson.M{
			"$push": bson.M{
				"case.documents": doc,
				"case.history":   event,
			},
			"$set": bson.M{"case.updatedAt": primitive.NewDateTimeFromTime(now)},
		},
	)
	if err != nil {
		return chainErr("add document", err)
	}
	if res.MatchedCount == 0 {
		return ErrCaseNotFound
	}
	return nil
}

// UpdateStatus appends a status change to the case history. nextHearing and
// courtRoom are only written when non-empty.
func (r *registry) UpdateStatus(ctx context.Context, caseID int64, status, by, nextHearing, courtRoom string) error {
	now := time.Now().UTC()
	set := bson.M{
		"case.status":    status,
		"case.updatedAt": primitive.NewDateTimeFromTime(now),
	}
	if nextHearing != "" {
		set["case.nextHearing"] = nextHearing
	}
	if courtRoom != "" {
		set["case.courtRoom"] = courtRoom
	}
	event := models.Event{
		Date:   now.Format(time.RFC3339),
		Action: "Status Changed: " + status,
		By:     by,
	}

	res, err := r.cases.UpdateOne(ctx,
		bson.M{"case.caseId": caseID},
		bson.M{
			"$set":  set,
			"$push": bson.M{"case.history": event},
		},
	)
	if err != nil {
		return chainErr("update status", err)
	}
	if res.MatchedCount == 0 {
		return ErrCaseNotFound
	}
	return nil
}

// IsDocumentRecorded reports whether any case references the cid. Used by
// the orphan janitor to decide whether an uploaded object may be reclaimed.
func (r *registry) IsDocumentRecorded(ctx context.Context, cid string) (bool, error) {
	count, err := r.cases.CountDocuments(ctx, bson.M{"case.documents.cid": cid})
	if err != nil {
		return false, chainErr("count documents", err)
	}
	return count > 0, nil
}
