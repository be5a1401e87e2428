package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Case status values. Status changes are append-only events in the case
// history, the set itself is fixed.
const (
	CaseStatusRegistered = "Registered"
	CaseStatusInProgress = "In Progress"
	CaseStatusScheduled  = "Scheduled"
	CaseStatusPostponed  = "Postponed"
	CaseStatusClosed     = "Closed"
)

// Case holds the structure for the cases collection in mongo
type Case struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details CaseDetails        `json:"case" bson:"case"`
	Version int32              `json:"__v" bson:"__v"`
}

// CaseDetails holds the inner case structure. CaseID is the chain-style
// monotonic identifier assigned by the registry, unique and sequential.
// The same shape is used flat in the seeded cases.json snapshot.
type CaseDetails struct {
	CaseID      int64  `json:"id" bson:"caseId"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	CaseType    string `json:"caseType" bson:"caseType"`

	// Parties. Exactly one submitting client, at most one assigned lawyer
	// and one judge.
	SubmittedBy string `json:"submittedBy" bson:"submittedBy"`
	AssignedTo  string `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	Judge       string `json:"judge,omitempty" bson:"judge,omitempty"`

	Status      string `json:"status" bson:"status"`
	FilingDate  string `json:"filingDate" bson:"filingDate"`
	NextHearing string `json:"nextHearing,omitempty" bson:"nextHearing,omitempty"`
	CourtRoom   string `json:"courtRoom,omitempty" bson:"courtRoom,omitempty"`

	// Both lists only grow.
	Documents []Document `json:"documents" bson:"documents"`
	History   []Event    `json:"history" bson:"history"`

	CreatedAt interface{} `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt interface{} `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// Document references an uploaded file by its content identifier. Immutable
// once appended to a case.
type Document struct {
	Name         string `json:"name" bson:"name"`
	CID          string `json:"cid" bson:"cid"`
	UploadedBy   string `json:"uploadedBy" bson:"uploadedBy"`
	UploadDate   string `json:"uploadDate" bson:"uploadDate"`
	DocumentType string `json:"documentType" bson:"documentType"`
}

// Event is a single case history entry, ordered by occurrence.
type Event struct {
	Date   string `json:"date" bson:"date"`
	Action string `json:"action" bson:"action"`
	By     string `json:"by" bson:"by"`
}

// CaseDraft carries the caller-supplied fields of a case submission.
type CaseDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CaseType    string `json:"caseType"`
	Client      string `json:"client"`
	Lawyer      string `json:"lawyer,omitempty"`
	Judge       string `json:"judge,omitempty"`
}
