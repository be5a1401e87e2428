package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role values assigned at registration. A user's role never changes after
// the identity is created.
const (
	RoleNone   = ""
	RoleClient = "client"
	RoleLawyer = "lawyer"
	RoleJudge  = "judge"
	RoleAdmin  = "admin"
)

// User holds the structure for the users collection in mongo
type User struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details UserDetails        `json:"user" bson:"user"`
	Version int32              `json:"__v" bson:"__v"`
}

// UserDetails holds the inner user structure. The same shape is used flat
// in the seeded users.json snapshot.
type UserDetails struct {
	Address      string `json:"address" bson:"address"`
	Name         string `json:"name" bson:"name"`
	Email        string `json:"email,omitempty" bson:"email,omitempty"`
	Role         string `json:"role" bson:"role"`
	BarID        string `json:"barId,omitempty" bson:"barId,omitempty"`
	JudicialID   string `json:"judicialId,omitempty" bson:"judicialId,omitempty"`
	IsRegistered bool   `json:"isRegistered" bson:"isRegistered"`
	IsApproved   bool   `json:"isApproved" bson:"isApproved"`

	// Optional demo login credential, bcrypt hash. Never serialized to JSON.
	PasswordHash string `json:"-" bson:"passwordHash,omitempty"`

	CreatedAt interface{} `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt interface{} `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// SeededUser is the roster entry shape written to users.json. Specialization
// is carried on seeded lawyer records only, the registry does not track it.
type SeededUser struct {
	UserDetails    `bson:",inline"`
	Specialization string `json:"specialization,omitempty" bson:"specialization,omitempty"`
}
