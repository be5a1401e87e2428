package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lawchain/lawchain-api/models"
)

// Roster shape of a generated snapshot.
const (
	GeneratedJudges = 23
	LawyerCount     = 30
	ClientCount     = 40
	CaseCount       = 60
)

var firstNames = []string{
	"Aarav", "Ananya", "Arjun", "Diya", "Ishaan", "Kavya", "Meera", "Nikhil",
	"Priya", "Rahul", "Riya", "Rohan", "Sanya", "Vikram", "Zara", "Aditya",
	"Neha", "Karan", "Pooja", "Suresh",
}

var lastNames = []string{
	"Sharma", "Verma", "Patel", "Gupta", "Singh", "Kumar", "Reddy", "Iyer",
	"Mehta", "Joshi", "Nair", "Rao", "Malhotra", "Chopra", "Desai",
}

var specializations = []string{
	"Criminal Law", "Civil Law", "Corporate Law", "Family Law",
	"Property Law", "Tax Law", "Labor Law", "Constitutional Law",
}

var caseTypes = []string{
	"Civil", "Criminal", "Family", "Property", "Corporate", "Labor",
}

var caseTitles = []string{
	"Property Boundary Dispute", "Breach of Contract", "Custody Petition",
	"Insurance Claim Denial", "Employment Termination", "Tenancy Eviction",
	"Inheritance Partition", "Consumer Complaint", "Cheque Dishonour",
	"Trademark Infringement",
}

var caseStatuses = []string{
	models.CaseStatusRegistered,
	models.CaseStatusInProgress,
	models.CaseStatusScheduled,
	models.CaseStatusPostponed,
	models.CaseStatusClosed,
}

var courtRooms = []string{"Courtroom 1", "Courtroom 2", "Courtroom 3", "Courtroom 4"}

// fixedJudges are present in every snapshot regardless of the random roster.
var fixedJudges = []models.SeededUser{
	{
		UserDetails: models.UserDetails{
			Address:      "0x1000000000000000000000000000000000000001",
			Name:         "Justice D. Chandrachud",
			Email:        "d.chandrachud@courts.example",
			Role:         models.RoleJudge,
			JudicialID:   "JUD001",
			IsRegistered: true,
			IsApproved:   true,
		},
	},
	{
		UserDetails: models.UserDetails{
			Address:      "0x1000000000000000000000000000000000000002",
			Name:         "Justice R. Banerjee",
			Email:        "r.banerjee@courts.example",
			Role:         models.RoleJudge,
			JudicialID:   "JUD002",
			IsRegistered: true,
			IsApproved:   true,
		},
	},
}

type generator struct {
	rng *rand.Rand
}

func newGenerator(seed int64) *generator {
	return &generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *generator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

func (g *generator) name() string {
	return g.pick(firstNames) + " " + g.pick(lastNames)
}

func (g *generator) address() string {
	const hexDigits = "0123456789abcdef"
	b := make([]byte, 40)
	for i := range b {
		b[i] = hexDigits[g.rng.Intn(len(hexDigits))]
	}
	return "0x" + string(b)
}

// dateWithin returns an RFC 3339 date inside the past `days` days.
func (g *generator) dateWithin(days int) string {
	offset := time.Duration(g.rng.Intn(days*24)) * time.Hour
	return time.Now().UTC().Add(-offset).Format(time.RFC3339)
}

// upcomingDate returns an RFC 3339 date inside the next `days` days.
func (g *generator) upcomingDate(days int) string {
	offset := time.Duration(g.rng.Intn(days*24)) * time.Hour
	return time.Now().UTC().Add(offset).Format(time.RFC3339)
}

// users generates the roster: the fixed judges plus randomly generated
// judges, lawyers and clients. Uniqueness of names is not required, only
// of addresses and id numbers, which are sequence-derived.
func (g *generator) users() []models.SeededUser {
	roster := make([]models.SeededUser, 0, len(fixedJudges)+GeneratedJudges+LawyerCount+ClientCount)
	roster = append(roster, fixedJudges...)

	for i := 0; i < GeneratedJudges; i++ {
		roster = append(roster, models.SeededUser{
			UserDetails: models.UserDetails{
				Address:      g.address(),
				Name:         "Justice " + g.name(),
				Role:         models.RoleJudge,
				JudicialID:   fmt.Sprintf("JUD%03d", i+3),
				IsRegistered: true,
				IsApproved:   true,
			},
		})
	}
	for i := 0; i < LawyerCount; i++ {
		roster = append(roster, models.SeededUser{
			UserDetails: models.UserDetails{
				Address:      g.address(),
				Name:         "Adv. " + g.name(),
				Role:         models.RoleLawyer,
				BarID:        fmt.Sprintf("BAR%03d", i+1),
				IsRegistered: true,
				IsApproved:   g.rng.Intn(10) > 1, // most, not all, already approved
			},
			Specialization: g.pick(specializations),
		})
	}
	for i := 0; i < ClientCount; i++ {
		roster = append(roster, models.SeededUser{
			UserDetails: models.UserDetails{
				Address:      g.address(),
				Name:         g.name(),
				Role:         models.RoleClient,
				IsRegistered: true,
				IsApproved:   true,
			},
		})
	}
	return roster
}

// cases generates CaseCount cases with unique sequential ids, parties drawn
// from the roster, and a history seeded with the registration event.
func (g *generator) cases(roster []models.SeededUser) []models.CaseDetails {
	var judges, lawyers, clients []models.SeededUser
	for _, u := range roster {
		switch u.Role {
		case models.RoleJudge:
			judges = append(judges, u)
		case models.RoleLawyer:
			lawyers = append(lawyers, u)
		case models.RoleClient:
			clients = append(clients, u)
		}
	}

	cases := make([]models.CaseDetails, 0, CaseCount)
	for i := 0; i < CaseCount; i++ {
		filed := g.dateWithin(730)
		client := clients[g.rng.Intn(len(clients))]
		c := models.CaseDetails{
			CaseID:      int64(i + 1),
			Title:       g.pick(caseTitles),
			Description: "Seeded demo case for dashboard listings.",
			CaseType:    g.pick(caseTypes),
			SubmittedBy: client.Address,
			AssignedTo:  lawyers[g.rng.Intn(len(lawyers))].Address,
			Judge:       judges[g.rng.Intn(len(judges))].Address,
			Status:      g.pick(caseStatuses),
			FilingDate:  filed,
			Documents:   []models.Document{},
			History: []models.Event{
				{Date: filed, Action: "Case Registered", By: client.Address},
			},
		}
		if c.Status == models.CaseStatusScheduled || c.Status == models.CaseStatusInProgress {
			c.NextHearing = g.upcomingDate(60)
			c.CourtRoom = g.pick(courtRooms)
		}
		cases = append(cases, c)
	}
	return cases
}
