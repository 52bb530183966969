package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
	"github.com/teamaptiv/volunteer-hub/pkg/core/slots"
)

// Status is the role recorded against a user account
type Status string

const (
	StatusVolunteer Status = "Volunteer"
	StatusDonor     Status = "Donor"
	StatusAdmin     Status = "Admin"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusVolunteer, StatusDonor, StatusAdmin:
		return true
	}
	return false
}

// Event is a scheduled volunteering event. Slots holds the increments no one has claimed yet.
type Event struct {
	ID                  uuid.UUID
	Name                string
	Date                time.Time
	Window              slots.Window
	Location            string
	Description         string
	Active              bool
	Slots               []slots.Token
	VolunteersNeeded    int
	VolunteersAttending int
	DonationsNeeded     decimal.Decimal
	DonationsReceived   decimal.Decimal
	CreatedAt           time.Time
	Version             int64
}

// Clone returns a deep copy so the ledger can mutate without touching a caller's value
func (e *Event) Clone() *Event {
	c := *e
	c.Slots = slices.Clone(e.Slots)
	return &c
}

// HasSlot returns the index of the pool slot matching tok, or -1
func (e *Event) HasSlot(tok slots.Token) int {
	return slices.IndexFunc(e.Slots, tok.SameSlot)
}

// User is a registered account
type User struct {
	ID              uuid.UUID
	Username        string
	FirstName       string
	LastName        string
	Status          Status
	Active          bool
	GivenDonations  decimal.Decimal
	VolunteeredTime clock.Duration
	ReservedSlots   []slots.Token
	ReservedEvents  []uuid.UUID
	CreatedAt       time.Time
	Version         int64
}

// Clone returns a deep copy
func (u *User) Clone() *User {
	c := *u
	c.ReservedSlots = slices.Clone(u.ReservedSlots)
	c.ReservedEvents = slices.Clone(u.ReservedEvents)
	return &c
}

// IsAdmin reports whether the account holds the admin status
func (u *User) IsAdmin() bool {
	return u.Status == StatusAdmin
}

// SlotsFor returns the claimed tokens the user holds for an event
func (u *User) SlotsFor(eventID uuid.UUID) []slots.Token {
	var held []slots.Token
	for _, tok := range u.ReservedSlots {
		if tok.EventID == eventID {
			held = append(held, tok)
		}
	}
	return held
}

// AttendsEvent reports whether eventID is in ReservedEvents
func (u *User) AttendsEvent(eventID uuid.UUID) bool {
	return slices.Contains(u.ReservedEvents, eventID)
}

// Org is an organisation that can receive donations directly
type Org struct {
	ID                uuid.UUID
	Name              string
	ReceivedDonations decimal.Decimal
	CreatedAt         time.Time
	Version           int64
}

// Clone returns a copy
func (o *Org) Clone() *Org {
	c := *o
	return &c
}

// Principal is the authenticated caller as supplied by the identity provider
type Principal struct {
	UserID uuid.UUID
	Status Status
}

// IsAdmin reports whether the principal may perform administrative operations
func (p Principal) IsAdmin() bool {
	return p.Status == StatusAdmin
}
