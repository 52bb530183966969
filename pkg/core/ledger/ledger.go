package ledger

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/core/slots"
)

// ErrSlotUnavailable is returned when a chosen increment is no longer in the event's pool
var ErrSlotUnavailable = fmt.Errorf("%w: slot no longer available", model.ErrNotFound)

// ErrSlotNotHeld is returned when cancelling an increment the user does not hold
var ErrSlotNotHeld = fmt.Errorf("%w: slot not held by user", model.ErrNotFound)

// ErrInvalidAmount is returned for zero or negative donations
var ErrInvalidAmount = fmt.Errorf("%w: donation amount must be positive", model.ErrFormat)

// ReserveResult describes a successful reservation
type ReserveResult struct {
	// Claimed are the dated tokens now held by the user
	Claimed []slots.Token

	// Added is the volunteered time added to the user
	Added clock.Duration

	// FirstForEvent is true when the event was newly added to the user's reserved events
	FirstForEvent bool
}

// CancelResult describes a successful cancellation
type CancelResult struct {
	// Released are the undated tokens returned to the event pool
	Released []slots.Token

	// Removed is the volunteered time taken off the user
	Removed clock.Duration

	// LeftEvent is true when the user no longer holds any increment of the event
	LeftEvent bool

	// HintMismatch is set when the caller's remaining-count hint disagrees with
	// the number of increments the user actually still holds
	HintMismatch bool

	// NegativeTime is set when the user's volunteered time dropped below zero
	NegativeTime bool
}

// Reserve moves the chosen increments from the event pool to the user.
//
// Every check runs before anything is mutated, so on error user and event are unchanged.
func Reserve(user *model.User, event *model.Event, chosen []slots.Token) (*ReserveResult, error) {
	if len(chosen) == 0 {
		return nil, model.ErrNoSelection
	}

	// Validate the whole selection before touching state
	candidates := make([]slots.Token, 0, len(chosen))
	for _, tok := range chosen {
		if tok.EventID != event.ID {
			return nil, fmt.Errorf("slot %s belongs to another event: %w", tok, ErrSlotUnavailable)
		}
		if event.HasSlot(tok) < 0 {
			return nil, fmt.Errorf("slot %s: %w", tok.Window.Display(), ErrSlotUnavailable)
		}
		if slices.ContainsFunc(candidates, tok.SameSlot) {
			return nil, fmt.Errorf("slot %s selected twice: %w", tok.Window.Display(), model.ErrConflict)
		}

		// Against the user's holdings and the rest of this selection
		existing := append(slices.Clone(user.ReservedSlots), candidates...)
		if offender, found := slots.FirstConflict(event.Date, tok.Window, existing); found {
			return nil, fmt.Errorf("slot %s overlaps %s: %w", tok.Window.Display(), offender, model.ErrConflict)
		}

		candidates = append(candidates, tok.Claim(event.Date))
	}

	result := &ReserveResult{}
	for _, claimed := range candidates {
		idx := event.HasSlot(claimed)
		event.Slots = slices.Delete(event.Slots, idx, idx+1)
		user.ReservedSlots = append(user.ReservedSlots, claimed)

		event.VolunteersNeeded--
		event.VolunteersAttending++

		d := claimed.Window.Duration()
		user.VolunteeredTime = clock.Add(user.VolunteeredTime, d)
		result.Added = clock.Add(result.Added, d)
		result.Claimed = append(result.Claimed, claimed)
	}

	if !user.AttendsEvent(event.ID) {
		user.ReservedEvents = append(user.ReservedEvents, event.ID)
		result.FirstForEvent = true
	}

	return result, nil
}

// Cancel returns the chosen increments from the user to the event pool.
//
// remainingHint is the caller's count of increments the user holds for the event
// before cancelling. The event is dropped from the user's reserved events once no
// increment for it remains; the hint is only compared against that outcome.
func Cancel(user *model.User, event *model.Event, chosen []slots.Token, remainingHint int) (*CancelResult, error) {
	if len(chosen) == 0 {
		return nil, model.ErrNoSelection
	}

	indices := make([]int, 0, len(chosen))
	for _, tok := range chosen {
		idx := slices.IndexFunc(user.ReservedSlots, func(held slots.Token) bool {
			return held.SameSlot(tok) && held.Claimed()
		})
		if idx < 0 {
			return nil, fmt.Errorf("slot %s: %w", tok.Window.Display(), ErrSlotNotHeld)
		}
		if tok.EventID != event.ID {
			return nil, fmt.Errorf("slot %s belongs to another event: %w", tok, ErrSlotNotHeld)
		}
		if slices.Contains(indices, idx) {
			return nil, fmt.Errorf("slot %s selected twice: %w", tok.Window.Display(), model.ErrConflict)
		}
		indices = append(indices, idx)
	}

	result := &CancelResult{}
	released := make([]slots.Token, 0, len(indices))
	for _, idx := range indices {
		held := user.ReservedSlots[idx]
		released = append(released, held.Release())

		d := held.Window.Duration()
		user.VolunteeredTime = clock.Sub(user.VolunteeredTime, d)
		result.Removed = clock.Add(result.Removed, d)

		event.VolunteersNeeded++
		event.VolunteersAttending--
		remainingHint--
	}

	// Delete from the highest index down so earlier indices stay valid
	slices.Sort(indices)
	for i := len(indices) - 1; i >= 0; i-- {
		user.ReservedSlots = slices.Delete(user.ReservedSlots, indices[i], indices[i]+1)
	}
	event.Slots = append(event.Slots, released...)
	result.Released = released

	stillHeld := len(user.SlotsFor(event.ID))
	if stillHeld == 0 {
		user.ReservedEvents = slices.DeleteFunc(user.ReservedEvents, func(id uuid.UUID) bool {
			return id == event.ID
		})
		result.LeftEvent = true
	}
	result.HintMismatch = remainingHint != stillHeld
	result.NegativeTime = user.VolunteeredTime.IsNegative()

	return result, nil
}

// Donate records a donation from a user towards an event
func Donate(user *model.User, event *model.Event, amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	recordGift(user, amount)
	event.DonationsNeeded = event.DonationsNeeded.Sub(amount)
	event.DonationsReceived = event.DonationsReceived.Add(amount)
	return nil
}

// DonateToOrg records a donation made directly to an organisation
func DonateToOrg(user *model.User, org *model.Org, amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	recordGift(user, amount)
	org.ReceivedDonations = org.ReceivedDonations.Add(amount)
	return nil
}

// CancelEvent marks the event inactive. Reservations are kept.
func CancelEvent(event *model.Event) {
	event.Active = false
}

// RescheduleEvent marks a cancelled event active again
func RescheduleEvent(event *model.Event) {
	event.Active = true
}

// SetAccountActive activates or deactivates a user account
func SetAccountActive(user *model.User, active bool) {
	user.Active = active
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidAmount, amount)
	}
	return nil
}

// A donating volunteer becomes a donor; admins keep their status
func recordGift(user *model.User, amount decimal.Decimal) {
	user.GivenDonations = user.GivenDonations.Add(amount)
	if user.Status == model.StatusVolunteer {
		user.Status = model.StatusDonor
	}
}
