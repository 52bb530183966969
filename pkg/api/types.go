package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/core/services"
	"github.com/teamaptiv/volunteer-hub/pkg/core/slots"
)

type eventResponse struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Date                string          `json:"date"`
	Window              string          `json:"window"`
	Location            string          `json:"location,omitempty"`
	Description         string          `json:"description,omitempty"`
	Active              bool            `json:"active"`
	Slots               []slots.Token   `json:"slots"`
	VolunteersNeeded    int             `json:"volunteers_needed"`
	VolunteersAttending int             `json:"volunteers_attending"`
	DonationsNeeded     decimal.Decimal `json:"donations_needed"`
	DonationsReceived   decimal.Decimal `json:"donations_received"`
}

func toEventResponse(e *model.Event) eventResponse {
	return eventResponse{
		ID:                  e.ID.String(),
		Name:                e.Name,
		Date:                e.Date.Format(slots.DateLayout),
		Window:              e.Window.Display(),
		Location:            e.Location,
		Description:         e.Description,
		Active:              e.Active,
		Slots:               e.Slots,
		VolunteersNeeded:    e.VolunteersNeeded,
		VolunteersAttending: e.VolunteersAttending,
		DonationsNeeded:     e.DonationsNeeded,
		DonationsReceived:   e.DonationsReceived,
	}
}

func toEventResponses(events []*model.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out
}

type userResponse struct {
	ID              string          `json:"id"`
	Username        string          `json:"username"`
	FirstName       string          `json:"first_name,omitempty"`
	LastName        string          `json:"last_name,omitempty"`
	Status          model.Status    `json:"status"`
	Active          bool            `json:"active"`
	GivenDonations  decimal.Decimal `json:"given_donations"`
	VolunteeredTime string          `json:"volunteered_time"`
	ReservedSlots   []slots.Token   `json:"reserved_slots"`
	ReservedEvents  []uuid.UUID     `json:"reserved_events"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:              u.ID.String(),
		Username:        u.Username,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Status:          u.Status,
		Active:          u.Active,
		GivenDonations:  u.GivenDonations,
		VolunteeredTime: u.VolunteeredTime.String(),
		ReservedSlots:   u.ReservedSlots,
		ReservedEvents:  u.ReservedEvents,
	}
}

// Dates are "2006-01-02"; times are 24-hour "H:MM"
type createEventRequest struct {
	Name           string          `json:"name"`
	Date           string          `json:"date"`
	Start          string          `json:"start"`
	End            string          `json:"end"`
	Location       string          `json:"location"`
	Description    string          `json:"description"`
	Volunteers     int             `json:"volunteers"`
	DonationTarget decimal.Decimal `json:"donation_target"`
}

func (req createEventRequest) toInput(requireDate bool) (services.CreateEventInput, error) {
	input := services.CreateEventInput{
		Name:           req.Name,
		Location:       req.Location,
		Description:    req.Description,
		VolunteerCount: req.Volunteers,
		DonationTarget: req.DonationTarget,
	}

	var err error
	if requireDate || req.Date != "" {
		if input.Date, err = parseDate(req.Date); err != nil {
			return input, err
		}
	}
	if input.Start, err = clock.ParseMilitary(req.Start); err != nil {
		return input, fmt.Errorf("start: %w", err)
	}
	if input.End, err = clock.ParseMilitary(req.End); err != nil {
		return input, fmt.Errorf("end: %w", err)
	}
	return input, nil
}

type createSeriesRequest struct {
	createEventRequest
	RRule string `json:"rrule"`
	From  string `json:"from"`
	Until string `json:"until"`
}

type reserveRequest struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

type cancelRequest struct {
	Slots     []string `json:"slots"`
	Remaining int      `json:"remaining"`
}

type reservationResponse struct {
	Slots           []slots.Token `json:"slots"`
	VolunteeredTime string        `json:"volunteered_time"`
}

type donationRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type donationResponse struct {
	Status         model.Status    `json:"status"`
	GivenDonations decimal.Decimal `json:"given_donations"`
}

type registerRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type orgRequest struct {
	Name string `json:"name"`
}

type orgResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	ReceivedDonations decimal.Decimal `json:"received_donations"`
}

type profileResponse struct {
	User   userResponse    `json:"user"`
	Events []eventResponse `json:"events"`
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", model.ErrFormat, s)
	}
	return d, nil
}
