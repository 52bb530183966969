package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/core/services"
)

func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, services.OpCreateEvent, err)
		return
	}
	input, err := req.toInput(true)
	if err != nil {
		a.fail(w, services.OpCreateEvent, err)
		return
	}

	res, err := a.svc.CreateEvent(r.Context(), principalFrom(r.Context()), input)
	if err != nil {
		a.fail(w, services.OpCreateEvent, err)
		return
	}
	a.ok(w, http.StatusCreated, res.Notification, toEventResponse(res.Event))
}

func (a *API) createEventSeries(w http.ResponseWriter, r *http.Request) {
	var req createSeriesRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, services.OpCreateSeries, err)
		return
	}
	template, err := req.toInput(false)
	if err != nil {
		a.fail(w, services.OpCreateSeries, err)
		return
	}
	from, err := parseDate(req.From)
	if err != nil {
		a.fail(w, services.OpCreateSeries, err)
		return
	}
	until, err := parseDate(req.Until)
	if err != nil {
		a.fail(w, services.OpCreateSeries, err)
		return
	}

	res, err := a.svc.CreateEventSeries(r.Context(), principalFrom(r.Context()), services.SeriesInput{
		Template: template,
		RRule:    req.RRule,
		From:     from,
		Until:    until,
	})
	if err != nil {
		a.fail(w, services.OpCreateSeries, err)
		return
	}
	a.ok(w, http.StatusCreated, res.Notification, toEventResponses(res.Events))
}

func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	filter := services.ListEventsFilter{ActiveOnly: r.URL.Query().Get("active") == "true"}
	if from := r.URL.Query().Get("from"); from != "" {
		d, err := parseDate(from)
		if err != nil {
			a.fail(w, services.OpViewEvents, err)
			return
		}
		filter.From = d
	}

	events, err := a.svc.ListEvents(r.Context(), filter)
	if err != nil {
		a.fail(w, services.OpViewEvents, err)
		return
	}
	a.ok(w, http.StatusOK, services.Notification{}, toEventResponses(events))
}

func (a *API) getEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, services.OpViewEvents, err)
		return
	}
	event, err := a.svc.GetEvent(r.Context(), id)
	if err != nil {
		a.fail(w, services.OpViewEvents, err)
		return
	}
	a.ok(w, http.StatusOK, services.Notification{}, toEventResponse(event))
}

func (a *API) cancelEvent(w http.ResponseWriter, r *http.Request) {
	a.setEventActive(w, r, services.OpCancelEvent, a.svc.CancelEvent)
}

func (a *API) rescheduleEvent(w http.ResponseWriter, r *http.Request) {
	a.setEventActive(w, r, services.OpRescheduleEvent, a.svc.RescheduleEvent)
}

func (a *API) setEventActive(w http.ResponseWriter, r *http.Request, op services.Operation, apply func(ctx context.Context, p model.Principal, id uuid.UUID) (*services.EventResult, error)) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, op, err)
		return
	}
	res, err := apply(r.Context(), principalFrom(r.Context()), id)
	if err != nil {
		a.fail(w, op, err)
		return
	}
	a.ok(w, http.StatusOK, res.Notification, toEventResponse(res.Event))
}

func (a *API) reserveSlots(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, services.OpReserveSlots, err)
		return
	}
	var req reserveRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, services.OpReserveSlots, err)
		return
	}
	input := services.ReserveInput{EventID: id, Tokens: req.Slots}
	if req.Date != "" {
		if input.Date, err = parseDate(req.Date); err != nil {
			a.fail(w, services.OpReserveSlots, err)
			return
		}
	}

	res, err := a.svc.ReserveSlots(r.Context(), principalFrom(r.Context()), input)
	if err != nil {
		a.fail(w, services.OpReserveSlots, err)
		return
	}
	a.ok(w, http.StatusOK, res.Notification, reservationResponse{
		Slots:           res.Tokens,
		VolunteeredTime: res.VolunteeredTime.String(),
	})
}

func (a *API) cancelSlots(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, services.OpCancelSlots, err)
		return
	}
	var req cancelRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, services.OpCancelSlots, err)
		return
	}

	res, err := a.svc.CancelSlots(r.Context(), principalFrom(r.Context()), services.CancelInput{
		EventID:        id,
		Tokens:         req.Slots,
		RemainingCount: req.Remaining,
	})
	if err != nil {
		a.fail(w, services.OpCancelSlots, err)
		return
	}
	a.ok(w, http.StatusOK, res.Notification, reservationResponse{
		Slots:           res.Tokens,
		VolunteeredTime: res.VolunteeredTime.String(),
	})
}

func (a *API) donate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, services.OpDonate, err)
		return
	}
	var req donationRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, services.OpDonate, err)
		return
	}

	res, err := a.svc.Donate(r.Context(), principalFrom(r.Context()), id, req.Amount)
	if err != nil {
		a.fail(w, services.OpDonate, err)
		return
	}
	a.ok(w, http.StatusOK, res.Notification, donationResponse{Status: res.Status, GivenDonations: res.GivenDonations})
}

// previewSlots shows how a window would be split: ?start=9:00&end=12:00&volunteers=3
func (a *API) previewSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := clock.ParseMilitary(q.Get("start"))
	if err != nil {
		a.fail(w, services.OpViewEvents, err)
		return
	}
	end, err := clock.ParseMilitary(q.Get("end"))
	if err != nil {
		a.fail(w, services.OpViewEvents, err)
		return
	}
	count, err := strconv.Atoi(q.Get("volunteers"))
	if err != nil {
		a.fail(w, services.OpViewEvents, errInvalidBody)
		return
	}

	windows, err := services.PreviewSlots(start, end, count)
	if err != nil {
		a.fail(w, services.OpViewEvents, err)
		return
	}
	out := make([]string, 0, len(windows))
	for _, win := range windows {
		out = append(out, win.Display())
	}
	a.ok(w, http.StatusOK, services.Notification{}, out)
}
