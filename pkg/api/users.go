package api

import (
	"net/http"

	"github.com/teamaptiv/volunteer-hub/pkg/core/services"
)

func (a *API) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, services.OpRegisterUser, err)
		return
	}

	res, err := a.svc.RegisterUser(r.Context(), services.RegisterInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		a.fail(w, services.OpRegisterUser, err)
		return
	}
	a.ok(w, http.StatusCreated, res.Notification, toUserResponse(res.User))
}

func (a *API) getProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, services.OpViewProfile, err)
		return
	}

	profile, err := a.svc.GetUserProfile(r.Context(), principalFrom(r.Context()), id)
	if err != nil {
		a.fail(w, services.OpViewProfile, err)
		return
	}
	a.ok(w, http.StatusOK, services.Notification{}, profileResponse{
		User:   toUserResponse(profile.User),
		Events: toEventResponses(profile.Events),
	})
}

func (a *API) deactivateUser(w http.ResponseWriter, r *http.Request) {
	a.setAccountActive(w, r, services.OpDeactivateUser, false)
}

func (a *API) activateUser(w http.ResponseWriter, r *http.Request) {
	a.setAccountActive(w, r, services.OpActivateUser, true)
}

func (a *API) setAccountActive(w http.ResponseWriter, r *http.Request, op services.Operation, active bool) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, op, err)
		return
	}

	res, err := a.svc.SetAccountActive(r.Context(), principalFrom(r.Context()), id, active)
	if err != nil {
		a.fail(w, op, err)
		return
	}
	a.ok(w, http.StatusOK, res.Notification, toUserResponse(res.User))
}
