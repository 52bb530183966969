package api

import (
	"net/http"

	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/core/services"
)

func (a *API) ensureOrg(w http.ResponseWriter, r *http.Request) {
	var req orgRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, services.OpEnsureOrg, err)
		return
	}
	if !principalFrom(r.Context()).IsAdmin() {
		a.fail(w, services.OpEnsureOrg, services.ErrAdminOnly)
		return
	}

	org, err := a.svc.EnsureOrg(r.Context(), req.Name)
	if err != nil {
		a.fail(w, services.OpEnsureOrg, err)
		return
	}
	a.ok(w, http.StatusOK, services.NotificationFor(services.OpEnsureOrg, nil), toOrgResponse(org))
}

func (a *API) donateToOrg(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, services.OpDonateToOrg, err)
		return
	}
	var req donationRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, services.OpDonateToOrg, err)
		return
	}

	res, err := a.svc.DonateToOrg(r.Context(), principalFrom(r.Context()), id, req.Amount)
	if err != nil {
		a.fail(w, services.OpDonateToOrg, err)
		return
	}
	a.ok(w, http.StatusOK, res.Notification, donationResponse{Status: res.Status, GivenDonations: res.GivenDonations})
}

func toOrgResponse(o *model.Org) orgResponse {
	return orgResponse{ID: o.ID.String(), Name: o.Name, ReceivedDonations: o.ReceivedDonations}
}
