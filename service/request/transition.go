package requestsvc

import (
	"strings"

	"kitabu/model"
	"kitabu/util/errcode"
)

type actor int

const (
	byAdmin actor = iota
	byOwner
)

type edge struct {
	from, to model.RequestStatus
}

type rule struct {
	by      actor
	actions []model.RequestAction
}

func (r rule) allows(a model.RequestAction) bool {
	for _, x := range r.actions {
		if x == a {
			return true
		}
	}
	return false
}

var both = []model.RequestAction{model.ActionPurchase, model.ActionBorrow}

// lattice lists every permitted move. Anything absent is an invalid transition.
var lattice = map[edge]rule{
	{model.RequestPending, model.RequestApproved}:       {byAdmin, both},
	{model.RequestPending, model.RequestDeclined}:       {byAdmin, both},
	{model.RequestApproved, model.RequestPurchased}:     {byOwner, []model.RequestAction{model.ActionPurchase}},
	{model.RequestApproved, model.RequestBorrowed}:      {byOwner, []model.RequestAction{model.ActionBorrow}},
	{model.RequestBorrowed, model.RequestReturnPending}: {byOwner, []model.RequestAction{model.ActionBorrow}},
	{model.RequestReturnPending, model.RequestReturned}: {byAdmin, []model.RequestAction{model.ActionBorrow}},
}

// Check decides whether caller c may move p to status to.
func Check(p *model.PendingRequest, to model.RequestStatus, c model.Caller) error {
	if !c.IsAdmin() && !c.Owns(p.UserID) {
		return errcode.Newf(errcode.Forbidden, "not your request")
	}
	r, ok := lattice[edge{p.Status, to}]
	if !ok || !r.allows(p.Action) {
		return errcode.Newf(errcode.InvalidTransition,
			"cannot move %s request from %s to %s", p.Action, p.Status, to)
	}
	switch r.by {
	case byAdmin:
		if !c.IsAdmin() {
			return errcode.Newf(errcode.Forbidden, "only an admin may %s a request", verb(to))
		}
	case byOwner:
		if !c.Owns(p.UserID) {
			return errcode.Newf(errcode.Forbidden, "only the requester may mark it %s", to)
		}
	}
	return nil
}

func verb(s model.RequestStatus) string {
	switch s {
	case model.RequestApproved:
		return "approve"
	case model.RequestDeclined:
		return "decline"
	default:
		return "complete"
	}
}

// activityLabel is the action recorded in the activity log, e.g. "Return_pending".
func activityLabel(s model.RequestStatus) string {
	v := string(s)
	if v == "" {
		return v
	}
	return strings.ToUpper(v[:1]) + v[1:]
}
