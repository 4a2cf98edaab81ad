package handlers

import (
	"net/http"

	"github.com/jjudge-oj/userapi/types"
)

// Allow reports whether actor may perform method on target. target is nil
// for collection requests.
//
// Creating users is reserved to superusers. Reads are open to everyone,
// anonymous actors included. Object writes are allowed to superusers and to
// the account's owner.
func Allow(actor Actor, method string, target *types.User) bool {
	if method == http.MethodPost {
		return actor.IsSuperuser
	}
	if isSafeMethod(method) || target == nil {
		return true
	}
	if !actor.Authenticated {
		return false
	}
	return actor.IsSuperuser || actor.ID == target.ID
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// writeDenied answers 401 for anonymous actors and 403 for everyone else.
func writeDenied(w http.ResponseWriter, actor Actor) {
	if !actor.Authenticated {
		writeError(w, http.StatusUnauthorized, detailNotAuthenticated)
		return
	}
	writeError(w, http.StatusForbidden, detailPermission)
}
