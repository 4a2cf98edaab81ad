package handlers

import (
	"net/http"
	"testing"

	"github.com/jjudge-oj/userapi/types"
	"github.com/stretchr/testify/assert"
)

func TestAllow(t *testing.T) {
	anonymous := Actor{}
	regular := Actor{ID: 2, Authenticated: true}
	staff := Actor{ID: 3, IsStaff: true, Authenticated: true}
	super := Actor{ID: 1, IsStaff: true, IsSuperuser: true, Authenticated: true}
	own := &types.User{ID: 2}
	other := &types.User{ID: 5}

	tests := []struct {
		name   string
		actor  Actor
		method string
		target *types.User
		want   bool
	}{
		{"anonymous create", anonymous, http.MethodPost, nil, false},
		{"regular create", regular, http.MethodPost, nil, false},
		{"staff create", staff, http.MethodPost, nil, false},
		{"superuser create", super, http.MethodPost, nil, true},
		{"anonymous list", anonymous, http.MethodGet, nil, true},
		{"anonymous retrieve", anonymous, http.MethodGet, other, true},
		{"anonymous head", anonymous, http.MethodHead, other, true},
		{"anonymous options", anonymous, http.MethodOptions, other, true},
		{"anonymous update", anonymous, http.MethodPut, other, false},
		{"anonymous delete", anonymous, http.MethodDelete, other, false},
		{"regular update self", regular, http.MethodPut, own, true},
		{"regular patch self", regular, http.MethodPatch, own, true},
		{"regular delete self", regular, http.MethodDelete, own, true},
		{"regular update other", regular, http.MethodPatch, other, false},
		{"staff update other", staff, http.MethodPut, other, false},
		{"superuser update other", super, http.MethodPut, other, true},
		{"superuser delete other", super, http.MethodDelete, other, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.actor, tt.method, tt.target))
		})
	}
}

func TestAnonymousNeverMatchesIDZero(t *testing.T) {
	assert.False(t, Allow(Actor{}, http.MethodDelete, &types.User{ID: 0}))
}
