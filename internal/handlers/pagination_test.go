package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginatorWindow(t *testing.T) {
	p := Paginator{PageSize: 10, PageSizeQueryParam: "page_size", MaxPageSize: 25}

	tests := []struct {
		name    string
		target  string
		count   int
		want    Window
		wantErr bool
	}{
		{"default", "/users/", 42, Window{Number: 1, Size: 10, Count: 42}, false},
		{"explicit page", "/users/?page=3", 42, Window{Number: 3, Size: 10, Count: 42}, false},
		{"last page", "/users/?page=last", 42, Window{Number: 5, Size: 10, Count: 42}, false},
		{"empty first page", "/users/?page=1", 0, Window{Number: 1, Size: 10, Count: 0}, false},
		{"empty last page", "/users/?page=last", 0, Window{Number: 1, Size: 10, Count: 0}, false},
		{"client size", "/users/?page_size=5", 42, Window{Number: 1, Size: 5, Count: 42}, false},
		{"capped size", "/users/?page_size=500", 42, Window{Number: 1, Size: 25, Count: 42}, false},
		{"bad size falls back", "/users/?page_size=-1", 42, Window{Number: 1, Size: 10, Count: 42}, false},
		{"past the end", "/users/?page=6", 42, Window{}, true},
		{"zero", "/users/?page=0", 42, Window{}, true},
		{"not a number", "/users/?page=two", 42, Window{}, true},
		{"second page of nothing", "/users/?page=2", 0, Window{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Window(httptest.NewRequest("GET", tt.target, nil), tt.count)
			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidPage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaginatorIgnoresSizeParamWhenUnset(t *testing.T) {
	p := Paginator{PageSize: 10}
	got, err := p.Window(httptest.NewRequest("GET", "/users/?page_size=2", nil), 30)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Size)
	assert.True(t, p.Enabled())
	assert.False(t, Paginator{}.Enabled())
}

func TestNewPageLinks(t *testing.T) {
	r := httptest.NewRequest("GET", "/users/?page=2&search=ann&page_size=2", nil)
	page := NewPage(r, Window{Number: 2, Size: 2, Count: 5}, []int{3, 4})

	require.NotNil(t, page.Next)
	assert.Equal(t, "http://example.com/users/?page=3&page_size=2&search=ann", *page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://example.com/users/?page_size=2&search=ann", *page.Previous)

	r.Header.Set("X-Forwarded-Proto", "https")
	last := NewPage(r, Window{Number: 3, Size: 2, Count: 5}, []int{5})
	assert.Nil(t, last.Next)
	require.NotNil(t, last.Previous)
	assert.Equal(t, "https://example.com/users/?page=2&page_size=2&search=ann", *last.Previous)

	only := NewPage(r, Window{Number: 1, Size: 2, Count: 2}, []int{1, 2})
	assert.Nil(t, only.Next)
	assert.Nil(t, only.Previous)
}
