package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	pageQueryParam = "page"
	lastPageString = "last"
)

var errInvalidPage = errors.New("invalid page")

// Paginator splits list results into numbered pages.
type Paginator struct {
	// PageSize is the default page size. Zero disables pagination.
	PageSize int
	// PageSizeQueryParam lets clients pick a page size; empty disables it.
	PageSizeQueryParam string
	// MaxPageSize caps a client-chosen page size; zero means no cap.
	MaxPageSize int
}

// Page is one page of results with links to its neighbours.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Window is the slice of a result set selected by a request.
type Window struct {
	Number int
	Size   int
	Count  int
}

func (p Paginator) Enabled() bool {
	return p.PageSize > 0
}

// pageSize honours the client's page size parameter when it is a positive
// integer, capped at MaxPageSize. Anything else falls back to PageSize.
func (p Paginator) pageSize(r *http.Request) int {
	if p.PageSizeQueryParam == "" {
		return p.PageSize
	}
	raw := strings.TrimSpace(r.URL.Query().Get(p.PageSizeQueryParam))
	size, err := strconv.Atoi(raw)
	if err != nil || size < 1 {
		return p.PageSize
	}
	if p.MaxPageSize > 0 && size > p.MaxPageSize {
		return p.MaxPageSize
	}
	return size
}

// Window resolves the requested page against count matching rows. An empty
// result set still has a first page.
func (p Paginator) Window(r *http.Request, count int) (Window, error) {
	size := p.pageSize(r)
	pages := (count + size - 1) / size
	if pages < 1 {
		pages = 1
	}

	number := 1
	raw := strings.TrimSpace(r.URL.Query().Get(pageQueryParam))
	switch {
	case raw == "":
	case raw == lastPageString:
		number = pages
	default:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > pages {
			return Window{}, errInvalidPage
		}
		number = n
	}
	return Window{Number: number, Size: size, Count: count}, nil
}

func (w Window) Offset() int {
	return (w.Number - 1) * w.Size
}

func (w Window) hasNext() bool {
	return w.Number*w.Size < w.Count
}

// NewPage wraps results with absolute links to the neighbouring pages.
func NewPage[T any](r *http.Request, w Window, results []T) Page[T] {
	page := Page[T]{Count: w.Count, Results: results}
	if w.hasNext() {
		next := pageURL(r, w.Number+1)
		page.Next = &next
	}
	if w.Number > 1 {
		prev := pageURL(r, w.Number-1)
		page.Previous = &prev
	}
	return page
}

// pageURL rebuilds the request URL pointing at page number. Page 1 is
// addressed by dropping the parameter.
func pageURL(r *http.Request, number int) string {
	u := url.URL{
		Scheme: "http",
		Host:   r.Host,
		Path:   r.URL.Path,
	}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		u.Scheme = proto
	}

	query := r.URL.Query()
	if number == 1 {
		query.Del(pageQueryParam)
	} else {
		query.Set(pageQueryParam, strconv.Itoa(number))
	}
	u.RawQuery = query.Encode()
	return u.String()
}
