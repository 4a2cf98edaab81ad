package store

import (
	"fmt"
	"strings"
	"time"
)

// OrderTerm is one column of a list ordering.
type OrderTerm struct {
	Field string
	Desc  bool
}

// UserFilter narrows and orders a user listing. Nil pointers and empty
// slices mean "no constraint".
type UserFilter struct {
	IsStaff     *bool
	IsActive    *bool
	IsSuperuser *bool

	// DateJoinedFrom and DateJoinedTo are inclusive bounds.
	DateJoinedFrom *time.Time
	DateJoinedTo   *time.Time

	// Search terms must each match first_name or last_name, case-insensitively.
	Search []string

	Ordering []OrderTerm

	// Limit 0 returns every matching row.
	Limit  int
	Offset int
}

// orderableColumns maps client-visible ordering fields to columns.
var orderableColumns = map[string]string{
	"id":          "id",
	"username":    "username",
	"first_name":  "first_name",
	"last_name":   "last_name",
	"email":       "email",
	"last_login":  "last_login",
	"date_joined": "date_joined",
}

// DefaultOrdering lists newest accounts first.
var DefaultOrdering = []OrderTerm{{Field: "id", Desc: true}}

// ParseOrdering reads a comma-separated ordering parameter such as
// "-date_joined,username". Unknown fields are dropped; an empty result falls
// back to DefaultOrdering.
func ParseOrdering(raw string) []OrderTerm {
	var terms []OrderTerm
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		field := strings.TrimPrefix(part, "-")
		if _, ok := orderableColumns[field]; !ok || seen[field] {
			continue
		}
		seen[field] = true
		terms = append(terms, OrderTerm{Field: field, Desc: desc})
	}
	if len(terms) == 0 {
		return DefaultOrdering
	}
	return terms
}

// SplitSearch breaks a search parameter into terms on whitespace and commas.
func SplitSearch(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// whereClause renders the filter as a SQL WHERE clause with $n placeholders.
func (f UserFilter) whereClause() (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.IsStaff != nil {
		conds = append(conds, "is_staff = "+arg(*f.IsStaff))
	}
	if f.IsActive != nil {
		conds = append(conds, "is_active = "+arg(*f.IsActive))
	}
	if f.IsSuperuser != nil {
		conds = append(conds, "is_superuser = "+arg(*f.IsSuperuser))
	}
	if f.DateJoinedFrom != nil {
		conds = append(conds, "date_joined >= "+arg(*f.DateJoinedFrom))
	}
	if f.DateJoinedTo != nil {
		conds = append(conds, "date_joined <= "+arg(*f.DateJoinedTo))
	}
	for _, term := range f.Search {
		p := arg("%" + escapeLike(term) + "%")
		conds = append(conds, fmt.Sprintf("(first_name ILIKE %s OR last_name ILIKE %s)", p, p))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (f UserFilter) orderClause() string {
	terms := f.Ordering
	if len(terms) == 0 {
		terms = DefaultOrdering
	}

	parts := make([]string, 0, len(terms)+1)
	hasID := false
	for _, term := range terms {
		column, ok := orderableColumns[term.Field]
		if !ok {
			continue
		}
		if column == "id" {
			hasID = true
		}
		if term.Desc {
			parts = append(parts, column+" DESC")
		} else {
			parts = append(parts, column+" ASC")
		}
	}
	if !hasID {
		parts = append(parts, "id ASC")
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
