package domain

// PaginationLinks are the first/last/prev/next page URLs of a list response.
type PaginationLinks struct {
	First *string `json:"first"`
	Last  *string `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

type PaginationLink struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

type PaginationMeta struct {
	CurrentPage int              `json:"current_page"`
	From        *int             `json:"from"`
	LastPage    int              `json:"last_page"`
	Links       []PaginationLink `json:"links,omitempty"`
	Path        *string          `json:"path"`
	PerPage     int              `json:"per_page"`
	To          *int             `json:"to"`
	Total       int              `json:"total"`
}

// PaginatedResponse is the envelope every list endpoint of the API returns.
type PaginatedResponse[T any] struct {
	Data  []T             `json:"data"`
	Links PaginationLinks `json:"links"`
	Meta  PaginationMeta  `json:"meta"`
}

// Normalize clamps the pagination meta so that 1 <= current_page <= last_page
// holds for whatever the server reported. An empty result still has one page.
func (p *PaginatedResponse[T]) Normalize() {
	if p.Data == nil {
		p.Data = []T{}
	}
	if p.Meta.LastPage < 1 {
		p.Meta.LastPage = 1
	}
	if p.Meta.CurrentPage < 1 {
		p.Meta.CurrentPage = 1
	}
	if p.Meta.CurrentPage > p.Meta.LastPage {
		p.Meta.CurrentPage = p.Meta.LastPage
	}
	if p.Meta.PerPage < 0 {
		p.Meta.PerPage = 0
	}
}

// Valid reports whether the envelope satisfies the pagination invariants.
func (p *PaginatedResponse[T]) Valid() bool {
	if p.Meta.LastPage < 1 || p.Meta.CurrentPage < 1 || p.Meta.CurrentPage > p.Meta.LastPage {
		return false
	}
	if p.Meta.PerPage > 0 && len(p.Data) > p.Meta.PerPage {
		return false
	}
	return true
}

// HasNext reports whether a page after the current one exists.
func (p *PaginatedResponse[T]) HasNext() bool {
	return p.Meta.CurrentPage < p.Meta.LastPage
}

func (p *PaginatedResponse[T]) HasPrev() bool {
	return p.Meta.CurrentPage > 1
}

// DataResponse is the `{data}` wrapper of single-entity endpoints.
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// MessageResponse is the `{message, data}` acknowledgement of mutations.
// Data is omitted by message-only acknowledgements.
type MessageResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}
