// Package page defines the paged collection shape used by list endpoints.
package page

// Page mirrors the server's pageable response: a slice of content plus
// paging counters.
type Page[T any] struct {
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Size          int `json:"size"`
	Content       []T `json:"content"`
	Number        int `json:"number"`
}

// Empty returns a page with zeroed counters and empty, non-nil content.
func Empty[T any]() Page[T] {
	return Page[T]{Content: []T{}}
}
