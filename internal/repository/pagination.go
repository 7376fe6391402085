package repository

// Page describes limit/offset pagination input.
type Page struct {
	Limit  int
	Offset int
}

// PageResult wraps a page of items with the total row count for the query.
type PageResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
