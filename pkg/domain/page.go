package domain

// Page is the offset-paginated envelope returned by list endpoints.
// Number is zero-indexed.
type Page[T any] struct {
	Content          []T  `json:"content"`
	Number           int  `json:"number"`
	Size             int  `json:"size"`
	TotalPages       int  `json:"totalPages"`
	TotalElements    int  `json:"totalElements"`
	NumberOfElements int  `json:"numberOfElements"`
	First            bool `json:"first"`
	Last             bool `json:"last"`
	Empty            bool `json:"empty"`
}
