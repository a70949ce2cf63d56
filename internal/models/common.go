package models

// Row status sentinels shared by all soft-deletable entities.
const (
	StatusDeleted  = -2
	StatusInactive = -1
	StatusDraft    = 0
	StatusActive   = 1
	StatusArchived = 2
)

// ListMeta contains pagination metadata returned in list responses.
type ListMeta struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// NewListMeta derives the full metadata block from page, limit and total count.
func NewListMeta(page, limit, total int) *ListMeta {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return &ListMeta{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1 && total > 0,
	}
}
