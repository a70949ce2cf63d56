package models

import "time"

// ModuleCourse is one row of the module↔course join table. The sequence
// position (tri) is assigned when the link is created and is never reassigned
// when sibling rows are removed, so gaps are expected.
type ModuleCourse struct {
	ID          int64     `db:"id" json:"id"`
	ModuleID    int64     `db:"module_id" json:"module_id"`
	CourseID    int64     `db:"course_id" json:"course_id"`
	Tri         int       `db:"tri" json:"tri"`
	Volume      *float64  `db:"volume" json:"volume,omitempty"`
	Coefficient *float64  `db:"coefficient" json:"coefficient,omitempty"`
	Status      int       `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// AssignedItem is one linked child (course or module, depending on which side
// of the relation is queried) joined with its ordering attributes.
type AssignedItem struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Code        string    `db:"code" json:"code"`
	Tri         int       `db:"tri" json:"tri"`
	Volume      *float64  `db:"volume" json:"volume,omitempty"`
	Coefficient *float64  `db:"coefficient" json:"coefficient,omitempty"`
	AssignedAt  time.Time `db:"assigned_at" json:"assigned_at"`
}

// CatalogItem is an eligible-but-unlinked child in the assignment board.
type CatalogItem struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AssignmentBoard reconstructs, for one parent, the ordered list of linked
// children plus the complement of eligible children not yet linked.
type AssignmentBoard struct {
	Assigned   []AssignedItem `json:"assigned"`
	Unassigned []CatalogItem  `json:"unassigned"`
}

// BatchResult reports the requested size of a batch operation. The count
// mirrors the request (adds after de-duplication plus removals), not the rows
// actually touched; idempotent retries report the same number.
type BatchResult struct {
	Affected int `json:"affected"`
}
