package models

import "time"

// Module is a teaching unit grouping ordered courses.
type Module struct {
	ID        int64     `db:"id" json:"id"`
	CompanyID int64     `db:"company_id" json:"company_id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Status    int       `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Course is a single taught subject that modules reference in order.
type Course struct {
	ID        int64     `db:"id" json:"id"`
	CompanyID int64     `db:"company_id" json:"company_id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Status    int       `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// OwnedRef is the minimal projection the assignment engine needs to validate
// that a referenced entity exists and belongs to the caller's school.
type OwnedRef struct {
	ID        int64 `db:"id"`
	CompanyID int64 `db:"company_id"`
}

// CatalogFilter describes query params for module/course listings.
type CatalogFilter struct {
	Search    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// CourseExportRow backs the course catalog CSV export.
type CourseExportRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Code        string `db:"code"`
	ModuleCount int    `db:"module_count"`
}
