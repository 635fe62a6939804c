package models

import "time"

// PageView stores aggregated page view counts per day and path.
// Date is an ISO day (YYYY-MM-DD) so it compares the same way on every driver.
type PageView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      string    `gorm:"index:idx_pv_date_path,unique;size:10;not null" json:"date"`
	Path      string    `gorm:"index;index:idx_pv_date_path,unique;size:255;not null" json:"path"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Day formats t as the ISO day it falls on in UTC.
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
