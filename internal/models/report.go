package models

import "time"

const (
	ReportTypeSex      = "SEX"
	ReportTypeDomestic = "DOMESTIC"
	ReportTypeOthers   = "OTHERS"
	ReportTypeEvent    = "EVENT"
	ReportTypeNews     = "NEWS"
)

// ReportTypes lists the categories in menu order.
var ReportTypes = []string{
	ReportTypeSex,
	ReportTypeDomestic,
	ReportTypeOthers,
	ReportTypeEvent,
	ReportTypeNews,
}

func IsReportType(s string) bool {
	for _, t := range ReportTypes {
		if t == s {
			return true
		}
	}
	return false
}

// Report is append-only. It is open while its reporter's IsReporting points at it.
type Report struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReporterID string    `gorm:"size:64;not null;index" json:"reporter_id"`
	Type       string    `gorm:"size:20;not null" json:"type"`
	CreatedAt  time.Time `json:"created_at"`
	Messages   []Message `gorm:"foreignKey:ReportID" json:"messages,omitempty"`
}
