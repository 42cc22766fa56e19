package models

import "time"

// ServiceKind represents the category of a published service.
type ServiceKind string

const (
	// ServiceKindAnalysis is an analysis service.
	ServiceKindAnalysis ServiceKind = "analysis"
	// ServiceKindConsultancy is a consultancy service.
	ServiceKindConsultancy ServiceKind = "consultancy"
	// ServiceKindDevelopment is a development service.
	ServiceKindDevelopment ServiceKind = "development"
)

// Service represents a service published by an institution.
// Service requests always target an existing, enabled service; the owning
// institution of a request is derived from the service, never supplied by
// the requester.
type Service struct {
	// ID is the unique identifier for the service.
	ID uint64 `gorm:"primaryKey"`
	// Name is the display name of the service.
	Name string `gorm:"size:100;not null"`
	// Description is a free-text description of the service.
	Description string `gorm:"size:512"`
	// Keywords are comma-separated discovery keywords.
	Keywords string `gorm:"size:255"`
	// Kind is the service category (analysis, consultancy, development).
	Kind ServiceKind `gorm:"type:varchar(20);not null"`
	// Enabled indicates whether the service accepts new requests.
	Enabled bool
	// InstitutionID is the ID of the institution that publishes this service.
	InstitutionID uint64 `gorm:"column:institution_id;not null"`
	// Institution is the owning institution; deleting it removes the service.
	Institution Institution `gorm:"foreignKey:InstitutionID;references:ID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the service was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the service was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Service model.
func (Service) TableName() string {
	return "services"
}
