package entity

import "github.com/google/uuid"

// ApprovalStatus represents the verification state of a doctor account
type ApprovalStatus string

const (
	DoctorStatusPending  ApprovalStatus = "pending"
	DoctorStatusApproved ApprovalStatus = "approved"
	DoctorStatusRejected ApprovalStatus = "rejected"
)

// DoctorProfile represents doctor-specific profile data and the doctor's
// live queue cursor. CurrentServing is only meaningful for ServingDate;
// a row carrying yesterday's date reads as "no one called yet" (0).
type DoctorProfile struct {
	UserID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	Specialization string         `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Biography      string         `gorm:"type:text" json:"biography,omitempty"`
	HospitalName   string         `gorm:"type:varchar(255)" json:"hospital_name,omitempty"`
	City           string         `gorm:"type:varchar(100);index" json:"city,omitempty"`
	Status         ApprovalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	// Live queue cursor, mutated only by call-next and the daily reset.
	CurrentServing int    `gorm:"not null;default:0" json:"current_serving"`
	ServingDate    string `gorm:"type:varchar(10);not null;default:''" json:"serving_date"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

func (p *DoctorProfile) IsApproved() bool {
	return p.Status == DoctorStatusApproved
}

// ServingFor returns the cursor as of the given date key. Cross-day values
// are stale and read as zero.
func (p *DoctorProfile) ServingFor(dateKey string) int {
	if p.ServingDate != dateKey {
		return 0
	}
	return p.CurrentServing
}
