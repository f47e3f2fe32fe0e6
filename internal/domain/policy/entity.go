// internal/domain/policy/entity.go
package policy

import "time"

// Policy is the durable record behind a sold insurance policy document.
// Access to the document is gated by a one-time access code issued at
// purchase; only its hash is stored.
type Policy struct {
	ID             int64     `json:"id" db:"id"`
	PolicyNumber   string    `json:"policy_number" db:"policy_number"`
	AccessCodeHash string    `json:"-" db:"access_code_hash"`
	HolderFirst    string    `json:"holder_first" db:"holder_first"`
	HolderLast     string    `json:"holder_last" db:"holder_last"`
	HolderEmail    string    `json:"holder_email" db:"holder_email"`
	HolderDOB      string    `json:"holder_dob" db:"holder_dob"` // YYYY-MM-DD
	Postcode       string    `json:"postcode" db:"postcode"`
	VehicleReg     string    `json:"vehicle_reg" db:"vehicle_reg"`
	Status         string    `json:"status" db:"status"` // active, expired, cancelled
	IssuedAt       time.Time `json:"issued_at" db:"issued_at"`
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
}
