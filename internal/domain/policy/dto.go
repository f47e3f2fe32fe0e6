// internal/domain/policy/dto.go
package policy

import "time"

// VerifyRequest asks for access to a policy document. The optional holder
// attributes are screened against the blacklist alongside the attributes
// already on record.
type VerifyRequest struct {
	PolicyNumber string `json:"policy_number" binding:"required,max=30"`
	AccessCode   string `json:"access_code" binding:"required"`
	FirstName    string `json:"first_name" binding:"omitempty,max=100"`
	LastName     string `json:"last_name" binding:"omitempty,max=100"`
	DateOfBirth  string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Postcode     string `json:"postcode" binding:"omitempty,max=20"`
	VehicleReg   string `json:"vehicle_reg" binding:"omitempty,max=20"`
	IPAddress    string `json:"-"`
	UserAgent    string `json:"-"`
}

// VerifyResponse is the policy summary returned on a successful verification.
type VerifyResponse struct {
	PolicyNumber string    `json:"policy_number"`
	HolderName   string    `json:"holder_name"`
	VehicleReg   string    `json:"vehicle_reg,omitempty"`
	Status       string    `json:"status"`
	IssuedAt     time.Time `json:"issued_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}
