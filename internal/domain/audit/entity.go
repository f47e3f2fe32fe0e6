// internal/domain/audit/entity.go
package audit

import "time"

// Security-relevant actions recorded in the audit log.
const (
	ActionLogin              = "auth.login"
	ActionLoginFailed        = "auth.login_failed"
	ActionLoginRateLimited   = "auth.rate_limited"
	ActionLogout             = "auth.logout"
	ActionAdminCreated       = "admin.account_created"
	ActionAdminDeleted       = "admin.account_deleted"
	ActionBlacklistCreated   = "blacklist.created"
	ActionBlacklistUpdated   = "blacklist.updated"
	ActionBlacklistDeleted   = "blacklist.deleted"
	ActionBlacklistDenied    = "blacklist.denied"
	ActionPolicyVerified     = "policy.verified"
	ActionPolicyVerifyFailed = "policy.verify_failed"
)

// Entry is a single audit log record. ChainHash links each entry to its
// predecessor so interior tampering is detectable.
type Entry struct {
	ID             string    `json:"id"`
	PrincipalID    int64     `json:"principal_id,omitempty"`
	PrincipalEmail string    `json:"principal_email,omitempty"`
	Action         string    `json:"action"`
	Resource       string    `json:"resource,omitempty"`
	Details        string    `json:"details,omitempty"`
	ClientIP       string    `json:"client_ip,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	ChainHash      string    `json:"chain_hash"`
}

// Record is the caller-supplied portion of an entry; the log assigns ID,
// Timestamp and ChainHash.
type Record struct {
	PrincipalID    int64
	PrincipalEmail string
	Action         string
	Resource       string
	Details        string
	ClientIP       string
	UserAgent      string
}
