package domain

import "time"

// CodeLength is the fixed length of an email verification code.
const CodeLength = 8

// UserRecord is the per-user verification record. One record per platform
// user id, created lazily on first email submission.
//
// Invariants maintained by the verification workflow:
//   - Code is non-empty iff the user has an outstanding, unconfirmed code.
//   - Verified == true implies Email is non-empty and matches the last
//     confirmed submission.
type UserRecord struct {
	UserID    string     `json:"user_id" dynamodbav:"user_id"`
	Verified  bool       `json:"verified" dynamodbav:"verified"`
	Username  string     `json:"username" dynamodbav:"username"`
	Email     string     `json:"email,omitempty" dynamodbav:"email"`
	Code      string     `json:"-" dynamodbav:"code"`
	IGNs      []string   `json:"igns" dynamodbav:"igns"`           // ordered
	Roles     []string   `json:"roles" dynamodbav:"roles"`         // set semantics
	CreatedAt time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// SubmitEmailRequest carries a user's email submission through validation.
type SubmitEmailRequest struct {
	Email string `validate:"required,email,max=254"`
}
