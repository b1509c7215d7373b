package models

// Principal is the immutable identity snapshot bound to a session at
// authentication time. The role never changes for the lifetime of the
// session; a profile change re-puts the whole snapshot.
type Principal struct {
	UserID             string `dynamodbav:"userId" json:"userId"`
	Role               Role   `dynamodbav:"role" json:"role"`
	FirstName          string `dynamodbav:"firstName" json:"firstName,omitempty"`
	LastName           string `dynamodbav:"lastName" json:"lastName,omitempty"`
	AdoptionCenterName string `dynamodbav:"adoptionCenterName" json:"adoptionCenterName,omitempty"`
	ProfilePhoto       string `dynamodbav:"profilePhoto" json:"profilePhoto,omitempty"`
}

// Snapshot builds the principal stored alongside a session token.
func (u *User) Snapshot() Principal {
	return Principal{
		UserID:             u.UserID,
		Role:               u.Role,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		AdoptionCenterName: u.AdoptionCenterName,
		ProfilePhoto:       u.ProfilePhoto,
	}
}

// DisplayName mirrors User.DisplayName for the session snapshot.
func (p *Principal) DisplayName() string {
	if p.FirstName != "" {
		if p.LastName == "" {
			return p.FirstName
		}
		return p.FirstName + " " + p.LastName
	}
	if p.AdoptionCenterName != "" {
		return p.AdoptionCenterName
	}
	return "Unknown"
}

type Session struct {
	Token     string    `dynamodbav:"token" json:"token"`
	Principal Principal `dynamodbav:"principal" json:"principal"`
	CreatedAt string    `dynamodbav:"createdAt" json:"createdAt"`
	ExpiresAt string    `dynamodbav:"expiresAt" json:"expiresAt"`
}

// SessionsTable is the DynamoDB table name for live sessions
const SessionsTable = "Sessions"
