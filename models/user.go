package models

// Role distinguishes the two participant kinds in the platform.
type Role string

const (
	RoleAdopter        Role = "ADOPTER"
	RoleAdoptionCenter Role = "ADOPTION_CENTER"
)

type User struct {
	UserID             string `dynamodbav:"userId" json:"userId"`
	Email              string `dynamodbav:"email" json:"email"`
	PasswordHash       string `dynamodbav:"passwordHash" json:"-"`
	Role               Role   `dynamodbav:"role" json:"role"`
	FirstName          string `dynamodbav:"firstName" json:"firstName,omitempty"`
	LastName           string `dynamodbav:"lastName" json:"lastName,omitempty"`
	AdoptionCenterName string `dynamodbav:"adoptionCenterName" json:"adoptionCenterName,omitempty"`
	ProfilePhoto       string `dynamodbav:"profilePhoto" json:"profilePhoto,omitempty"`
	CreatedAt          string `dynamodbav:"createdAt" json:"createdAt"`
}

// DisplayName resolves the name shown to conversation counterparties:
// firstName (plus lastName when set), falling back to the adoption center
// name, then a literal "Unknown".
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		if u.LastName == "" {
			return u.FirstName
		}
		return u.FirstName + " " + u.LastName
	}
	if u.AdoptionCenterName != "" {
		return u.AdoptionCenterName
	}
	return "Unknown"
}

// UsersTable is the DynamoDB table name for user accounts
const UsersTable = "Users"
