package entity

import "fmt"

// Role is the account type picked at registration.
// There is no update path: a user keeps the role it was created with.
type Role string

const (
	RoleStudent Role = "Student"
	RoleTutor   Role = "Tutor"
	RoleAdmin   Role = "Admin"
)

// Roles lists every role in display order.
var Roles = []Role{RoleStudent, RoleTutor, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTutor, RoleAdmin:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}
