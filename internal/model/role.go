package model

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleInsurer Role = "insurer"
)

func (role Role) IsValid() bool {
	return role == RolePatient || role == RoleDoctor || role == RoleInsurer
}

func (role Role) String() string {
	return string(role)
}

// Participant is a directory entry for a registered doctor/hospital or
// insurance company. Entries are immutable once registered.
type Participant struct {
	Address     string
	DisplayName string
	Role        Role
}
