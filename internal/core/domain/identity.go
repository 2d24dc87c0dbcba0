package domain

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Valid reports whether r is one of the closed set of known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

type DoctorStatus string

const (
	DoctorPending  DoctorStatus = "pending"
	DoctorApproved DoctorStatus = "approved"
	DoctorRejected DoctorStatus = "rejected"
)

// Identity is the normalized session-resident shape of an authenticated
// principal. It is created whole by the token codec or the credential
// store and replaced whole on login/logout, never patched field by field.
type Identity struct {
	SubjectID    string       `json:"subject_id"`
	Email        string       `json:"email"`
	Role         Role         `json:"role"`
	Name         string       `json:"name,omitempty"`
	PictureURL   string       `json:"picture_url,omitempty"`
	DoctorStatus DoctorStatus `json:"doctor_status,omitempty"`
	Token        string       `json:"-"`
}

// Usable reports whether the identity carries enough fields to base
// authorization decisions on. Downstream role redirects depend on the
// role being present, so a role-less identity is never usable.
func (id Identity) Usable() bool {
	return id.SubjectID != "" && id.Role.Valid()
}

// IsApprovedDoctor reports whether the identity may enter doctor-only
// surfaces. Role alone is not enough: a pending or rejected doctor
// answers false.
func (id Identity) IsApprovedDoctor() bool {
	return id.Role == RoleDoctor && id.DoctorStatus == DoctorApproved
}
