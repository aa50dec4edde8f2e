package auth

// Roles recognized by the clinic. A user's role is fixed at registration;
// there is no role-change flow.
const (
	RoleAdmin        = "ADMIN"
	RoleDoctor       = "DOCTOR"
	RoleReceptionist = "RECEPTIONIST"
	RolePatient      = "PATIENT"
)

// ValidRole reports whether r is one of the recognized roles.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReceptionist, RolePatient:
		return true
	}
	return false
}
