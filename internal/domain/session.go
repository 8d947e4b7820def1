package domain

type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

type SessionUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
}

func (u SessionUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}
