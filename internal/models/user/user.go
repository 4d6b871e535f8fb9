package user

import "time"

type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Role string

const RoleUser Role = "user"
const RoleAdmin Role = "admin"

// ValidRole проверяет роль по фиксированному списку
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleAdmin
}

// Updates — частичное обновление, пустые поля не трогаются
type Updates struct {
	Username string
	Email    string
	Role     string
}
