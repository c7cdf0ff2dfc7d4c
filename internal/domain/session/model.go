package session

import "crownsync/internal/domain/user"

// Principal владелец действующей сессии
type Principal struct {
	UserID int
	Role   user.Role
}
