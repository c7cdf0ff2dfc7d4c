package user

import (
	"fmt"
	"strings"
	"time"
)

// Role права пользователя на хранилище видео
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
)

// ParseRole пустая строка означает viewer
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleViewer:
		return RoleViewer, nil
	case RoleEditor:
		return RoleEditor, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// CanWrite разрешены загрузка и удаление объектов
func (r Role) CanWrite() bool {
	return r == RoleEditor
}

type User struct {
	ID        int
	Login     string
	Password  string // хэш
	Role      Role
	CreatedAt time.Time
}
