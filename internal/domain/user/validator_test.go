package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountValidator_ValidateLogin(t *testing.T) {
	v := NewAccountValidator()

	tests := []struct {
		name    string
		login   string
		wantErr string
	}{
		{name: "short handle", login: "ana"},
		{name: "dotted handle", login: "ana.perez"},
		{name: "email", login: "ana.perez+club@rfep.es"},
		{name: "accented letters", login: "entrenadora.núñez"},
		{name: "too short", login: "an", wantErr: "length"},
		{name: "too long", login: strings.Repeat("a", MaxLoginLen+1), wantErr: "length"},
		{name: "space", login: "ana perez", wantErr: "not allowed"},
		{name: "two at signs", login: "a@b@rfep.es", wantErr: "at most one"},
		{name: "double dot", login: "ana..perez", wantErr: "consecutive dots"},
		{name: "leading dot", login: ".ana", wantErr: "must start and end"},
		{name: "trailing at", login: "ana@", wantErr: "must start and end"},
		{name: "domain without dot", login: "ana@club", wantErr: "domain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateLogin(tt.login)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAccountValidator_ValidateRegister(t *testing.T) {
	v := NewAccountValidator()

	tests := []struct {
		name     string
		login    string
		password string
		role     Role
		wantErr  string
	}{
		{name: "viewer simple password", login: "ana", password: "natacion24", role: RoleViewer},
		{name: "editor strong password", login: "coach", password: "Piscina-2024", role: RoleEditor},
		{name: "editor rejects viewer password", login: "coach", password: "natacion24", role: RoleEditor, wantErr: "upper and lower"},
		{name: "editor needs symbol", login: "coach", password: "Piscina2024", role: RoleEditor, wantErr: "symbol"},
		{name: "viewer too short", login: "ana", password: "nado24", role: RoleViewer, wantErr: "at least 8"},
		{name: "editor too short", login: "coach", password: "Nado-2024", role: RoleEditor, wantErr: "at least 10"},
		{name: "no digits", login: "ana", password: "natacionrfep", role: RoleViewer, wantErr: "letters and digits"},
		{name: "password contains login", login: "marta@rfep.es", password: "Marta-2024!", role: RoleEditor, wantErr: "login"},
		{name: "invalid login", login: "a b", password: "natacion24", role: RoleViewer, wantErr: "login"},
		{name: "unknown role", login: "ana", password: "natacion24", role: "admin", wantErr: "invalid role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRegister(tt.login, tt.password, tt.role)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalizeLogin(t *testing.T) {
	assert.Equal(t, "ana.perez@rfep.es", NormalizeLogin("  Ana.Perez@RFEP.es "))
}
