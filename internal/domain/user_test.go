package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efme/efme-api/internal/domain"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := domain.NewUser("Amina Berrada", "a@x.com", "secret123", domain.RoleTechnician)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, domain.RoleTechnician, user.Role)
	assert.True(t, user.IsActive)
}

func TestNewUserDefaultsRole(t *testing.T) {
	t.Parallel()

	user, err := domain.NewUser("Amina Berrada", "a@x.com", "secret123", "")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		role     domain.Role
		wantErr  error
	}{
		{"valid", "Amina Berrada", "a@x.com", "secret123", domain.RoleUser, nil},
		{"name too short", "ab", "a@x.com", "secret123", domain.RoleUser, domain.ErrUserNameTooShort},
		{"empty email", "Amina Berrada", "", "secret123", domain.RoleUser, domain.ErrEmptyEmail},
		{"bad email", "Amina Berrada", "not-an-email", "secret123", domain.RoleUser, domain.ErrInvalidEmail},
		{"bad email domain", "Amina Berrada", "a@x", "secret123", domain.RoleUser, domain.ErrInvalidEmail},
		{"bad role", "Amina Berrada", "a@x.com", "secret123", "supervisor", domain.ErrInvalidRole},
		{"short password", "Amina Berrada", "a@x.com", "short", domain.RoleUser, domain.ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := domain.NewUser(tt.userName, tt.email, tt.password, tt.role)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestUserValidateStoredUser(t *testing.T) {
	t.Parallel()

	// A user loaded from the store has no plaintext password, only a hash.
	user := &domain.User{
		ID:             uuid.New(),
		Name:           "Amina Berrada",
		Email:          "a@x.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
		Role:           domain.RoleManager,
	}
	assert.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), domain.ErrEmptyPassword)
}
