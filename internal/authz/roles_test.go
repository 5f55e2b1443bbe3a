package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, RoleAdmin, Normalize(""))
	assert.Equal(t, RoleAdmin, Normalize("admin"))
	assert.Equal(t, RoleViewer, Normalize("viewer"))
	// неизвестные роли только на чтение
	assert.Equal(t, RoleViewer, Normalize("root"))
	assert.Equal(t, RoleViewer, Normalize("Admin"))
}

func TestIsReadOnly(t *testing.T) {
	assert.True(t, IsReadOnly(RoleViewer))
	assert.True(t, IsReadOnly(""))
	assert.True(t, IsReadOnly("superuser"))
	assert.False(t, IsReadOnly(RoleAdmin))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(""))
	assert.True(t, Valid(RoleAdmin))
	assert.True(t, Valid(RoleViewer))
	assert.False(t, Valid("Viewer"))
}
