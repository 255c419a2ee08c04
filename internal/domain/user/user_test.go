package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleEditor, ParseRole(" Editor "))
	assert.Equal(t, RoleViewer, ParseRole("VIEWER"))
	assert.Equal(t, RoleAnonymous, ParseRole(""))
	assert.Equal(t, RoleAnonymous, ParseRole("superuser"))
}

func TestElevated(t *testing.T) {
	assert.True(t, RoleAdmin.Elevated())
	assert.True(t, RoleEditor.Elevated())
	assert.False(t, RoleViewer.Elevated())
	assert.False(t, RoleAnonymous.Elevated())
}

func TestCaller(t *testing.T) {
	assert.True(t, Anonymous().IsAnonymous())
	assert.Equal(t, RoleAnonymous, Anonymous().Role)
	assert.False(t, Caller{ID: uuid.New(), Role: RoleViewer}.IsAnonymous())
}
