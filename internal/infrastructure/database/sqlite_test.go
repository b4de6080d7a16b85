package database

import (
	"testing"

	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoMigrateSeedsRoles(t *testing.T) {
	db, err := NewSQLiteConnection("file::memory:")
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db))
	// a second run must be a no-op
	require.NoError(t, AutoMigrate(db))

	var roles []entity.Role
	require.NoError(t, db.Order("id").Find(&roles).Error)
	if assert.Len(t, roles, 3) {
		assert.Equal(t, entity.RoleAdmin, roles[0].RoleName)
		assert.Equal(t, entity.RoleProvider, roles[1].RoleName)
		assert.Equal(t, entity.RoleClient, roles[2].RoleName)
	}

	role, err := repository.NewRoleRepository().FindByName(db, entity.RoleProvider)
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, entity.RoleIDProvider, role.ID)

	missing, err := repository.NewRoleRepository().FindByName(db, "JANITOR")
	require.NoError(t, err)
	assert.Nil(t, missing)

	for _, model := range Models() {
		assert.True(t, db.Migrator().HasTable(model))
	}
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
