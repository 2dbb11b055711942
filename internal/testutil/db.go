// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/orgtask-api/internal/database"
	"github.com/yukikurage/orgtask-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database and registers it as
// the default database. Timestamps are written in UTC so range queries
// compare consistently.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection would otherwise get its own empty database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.Models()...))
	require.NoError(t, database.MigrateDatabase(db))
	database.SetDB(db)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// UserFixture describes a user inserted by CreateUser.
type UserFixture struct {
	ID       uint64
	Roles    []models.Role
	ParentID *uint64
	TeamID   *uint64
}

// CreateUser inserts a user with a fixed id. TO holders get their team.
func CreateUser(t testing.TB, db *gorm.DB, f UserFixture) *models.User {
	t.Helper()

	user := &models.User{
		ID:           f.ID,
		Name:         "user" + strconv.FormatUint(f.ID, 10),
		Email:        "user" + strconv.FormatUint(f.ID, 10) + "@example.com",
		PasswordHash: "hashedpassword",
		Roles:        models.Roles(f.Roles),
		ParentID:     f.ParentID,
		TeamID:       f.TeamID,
	}
	require.NoError(t, db.Create(user).Error)

	if user.HasRole(models.RoleTO) && f.TeamID == nil {
		team := &models.Team{OwnerID: user.ID}
		require.NoError(t, db.Create(team).Error)
		user.TeamID = &team.ID
		require.NoError(t, db.Model(user).Update("team_id", team.ID).Error)
	}
	return user
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
