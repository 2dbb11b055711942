package services

import (
	"testing"

	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/testutil"
	"gorm.io/gorm"
)

// seedOrg inserts the users shared by the service tests:
//
//	1 ADMIN (root)
//	2 TO owning team A
//	3, 5 BO members of team A
//	7 BO outside any team
//	8 MANAGEMENT
//	9 TO owning team B
func seedOrg(t *testing.T, db *gorm.DB) map[uint64]*models.User {
	t.Helper()

	root := testutil.Ptr(uint64(1))
	users := map[uint64]*models.User{}
	users[1] = testutil.CreateUser(t, db, testutil.UserFixture{ID: 1, Roles: []models.Role{models.RoleAdmin}})
	users[2] = testutil.CreateUser(t, db, testutil.UserFixture{ID: 2, Roles: []models.Role{models.RoleTO}, ParentID: root})
	teamA := users[2].TeamID
	users[3] = testutil.CreateUser(t, db, testutil.UserFixture{ID: 3, Roles: []models.Role{models.RoleBO}, ParentID: testutil.Ptr(uint64(2)), TeamID: teamA})
	users[5] = testutil.CreateUser(t, db, testutil.UserFixture{ID: 5, Roles: []models.Role{models.RoleBO}, ParentID: testutil.Ptr(uint64(2)), TeamID: teamA})
	users[7] = testutil.CreateUser(t, db, testutil.UserFixture{ID: 7, Roles: []models.Role{models.RoleBO}, ParentID: root})
	users[8] = testutil.CreateUser(t, db, testutil.UserFixture{ID: 8, Roles: []models.Role{models.RoleManagement}, ParentID: root})
	users[9] = testutil.CreateUser(t, db, testutil.UserFixture{ID: 9, Roles: []models.Role{models.RoleTO}, ParentID: root})
	return users
}

func actorOf(u *models.User) Actor {
	return Actor{ID: u.ID, Roles: u.Roles}
}
