package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
)

type directoryRepo struct {
	memUsers
	listErr error
}

func (d directoryRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	var out []models.User
	for _, u := range d.sorted() {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Department != nil && !u.InDepartment(*filter.Department) {
			continue
		}
		if filter.Managers != nil && u.IsManager != *filter.Managers {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func TestUserServiceList(t *testing.T) {
	db := newMemDB()
	seedStaff(db)
	svc := NewUserService(directoryRepo{memUsers: memUsers{db}}, zap.NewNop())

	dept := models.DepartmentDesign
	users, err := svc.List(context.Background(), models.UserFilter{Department: &dept})
	require.NoError(t, err)
	assert.Len(t, users, 3)

	managers := true
	users, err = svc.List(context.Background(), models.UserFilter{Department: &dept, Managers: &managers})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "dora", users[0].Username)

	bogus := models.UserRole("janitor")
	_, err = svc.List(context.Background(), models.UserFilter{Role: &bogus})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	nobody := models.RoleManager
	users, err = svc.List(context.Background(), models.UserFilter{Role: &nobody, Department: &dept})
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserServiceListFailure(t *testing.T) {
	svc := NewUserService(directoryRepo{memUsers: memUsers{newMemDB()}, listErr: errors.New("db down")}, nil)
	_, err := svc.List(context.Background(), models.UserFilter{})
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestUserServiceGet(t *testing.T) {
	db := newMemDB()
	people := seedStaff(db)
	svc := NewUserService(directoryRepo{memUsers: memUsers{db}}, nil)

	user, err := svc.Get(context.Background(), people.editor.ID)
	require.NoError(t, err)
	assert.Equal(t, "eve", user.Username)

	_, err = svc.Get(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestUserServiceTeam(t *testing.T) {
	db := newMemDB()
	people := seedStaff(db)
	svc := NewUserService(directoryRepo{memUsers: memUsers{db}}, nil)
	ctx := context.Background()
	design := models.DepartmentDesign

	team, err := svc.Team(ctx, people.edManager.ID, &design)
	require.NoError(t, err)
	assert.Len(t, team, 3)
	assert.True(t, team[0].InDepartment(models.DepartmentEditorial))

	team, err = svc.Team(ctx, people.admin.ID, &design)
	require.NoError(t, err)
	assert.True(t, team[0].InDepartment(models.DepartmentDesign))

	_, err = svc.Team(ctx, people.boss.ID, nil)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Team(ctx, "ghost", nil)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
