package controllers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lromand/matchpoint/app/models"
	"github.com/lromand/matchpoint/app/repository"
)

type fakeUserRepo struct {
	users       []repository.UserWithSubscription
	searched    []string
	listCalls   int
	enrollments []repository.EnrollmentWithPlan
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	for i := range r.users {
		if r.users[i].User.Email == email {
			return &r.users[i].User, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Count() (int64, error) {
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) ListWithSubscription(offset, limit int) ([]repository.UserWithSubscription, error) {
	r.listCalls++
	return r.users, nil
}

func (r *fakeUserRepo) SearchWithSubscription(query string) ([]repository.UserWithSubscription, error) {
	r.searched = append(r.searched, query)
	var out []repository.UserWithSubscription
	for _, u := range r.users {
		if u.User.Name == query || u.User.Email == query {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) EnrollmentsWithPlan(userID uint) ([]repository.EnrollmentWithPlan, error) {
	return r.enrollments, nil
}

// stubAdminUserRepo installs a fake repository behind the admin handlers for
// the duration of one test.
func stubAdminUserRepo(t *testing.T, repo repository.UserRepository) {
	t.Helper()
	orig := adminUserRepo
	t.Cleanup(func() { adminUserRepo = orig })
	adminUserRepo = func() repository.UserRepository { return repo }
}

func adminTestUsers() []repository.UserWithSubscription {
	next := time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC)
	return []repository.UserWithSubscription{
		{
			User: models.User{
				ID:                1,
				Name:              "Alice Martin",
				Email:             "alice@example.com",
				ExternalAccountID: 111222333,
			},
			PlanName:        "Premium",
			NextPaymentDate: &next,
		},
		{
			User: models.User{
				ID:    2,
				Name:  "Bob Lee",
				Email: "bob@example.com",
			},
			PlanName: models.DefaultPlanLabel,
		},
	}
}

type adminUsersResponse struct {
	Users []struct {
		ID    uint   `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Plan  string `json:"plan"`
	} `json:"users"`
	Total int64 `json:"total"`
}

func TestHandleAdminUsersListsAllSubscribers(t *testing.T) {
	repo := &fakeUserRepo{users: adminTestUsers()}
	stubAdminUserRepo(t, repo)

	app := fiber.New()
	app.Get("/users", HandleAdminUsers)

	resp, err := app.Test(httptest.NewRequest("GET", "/users", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body adminUsersResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &body))

	require.Len(t, body.Users, 2)
	assert.EqualValues(t, 2, body.Total)
	assert.Equal(t, "Premium", body.Users[0].Plan)
	assert.Equal(t, models.DefaultPlanLabel, body.Users[1].Plan)
	assert.Equal(t, 1, repo.listCalls)
	assert.Empty(t, repo.searched)
}

func TestHandleAdminUsersFiltersWithQuery(t *testing.T) {
	repo := &fakeUserRepo{users: adminTestUsers()}
	stubAdminUserRepo(t, repo)

	app := fiber.New()
	app.Get("/users", HandleAdminUsers)

	resp, err := app.Test(httptest.NewRequest("GET", "/users?q=bob@example.com", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body adminUsersResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &body))

	require.Len(t, body.Users, 1)
	assert.Equal(t, "bob@example.com", body.Users[0].Email)
	assert.Equal(t, []string{"bob@example.com"}, repo.searched)
	assert.Zero(t, repo.listCalls, "a filtered request must not fall back to the full listing")
}
