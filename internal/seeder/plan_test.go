package seeder_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/tweetseed/internal/seeder"
)

func TestDefaultPlan_Shape(t *testing.T) {
	t.Parallel()
	plan := seeder.DefaultPlan()
	require.NoError(t, plan.Validate())

	require.Len(t, plan.Users, 3)
	assert.Equal(t, "Vadim", plan.Users[0].Username)
	assert.Equal(t, "Dima", plan.Users[1].Username)
	assert.Equal(t, "Alex", plan.Users[2].Username)

	require.Len(t, plan.Steps, 3)
	assert.Equal(t, []seeder.Action{
		seeder.Tweet("Hello, Im Vadim and this is my first tweet"),
		seeder.Tweet("My day is greate day (c) Vadim"),
	}, plan.Steps[0].Actions)
	assert.Equal(t, []seeder.Action{
		seeder.Tweet("Im a bad boy (c) Dima"),
		seeder.SubscribeTo("Vadim"),
	}, plan.Steps[1].Actions)
	assert.Equal(t, []seeder.Action{
		seeder.SubscribeTo("Vadim"),
		seeder.SubscribeTo("Dima"),
	}, plan.Steps[2].Actions)
}

func TestPlan_User(t *testing.T) {
	t.Parallel()
	plan := seeder.DefaultPlan()
	u, ok := plan.User("Dima")
	require.True(t, ok)
	assert.Equal(t, "dima@mail.ru", u.Email)
	assert.Equal(t, "password_second", u.Password)

	_, ok = plan.User("dima")
	assert.False(t, ok, "lookup is case sensitive")
}

func TestPlan_ValidateRejects(t *testing.T) {
	t.Parallel()
	cases := map[string]func(p *seeder.Plan){
		"unknown login":   func(p *seeder.Plan) { p.Steps[1].Login = "Nobody" },
		"empty username":  func(p *seeder.Plan) { p.Users[2].Username = " " },
		"duplicate user":  func(p *seeder.Plan) { p.Users[1].Username = "Vadim" },
		"unknown action":  func(p *seeder.Plan) { p.Steps[0].Actions[0].Kind = "like" },
		"empty tweet":     func(p *seeder.Plan) { p.Steps[0].Actions[1].Text = "" },
		"empty subscribe": func(p *seeder.Plan) { p.Steps[2].Actions[0].Text = "  " },
	}
	for name, mutate := range cases {
		plan := seeder.DefaultPlan()
		mutate(&plan)
		assert.ErrorIs(t, plan.Validate(), seeder.ErrInvalidPlan, name)
	}
}

func TestPlan_EmptyIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, seeder.Plan{}.Validate())
}

func TestLoadPlan_MatchesDefault(t *testing.T) {
	t.Parallel()
	plan, err := seeder.LoadPlan(filepath.Join("testdata", "default.toml"))
	require.NoError(t, err)
	assert.Equal(t, seeder.DefaultPlan(), plan)
}

func TestLoadPlan_Errors(t *testing.T) {
	t.Parallel()

	_, err := seeder.LoadPlan(filepath.Join("testdata", "missing.toml"))
	assert.Error(t, err)

	_, err = seeder.LoadPlan(filepath.Join("testdata", "unknown_key.toml"))
	assert.ErrorIs(t, err, seeder.ErrInvalidPlan)
	assert.Contains(t, err.Error(), "nickname")

	_, err = seeder.LoadPlan(filepath.Join("testdata", "bad_login.toml"))
	assert.ErrorIs(t, err, seeder.ErrInvalidPlan)
	assert.Contains(t, err.Error(), "Nobody")
	assert.Contains(t, err.Error(), "like")
}
