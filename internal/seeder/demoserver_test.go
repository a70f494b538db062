package seeder_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/raysh454/tweetseed/internal/demoserver"
	"github.com/raysh454/tweetseed/internal/logging"
	"github.com/raysh454/tweetseed/internal/seeder"
)

func startDemoServer(t *testing.T) (*demoserver.DemoServer, *httptest.Server) {
	t.Helper()
	cfg := demoserver.DefaultConfig()
	cfg.PasswordCost = bcrypt.MinCost
	ds, err := demoserver.NewDemoServer(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	ts := httptest.NewServer(ds.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = ds.Close()
	})
	return ds, ts
}

func TestRun_AgainstDemoServer(t *testing.T) {
	t.Parallel()
	ds, ts := startDemoServer(t)

	var outcomes []seeder.Outcome
	s := newHTTPSeeder(t, ts.URL, seeder.WithObserver(func(o seeder.Outcome) {
		outcomes = append(outcomes, o)
	}))
	require.NoError(t, s.Run(context.Background(), seeder.DefaultPlan()))

	require.Len(t, outcomes, 12)
	for i, o := range outcomes {
		require.NoError(t, o.Err, "outcome %d", i)
		assert.Less(t, o.StatusCode, 300, "outcome %d (%s %s)", i, o.Op, o.URL)
	}

	ctx := context.Background()
	st := ds.Store()
	vadim, err := st.FindUserByUsername(ctx, "Vadim")
	require.NoError(t, err)
	dima, err := st.FindUserByUsername(ctx, "Dima")
	require.NoError(t, err)
	alex, err := st.FindUserByUsername(ctx, "Alex")
	require.NoError(t, err)

	mine, err := st.UserTweets(ctx, vadim.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello, Im Vadim and this is my first tweet", "My day is greate day (c) Vadim"}, mine)

	feed, err := st.SubscriptionTweets(ctx, dima.ID)
	require.NoError(t, err)
	assert.Equal(t, mine, feed)

	subs, err := st.Subscriptions(ctx, alex.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dima", "Vadim"}, subs)

	feed, err = st.SubscriptionTweets(ctx, alex.ID)
	require.NoError(t, err)
	assert.Len(t, feed, 3)
}

func TestRun_SecondRunAgainstSeededServer(t *testing.T) {
	t.Parallel()
	ds, ts := startDemoServer(t)

	require.NoError(t, newHTTPSeeder(t, ts.URL).Run(context.Background(), seeder.DefaultPlan()))

	// registers and subscriptions now collide, logins and tweets still work
	var statuses []int
	s := newHTTPSeeder(t, ts.URL, seeder.WithObserver(func(o seeder.Outcome) {
		statuses = append(statuses, o.StatusCode)
	}))
	require.NoError(t, s.Run(context.Background(), seeder.DefaultPlan()))

	assert.Equal(t, []int{
		http.StatusUnprocessableEntity, http.StatusUnprocessableEntity, http.StatusUnprocessableEntity,
		http.StatusOK, http.StatusCreated, http.StatusCreated,
		http.StatusOK, http.StatusCreated, http.StatusUnprocessableEntity,
		http.StatusOK, http.StatusUnprocessableEntity, http.StatusUnprocessableEntity,
	}, statuses)

	vadim, err := ds.Store().FindUserByUsername(context.Background(), "Vadim")
	require.NoError(t, err)
	mine, err := ds.Store().UserTweets(context.Background(), vadim.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 4)
}
