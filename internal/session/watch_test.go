package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iasctl/pkg/oauth"
)

func TestWatch_PicksUpChangesFromOtherProcess(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Prime the in-memory slot with "no session".
	info, err := env.manager.GetSessionInfo(ctx)
	require.NoError(t, err)
	require.Nil(t, info)

	changed := make(chan struct{}, 8)
	require.NoError(t, env.manager.Watch(ctx, func() { changed <- struct{}{} }))

	writer, err := New(env.config)
	require.NoError(t, err)
	require.NoError(t, writer.store.SaveTokens(ctx, &oauth.Token{AccessToken: "from-other-process", ExpiresAt: testNow.Add(time.Hour)}))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	token, err := env.manager.GetAccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "from-other-process", token)

	require.NoError(t, writer.SignOut(ctx))
	require.Eventually(t, func() bool {
		info, err := env.manager.GetSessionInfo(ctx)
		return err == nil && info == nil
	}, 5*time.Second, 10*time.Millisecond)
}
