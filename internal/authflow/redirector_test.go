package authflow

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fhounton/immoctl/immo"
)

// --- Trigger ---

func TestTrigger_ClearsSessionAndNavigates(t *testing.T) {
	ctrl := gomock.NewController(t)
	nav := NewMockNavigator(ctrl)

	sessions := sessionWith(t, mintToken(t, time.Hour))
	r := NewRedirector(sessions, nav, quietLogger)

	nav.EXPECT().Current().Return("/properties")
	nav.EXPECT().Navigate(LoginRoute).Return(nil)

	r.Trigger()

	assert.Empty(t, sessions.Token())
	assert.Nil(t, sessions.CurrentUser())
}

func TestTrigger_AlreadyAtLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	nav := NewMockNavigator(ctrl)

	sessions := sessionWith(t, mintToken(t, time.Hour))
	r := NewRedirector(sessions, nav, quietLogger)

	// No Navigate expectation: being at the login route means the
	// session is dropped but no navigation happens.
	nav.EXPECT().Current().Return(LoginRoute)

	r.Trigger()

	assert.Empty(t, sessions.Token())
}

func TestTrigger_AtLoginResetsImmediately(t *testing.T) {
	ctrl := gomock.NewController(t)
	nav := NewMockNavigator(ctrl)

	sessions := sessionWith(t, mintToken(t, time.Hour))
	r := NewRedirector(sessions, nav, quietLogger)

	// The skip path resets the marker right away, so a later failure
	// on another route still redirects.
	gomock.InOrder(
		nav.EXPECT().Current().Return(LoginRoute),
		nav.EXPECT().Current().Return("/dashboard"),
		nav.EXPECT().Navigate(LoginRoute).Return(nil),
	)

	r.Trigger()
	r.Trigger()
}

func TestTrigger_ConcurrentBurstNavigatesOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		nav := NewMockNavigator(ctrl)

		sessions := sessionWith(t, mintToken(t, time.Hour))
		r := NewRedirector(sessions, nav, quietLogger)

		// Count logout notifications: exactly one subscriber emission
		// with a nil user regardless of how many 401s arrive.
		var (
			mu      sync.Mutex
			logouts int
		)

		cancel := sessions.OnChange(func(u *immo.User) {
			if u == nil {
				mu.Lock()
				logouts++
				mu.Unlock()
			}
		})
		defer cancel()

		nav.EXPECT().Current().Return("/properties/42").Times(1)
		nav.EXPECT().Navigate(LoginRoute).Return(nil).Times(1)

		const n = 8

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)

			go func() {
				defer wg.Done()
				r.Trigger()
			}()
		}
		wg.Wait()

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, logouts, "only the first failure clears the session")
	})
}

func TestTrigger_MarkerResetsAfterSettleDelay(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		nav := NewMockNavigator(ctrl)

		sessions := sessionWith(t, mintToken(t, time.Hour))
		r := NewRedirector(sessions, nav, quietLogger)

		nav.EXPECT().Current().Return("/home").Times(2)
		nav.EXPECT().Navigate(LoginRoute).Return(nil).Times(2)

		r.Trigger()

		// Within the settle window further failures are swallowed.
		r.Trigger()

		time.Sleep(settleDelay + 10*time.Millisecond)
		synctest.Wait()

		require.NoError(t, sessions.Set(&immo.User{ID: 2, Name: "Again"}, mintToken(t, time.Hour)))

		r.Trigger()

		assert.Empty(t, sessions.Token())
	})
}

func TestTrigger_NavigateErrorStillResets(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		nav := NewMockNavigator(ctrl)

		sessions := sessionWith(t, mintToken(t, time.Hour))
		r := NewRedirector(sessions, nav, quietLogger)

		nav.EXPECT().Current().Return("/home").Times(2)
		gomock.InOrder(
			nav.EXPECT().Navigate(LoginRoute).Return(assert.AnError),
			nav.EXPECT().Navigate(LoginRoute).Return(nil),
		)

		r.Trigger()

		time.Sleep(settleDelay + 10*time.Millisecond)
		synctest.Wait()

		r.Trigger()
	})
}
