package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"confroom-backend/internal/config"
	"confroom-backend/internal/database"
	"confroom-backend/internal/email"
	"confroom-backend/internal/events"
	"confroom-backend/internal/stats"
	"confroom-backend/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		PremiumPeriod:       config.DefaultPremiumPeriod,
		EditWindow:          config.DefaultEditWindow,
		MessageRetention:    config.DefaultMessageRetention,
		SweepInterval:       config.DefaultSweepInterval,
		PremiumSweepBatch:   config.DefaultPremiumSweepBatch,
		MessageSweepBatch:   config.DefaultMessageSweepBatch,
		FreeRoomCapacity:    config.DefaultFreeRoomCapacity,
		PremiumRoomCapacity: config.DefaultPremiumRoomCapacity,
		MessagePageSize:     config.DefaultMessagePageSize,
		VerificationCodeTTL: config.DefaultVerificationCodeTTL,
		SigningKey:          []byte("test-signing-key"),
	}
}

// newTestApp wires an app around the mock repository with a running event
// hub and lenient stats so handlers can be exercised directly.
func newTestApp(t *testing.T, repo database.ConfRoomRepository) *ConfRoomApp {
	t.Helper()

	logger := testutil.TestLogger(t)

	sp := &stats.MockStatsUpdater{}
	sp.On("Incr", mock.Anything).Maybe()
	sp.On("Decr", mock.Anything).Maybe()
	sp.On("Add", mock.Anything, mock.Anything).Maybe()

	hub := events.NewHub(logger, sp)
	go hub.Run()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		hub.Shutdown(ctx)
	})

	return NewConfRoomApp(http.NewServeMux(), logger, hub, repo, sp, email.NoopSender{}, testConfig())
}

// authedRequest builds a request whose context carries the given user id,
// as the auth middleware would have set it.
func authedRequest(method, target string, body io.Reader, userId int) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(WithUserId(req.Context(), userId))
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
