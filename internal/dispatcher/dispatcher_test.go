package dispatcher

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/glebk/worklog-bot/internal/export"
	"github.com/glebk/worklog-bot/internal/repository/memory"
	"github.com/glebk/worklog-bot/internal/service"
)

func newTestDispatcher(t *testing.T, grammar Grammar) (*Dispatcher, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := service.NewSessionService(store.Sessions(), store.Responses(), export.NoopExporter{}, zerolog.Nop())
	return New(store.Users(), svc, grammar, zerolog.Nop()), store
}

func TestHandleMessage_StartStrictGrammar(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		valid bool
	}{
		{"well formed", "start 3 hours", true},
		{"zero frequency", "start 0 hours", true},
		{"leading zeros", "start 007 hours", true},
		{"extra whitespace", "  start   3   hours  ", true},
		{"missing arguments", "start", false},
		{"missing unit", "start 3", false},
		{"too many tokens", "start 3 hours please", false},
		{"non-numeric frequency", "start three hours", false},
		{"negative frequency", "start -3 hours", false},
		{"wrong unit", "start 3 minutes", false},
		{"frequency overflow", "start 99999999999999999999 hours", false},
		{"uppercase verb", "Start 3 hours", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, _ := newTestDispatcher(t, GrammarStrict)
			reply := d.HandleMessage(context.Background(), tc.text, "user-1", "space-1")
			if tc.valid {
				require.Equal(t, service.ReplySessionBegin, reply)
			} else {
				require.Equal(t, ReplyInvalidCommand, reply)
			}
		})
	}
}

func TestHandleMessage_StartLegacyGrammar(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		valid bool
	}{
		{"well formed", "start 3 hours", true},
		{"numeric frequency wrong unit", "start 5 minutes", true},
		{"non-numeric frequency right unit", "start three hours", false},
		{"non-numeric frequency wrong unit", "start three minutes", false},
		{"missing arguments", "start", false},
		{"too many tokens", "start 3 hours please", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, _ := newTestDispatcher(t, GrammarLegacy)
			reply := d.HandleMessage(context.Background(), tc.text, "user-1", "space-1")
			if tc.valid {
				require.Equal(t, service.ReplySessionBegin, reply)
			} else {
				require.Equal(t, ReplyInvalidCommand, reply)
			}
		})
	}
}

func TestHandleMessage_StartStoresFrequency(t *testing.T) {
	d, store := newTestDispatcher(t, GrammarStrict)
	ctx := context.Background()

	reply := d.HandleMessage(ctx, "start 3 hours", "user-1", "space-1")
	require.Equal(t, service.ReplySessionBegin, reply)

	user, err := store.Users().GetOrCreate(ctx, "space-1", "user-1")
	require.NoError(t, err)
	session, err := store.Sessions().FindByOwner(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Equal(t, 3, session.PingFrequency)
	require.Equal(t, -3, session.MinutesToPing)
}

func TestHandleMessage_StopWithoutSession(t *testing.T) {
	for _, grammar := range []Grammar{GrammarStrict, GrammarLegacy} {
		t.Run(string(grammar), func(t *testing.T) {
			d, _ := newTestDispatcher(t, grammar)
			ctx := context.Background()

			reply := d.HandleMessage(ctx, "stop", "user-1", "space-1")
			require.Equal(t, service.ReplyNoSession, reply)

			reply = d.HandleMessage(ctx, "stop right now", "user-1", "space-1")
			require.Equal(t, ReplyInvalidCommand, reply)
		})
	}
}

func TestHandleMessage_StopTrailingWordsWithSession(t *testing.T) {
	ctx := context.Background()

	// Legacy grammar ends the session.
	legacy, _ := newTestDispatcher(t, GrammarLegacy)
	require.Equal(t, service.ReplySessionBegin, legacy.HandleMessage(ctx, "start 1 hours", "user-1", "space-1"))
	reply := legacy.HandleMessage(ctx, "stop it already", "user-1", "space-1")
	require.True(t, strings.HasPrefix(reply, "Working session has ended!"), "got %q", reply)

	// Strict grammar logs the words as session text instead.
	strict, _ := newTestDispatcher(t, GrammarStrict)
	require.Equal(t, service.ReplySessionBegin, strict.HandleMessage(ctx, "start 1 hours", "user-1", "space-1"))
	reply = strict.HandleMessage(ctx, "stop it already", "user-1", "space-1")
	require.Equal(t, service.ReplyResponseLogged, reply)
}

func TestHandleMessage_FullSessionFlow(t *testing.T) {
	d, _ := newTestDispatcher(t, GrammarStrict)
	ctx := context.Background()

	require.Equal(t, ReplyInvalidCommand, d.HandleMessage(ctx, "hello there", "user-1", "space-1"))

	require.Equal(t, service.ReplySessionBegin, d.HandleMessage(ctx, "start 3 hours", "user-1", "space-1"))

	require.Equal(t, service.ReplyResponseLogged, d.HandleMessage(ctx, "refactored the billing job", "user-1", "space-1"))
	require.Equal(t, service.ReplyResponseLogged, d.HandleMessage(ctx, "code review for alice", "user-1", "space-1"))

	reply := d.HandleMessage(ctx, "stop", "user-1", "space-1")
	require.True(t, strings.HasPrefix(reply, "Working session has ended! See a summary of your work here: "), "got %q", reply)

	require.Equal(t, ReplyInvalidCommand, d.HandleMessage(ctx, "one more thing", "user-1", "space-1"))
	require.Equal(t, service.ReplyNoSession, d.HandleMessage(ctx, "stop", "user-1", "space-1"))
}

func TestHandleMessage_BlankInput(t *testing.T) {
	d, _ := newTestDispatcher(t, GrammarStrict)
	require.Equal(t, ReplyInvalidCommand, d.HandleMessage(context.Background(), "", "user-1", "space-1"))
	require.Equal(t, ReplyInvalidCommand, d.HandleMessage(context.Background(), "   \t  ", "user-1", "space-1"))
}

func TestHandleMessage_FirstContactCreatesUser(t *testing.T) {
	d, store := newTestDispatcher(t, GrammarStrict)
	ctx := context.Background()

	require.Equal(t, ReplyInvalidCommand, d.HandleMessage(ctx, "gibberish", "user-1", "space-1"))

	// The identity now resolves to the row created during dispatch.
	user, err := store.Users().GetOrCreate(ctx, "space-1", "user-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)
}

func TestHandleMessage_SpacesAreIsolated(t *testing.T) {
	d, _ := newTestDispatcher(t, GrammarStrict)
	ctx := context.Background()

	require.Equal(t, service.ReplySessionBegin, d.HandleMessage(ctx, "start 2 hours", "user-1", "space-a"))

	// Same person, different space: no session there.
	require.Equal(t, ReplyInvalidCommand, d.HandleMessage(ctx, "did some work", "user-1", "space-b"))
	require.Equal(t, service.ReplyNoSession, d.HandleMessage(ctx, "stop", "user-1", "space-b"))

	// The original space still has its session.
	require.Equal(t, service.ReplyResponseLogged, d.HandleMessage(ctx, "did some work", "user-1", "space-a"))
}

func TestHandleMessage_StartReplacesRunningSession(t *testing.T) {
	d, store := newTestDispatcher(t, GrammarStrict)
	ctx := context.Background()

	require.Equal(t, service.ReplySessionBegin, d.HandleMessage(ctx, "start 2 hours", "user-1", "space-1"))
	require.Equal(t, service.ReplySessionBegin, d.HandleMessage(ctx, "start 6 hours", "user-1", "space-1"))

	user, err := store.Users().GetOrCreate(ctx, "space-1", "user-1")
	require.NoError(t, err)
	session, err := store.Sessions().FindByOwner(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 6, session.PingFrequency)
}

func TestHandleMessage_LoggedTextKeptVerbatim(t *testing.T) {
	d, store := newTestDispatcher(t, GrammarStrict)
	ctx := context.Background()

	require.Equal(t, service.ReplySessionBegin, d.HandleMessage(ctx, "start 1 hours", "user-1", "space-1"))

	text := "Deployed v2.3  (with the   hotfix)"
	require.Equal(t, service.ReplyResponseLogged, d.HandleMessage(ctx, text, "user-1", "space-1"))

	user, err := store.Users().GetOrCreate(ctx, "space-1", "user-1")
	require.NoError(t, err)
	session, err := store.Sessions().FindByOwner(ctx, user.ID)
	require.NoError(t, err)
	entries, err := store.Responses().ListByOwnerSince(ctx, user.ID, session.StartedAt)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, text, entries[0].Text)
}
