// Package dispatcher classifies inbound chat messages and routes them to
// session operations.
package dispatcher

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/glebk/worklog-bot/internal/domain"
	"github.com/glebk/worklog-bot/internal/service"
)

// ReplyInvalidCommand is the catch-all answer for anything the bot cannot
// act on, malformed commands and internal failures alike.
const ReplyInvalidCommand = "Sorry, that was an invalid command."

// Grammar selects how strictly command arguments are checked.
type Grammar string

const (
	// GrammarStrict requires "start <digits> hours" and a bare "stop".
	// A "stop" with trailing words counts as session text, not a command.
	GrammarStrict Grammar = "strict"
	// GrammarLegacy reproduces the bot's historical parsing: "start"
	// tolerates a wrong unit word when the frequency is numeric, and
	// "stop" with trailing words still ends a running session.
	GrammarLegacy Grammar = "legacy"
)

// Dispatcher turns raw chat messages into session operations. HandleMessage
// answers every input with a reply string; storage failures are logged and
// answered with ReplyInvalidCommand instead of being passed to the caller.
type Dispatcher struct {
	users    domain.UserRepository
	sessions *service.SessionService
	grammar  Grammar
	log      zerolog.Logger
}

// New creates a Dispatcher. Unknown grammar values fall back to strict.
func New(users domain.UserRepository, sessions *service.SessionService, grammar Grammar, log zerolog.Logger) *Dispatcher {
	if grammar != GrammarLegacy {
		grammar = GrammarStrict
	}
	return &Dispatcher{
		users:    users,
		sessions: sessions,
		grammar:  grammar,
		log:      log,
	}
}

// HandleMessage processes one inbound message from the given user and space
// and returns the bot's reply. The user record is resolved (and created on
// first contact) before the message is classified, so even a garbage first
// message enrolls its sender.
func (d *Dispatcher) HandleMessage(ctx context.Context, text, userID, spaceID string) string {
	user, err := d.users.GetOrCreate(ctx, spaceID, userID)
	if err != nil {
		d.log.Error().Err(err).Str("space_id", spaceID).Str("user_id", userID).Msg("failed to resolve user")
		messagesTotal.WithLabelValues(intentUnknown, outcomeError).Inc()
		return ReplyInvalidCommand
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		messagesTotal.WithLabelValues(intentUnknown, outcomeInvalid).Inc()
		return ReplyInvalidCommand
	}

	switch {
	case tokens[0] == "start":
		return d.handleStart(ctx, user, tokens)
	case tokens[0] == "stop" && (len(tokens) == 1 || d.grammar == GrammarLegacy):
		return d.handleStop(ctx, user, tokens)
	default:
		return d.handleLog(ctx, user, text)
	}
}

func (d *Dispatcher) handleStart(ctx context.Context, user *domain.User, tokens []string) string {
	frequency, ok := d.parseStart(tokens)
	if !ok {
		messagesTotal.WithLabelValues(intentStart, outcomeInvalid).Inc()
		return ReplyInvalidCommand
	}

	reply, err := d.sessions.StartSession(ctx, user, frequency)
	if err != nil {
		d.log.Error().Err(err).Int64("user_id", user.ID).Msg("start session failed")
		messagesTotal.WithLabelValues(intentStart, outcomeError).Inc()
		return ReplyInvalidCommand
	}
	messagesTotal.WithLabelValues(intentStart, outcomeOK).Inc()
	return reply
}

func (d *Dispatcher) handleStop(ctx context.Context, user *domain.User, tokens []string) string {
	if len(tokens) > 1 {
		// Legacy grammar: a stop with trailing words only works while a
		// session is running.
		session, err := d.sessions.QuerySession(ctx, user)
		if err != nil {
			d.log.Error().Err(err).Int64("user_id", user.ID).Msg("session lookup failed")
			messagesTotal.WithLabelValues(intentStop, outcomeError).Inc()
			return ReplyInvalidCommand
		}
		if session == nil {
			messagesTotal.WithLabelValues(intentStop, outcomeInvalid).Inc()
			return ReplyInvalidCommand
		}
	}

	reply, err := d.sessions.EndSession(ctx, user)
	if err != nil {
		d.log.Error().Err(err).Int64("user_id", user.ID).Msg("end session failed")
		messagesTotal.WithLabelValues(intentStop, outcomeError).Inc()
		return ReplyInvalidCommand
	}
	messagesTotal.WithLabelValues(intentStop, outcomeOK).Inc()
	return reply
}

func (d *Dispatcher) handleLog(ctx context.Context, user *domain.User, text string) string {
	session, err := d.sessions.QuerySession(ctx, user)
	if err != nil {
		d.log.Error().Err(err).Int64("user_id", user.ID).Msg("session lookup failed")
		messagesTotal.WithLabelValues(intentLog, outcomeError).Inc()
		return ReplyInvalidCommand
	}
	if session == nil {
		// Free text from a user without a session is noise, not work.
		messagesTotal.WithLabelValues(intentLog, outcomeInvalid).Inc()
		return ReplyInvalidCommand
	}

	reply, err := d.sessions.LogResponse(ctx, user, text)
	if err != nil {
		d.log.Error().Err(err).Int64("user_id", user.ID).Msg("log response failed")
		messagesTotal.WithLabelValues(intentLog, outcomeError).Inc()
		return ReplyInvalidCommand
	}
	messagesTotal.WithLabelValues(intentLog, outcomeOK).Inc()
	return reply
}

// parseStart extracts the ping frequency from a start command's tokens.
func (d *Dispatcher) parseStart(tokens []string) (int, bool) {
	if len(tokens) != 3 {
		return 0, false
	}
	if d.grammar == GrammarLegacy {
		if !isDigits(tokens[1]) && tokens[2] == "hours" {
			return 0, false
		}
	} else {
		if !isDigits(tokens[1]) || tokens[2] != "hours" {
			return 0, false
		}
	}
	frequency, err := strconv.Atoi(tokens[1])
	if err != nil {
		return 0, false
	}
	return frequency, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
