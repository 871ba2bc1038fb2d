package driven

import (
	"context"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// ReferenceStore persists the flat financial reference tables and
// finished session transcripts.
type ReferenceStore interface {
	// SaveAnnouncementDates replaces the stored announcement dates.
	SaveAnnouncementDates(ctx context.Context, dates []domain.AnnouncementDate) error

	// ListAnnouncementDates returns stored dates sorted ascending.
	ListAnnouncementDates(ctx context.Context) ([]domain.AnnouncementDate, error)

	// SaveVehicleSales replaces the stored vehicle sales table.
	SaveVehicleSales(ctx context.Context, sales []domain.VehicleSales) error

	// ListVehicleSales returns stored sales sorted by year.
	ListVehicleSales(ctx context.Context) ([]domain.VehicleSales, error)

	// SaveConversation appends a finished session transcript.
	SaveConversation(ctx context.Context, sessionID string, turns []domain.Turn) error

	// ListConversations returns stored session IDs, most recent first.
	ListConversations(ctx context.Context) ([]string, error)

	// GetConversation returns the turns of one stored session.
	GetConversation(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// Close releases the underlying database handle.
	Close() error
}
