package storage

import (
	"context"

	"apkmirror/models"
)

// VisitStore persists page views reported by the tracking endpoint
type VisitStore interface {
	// LogPageLoad records a new visit and returns its row id
	LogPageLoad(ctx context.Context, v *models.Visit) (int64, error)
	// LogPageUnload sets the time on page of the session's most recent visit
	LogPageUnload(ctx context.Context, sessionID string, seconds int) error
	Close()
}

// ListingWriter exports scraped listings
type ListingWriter interface {
	WriteApps(apps []models.AppSummary) error
}
