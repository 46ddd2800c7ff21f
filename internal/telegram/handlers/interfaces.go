package handlers

import (
	"context"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/integration/pdf"
	"github.com/futig/lab-assistant/internal/pkg/formatter"
)

// ProfileRepository persists profiles and analysis snapshots
type ProfileRepository interface {
	SaveProfile(ctx context.Context, profile *entity.Profile) error
	LoadProfile(ctx context.Context, userID int64) (*entity.Profile, error)
	HasProfile(ctx context.Context, userID int64) bool
	DeleteProfile(ctx context.Context, userID int64) error
	SaveAnalysisSnapshot(ctx context.Context, userID int64, values entity.AnalysisValues) (string, error)
}

// Structurer turns free text into an analysis mapping
type Structurer interface {
	Structure(ctx context.Context, text string) (entity.AnalysisValues, error)
}

// ReportComposer requests and delivers the report for confirmed values
type ReportComposer interface {
	ComposeAndSend(ctx context.Context, chatID int64, profile *entity.Profile, values entity.AnalysisValues, finalMarkup any) error
}

// PDFExtractor pulls the text layer out of a PDF
type PDFExtractor interface {
	Extract(ctx context.Context, data []byte) (pdf.Result, error)
}

// ReportStore returns the last composed report of a user
type ReportStore interface {
	Get(userID int64) (formatter.Report, error)
}

// FormLinker issues a link to the hosted analysis form, empty when the form is disabled
type FormLinker interface {
	FormURL(userID, chatID int64) string
}

// Consultant answers free questions in the neutral state
type Consultant interface {
	Answer(ctx context.Context, question string) (string, error)
}
