package service

import (
	"gorm.io/gorm"

	notifService "ilika_backend/internals/features/campaign/notifications/service"
	"ilika_backend/internals/features/campaign/webhooks/model"
)

// Processor owns the matching, state-transition and side-effect logic
// for every webhook category. One instance is shared across requests;
// it holds no per-event state.
type Processor struct {
	DB     *gorm.DB
	Sender notifService.Sender
}

func NewProcessor(db *gorm.DB, sender notifService.Sender) *Processor {
	return &Processor{DB: db, Sender: sender}
}

// Result is what a category handler reports back to the router for the
// audit row.
type Result struct {
	ContributionID *int64
	Status         string // processed | ignored
	Note           string // error_message column for ignored outcomes
}

func processed(id *int64) Result {
	return Result{ContributionID: id, Status: model.EventStatusProcessed}
}

func ignored(note string) Result {
	return Result{Status: model.EventStatusIgnored, Note: note}
}

const noteNoMatch = "No matching contribution"
