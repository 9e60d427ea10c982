package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sanjshine99/carepath/internal/geo"
	"github.com/sanjshine99/carepath/internal/model"
)

// orchestratorCareReceiverRepository defines the data access the
// Orchestrator needs to resolve the set of receivers a run covers.
type orchestratorCareReceiverRepository interface {
	ListActive(ctx context.Context) ([]model.CareReceiver, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.CareReceiver, error)
}

// ReceiverScheduleResult pairs a care receiver with its generate outcome.
// NotFound is set, with Scheduled/Failed left empty, when CareReceiverID was
// explicitly requested but did not resolve to an existing care receiver;
// entity-not-found in a bulk operation is recorded in the result list and
// the run continues.
type ReceiverScheduleResult struct {
	CareReceiverID uuid.UUID           `json:"care_receiver_id"`
	NotFound       bool                `json:"not_found,omitempty"`
	Scheduled      []model.Appointment `json:"scheduled"`
	Failed         []FailedVisit       `json:"failed"`
}

// RunResult is the bulk driver's return shape: one entry per receiver plus
// a summary.
type RunResult struct {
	Results []ReceiverScheduleResult `json:"results"`
	Summary RunSummary               `json:"summary"`
}

// Orchestrator iterates a date range for each care receiver, expands each
// visit template via the Assignment Engine, and hands a run summary to the
// Notifier on completion. It is the only component that knows about
// bulk/"all active receivers" mode and notification handoff; per-receiver
// scheduling logic itself lives in AssignmentEngine.
type Orchestrator struct {
	receivers orchestratorCareReceiverRepository
	engine    *AssignmentEngine
	notifier  Notifier
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(receivers orchestratorCareReceiverRepository, engine *AssignmentEngine, notifier Notifier) *Orchestrator {
	if notifier == nil {
		notifier = NewLoggingNotifier()
	}
	return &Orchestrator{receivers: receivers, engine: engine, notifier: notifier}
}

// Generate runs the Assignment Engine for each of receiverIDs (or, if nil,
// every active care receiver) over [startDate, endDate], in the order
// supplied for explicit ids and otherwise the repository's stable id order.
func (o *Orchestrator) Generate(ctx context.Context, receiverIDs []uuid.UUID, startDate, endDate model.TimeOnlyDate) (*RunResult, error) {
	receivers, missing, err := o.resolveReceivers(ctx, receiverIDs)
	if err != nil {
		return nil, err
	}

	cache := geo.NewTravelCache()
	run := &RunResult{Results: make([]ReceiverScheduleResult, 0, len(receivers)+len(missing))}

	for _, id := range missing {
		run.Results = append(run.Results, ReceiverScheduleResult{CareReceiverID: id, NotFound: true})
		run.Summary.ReceiversNotFound++
	}

	for i := range receivers {
		receiver := &receivers[i]
		result, err := o.engine.GenerateForReceiver(ctx, receiver, startDate, endDate, cache)
		if err != nil {
			return nil, fmt.Errorf("generating schedule for care receiver %s: %w", receiver.ID, err)
		}

		run.Results = append(run.Results, ReceiverScheduleResult{
			CareReceiverID: receiver.ID,
			Scheduled:      result.Scheduled,
			Failed:         result.Failed,
		})
		run.Summary.TotalScheduled += len(result.Scheduled)
		run.Summary.TotalFailed += len(result.Failed)
		run.Summary.CareReceiversProcessed++
	}

	o.notifier.NotifyRunComplete(ctx, run.Summary)
	return run, nil
}

// Unscheduled reports, for every active care receiver (or the ids supplied),
// the visits in [startDate, endDate] that have no appointment and why the
// engine would not be able to schedule one right now. It never materializes
// appointments — this is a read-only report.
func (o *Orchestrator) Unscheduled(ctx context.Context, receiverIDs []uuid.UUID, startDate, endDate model.TimeOnlyDate) ([]ReceiverScheduleResult, error) {
	receivers, missing, err := o.resolveReceivers(ctx, receiverIDs)
	if err != nil {
		return nil, err
	}

	cache := geo.NewTravelCache()
	results := make([]ReceiverScheduleResult, 0, len(receivers)+len(missing))
	for _, id := range missing {
		results = append(results, ReceiverScheduleResult{CareReceiverID: id, NotFound: true})
	}

	for i := range receivers {
		receiver := &receivers[i]
		failed, err := o.engine.PreviewForReceiver(ctx, receiver, startDate, endDate, cache)
		if err != nil {
			return nil, fmt.Errorf("previewing schedule for care receiver %s: %w", receiver.ID, err)
		}
		if len(failed) > 0 {
			results = append(results, ReceiverScheduleResult{CareReceiverID: receiver.ID, Failed: failed})
		}
	}
	return results, nil
}

// resolveReceivers resolves receiverIDs (or, if empty, every active care
// receiver) into entities, in the order supplied for explicit ids. Any
// explicit id that does not resolve to an existing care receiver is
// reported in missing rather than failing the whole call.
func (o *Orchestrator) resolveReceivers(ctx context.Context, receiverIDs []uuid.UUID) (receivers []model.CareReceiver, missing []uuid.UUID, err error) {
	if len(receiverIDs) == 0 {
		receivers, err = o.receivers.ListActive(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("listing active care receivers: %w", err)
		}
		return receivers, nil, nil
	}

	found, err := o.receivers.ListByIDs(ctx, receiverIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("listing care receivers: %w", err)
	}

	byID := make(map[uuid.UUID]model.CareReceiver, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	ordered := make([]model.CareReceiver, 0, len(receiverIDs))
	for _, id := range receiverIDs {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		} else {
			missing = append(missing, id)
		}
	}
	return ordered, missing, nil
}
