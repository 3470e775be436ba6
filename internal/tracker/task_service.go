package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/KrikINS/floor-ready/internal/core/blob"
	"github.com/KrikINS/floor-ready/internal/core/catalog"
	"github.com/KrikINS/floor-ready/internal/core/eventbus"
	"github.com/KrikINS/floor-ready/internal/core/identity"
	"github.com/KrikINS/floor-ready/internal/core/inventory"
	"github.com/KrikINS/floor-ready/internal/core/logging"
	"github.com/KrikINS/floor-ready/internal/core/task"
)

// TaskDeps are the collaborators of a TaskService.
type TaskDeps struct {
	Tasks     task.Store
	Members   identity.MemberStore
	Catalog   catalog.Store
	Inventory inventory.Store
	Blobs     blob.Store
	Identity  identity.Provider
}

// TaskService orchestrates the task lifecycle: it resolves the actor, loads
// the task, runs the engine and writes the result with its audit event.
type TaskService struct {
	TaskDeps
	bus *eventbus.EventBus
	log zerolog.Logger
	now func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(deps TaskDeps, bus *eventbus.EventBus, log zerolog.Logger) *TaskService {
	return &TaskService{
		TaskDeps: deps,
		bus:      bus,
		log:      log.With().Str("component", "task-service").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// FileInput is a file supplied by the caller.
type FileInput struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// CreateInput holds the fields of a new task.
type CreateInput struct {
	Title            string        `json:"title" validate:"required,max=200"`
	Description      string        `json:"description" validate:"max=5000"`
	Priority         task.Priority `json:"priority" validate:"omitempty,oneof=Low Medium High Urgent"`
	EventID          string        `json:"event_id"`
	AssigneeID       string        `json:"assignee_id"`
	Deadline         *time.Time    `json:"deadline"`
	CustomID         string        `json:"custom_id" validate:"max=64"`
	CostToClient     *float64      `json:"cost_to_client" validate:"omitempty,gte=0"`
	UnitType         string        `json:"unit_type" validate:"max=64"`
	BillableQuantity *float64      `json:"billable_quantity" validate:"omitempty,gte=0"`
	Comments         string        `json:"profitability_comments"`
	CostCenterID     string        `json:"cost_center_id"`
	ItemIDs          []string      `json:"item_ids"`
	QuantityRequired int           `json:"quantity_required" validate:"gte=0"`
	Attachments      []FileInput   `json:"-" validate:"-"`
}

// Create stores a new Pending task with its reservations. Creation files are
// uploaded afterwards on a best-effort basis: failures are logged and the
// task is kept.
func (s *TaskService) Create(ctx context.Context, in CreateInput) (task.Task, error) {
	actor, err := currentActor(ctx, s.Identity)
	if err != nil {
		return task.Task{}, err
	}
	if err := requireActive(actor); err != nil {
		return task.Task{}, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return task.Task{}, err
	}
	if err := s.checkReferences(ctx, in); err != nil {
		return task.Task{}, err
	}

	now := s.now()
	reservations, err := inventory.Reserve(in.ItemIDs, in.QuantityRequired, now)
	if err != nil {
		return task.Task{}, fmt.Errorf("%w: %w", task.ErrValidation, err)
	}

	priority := in.Priority
	if priority == "" {
		priority = task.PriorityMedium
	}

	t := task.Task{
		CustomID:    strings.TrimSpace(in.CustomID),
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		Status:      task.StatusPending,
		EventID:     in.EventID,
		AssigneeID:  in.AssigneeID,
		Deadline:    in.Deadline,
		CreatedAt:   now,
		Profitability: task.Profitability{
			CostToClient:     in.CostToClient,
			UnitType:         in.UnitType,
			BillableQuantity: in.BillableQuantity,
			Comments:         in.Comments,
			CostCenterID:     in.CostCenterID,
		},
	}

	ev := task.Event{Kind: task.EventCreated, To: task.StatusPending, ActorID: actor.ID, CreatedAt: now}
	if err := s.Tasks.Create(ctx, &t, reservations, ev); err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			return task.Task{}, fmt.Errorf("create task: %w: %w", task.ErrValidation, err)
		}
		return task.Task{}, storeErr("create task", err)
	}

	ctx = logging.WithTaskID(logging.WithActorID(ctx, actor.ID), t.ID)
	s.log.Info().Ctx(ctx).Str("title", t.Title).Msg("task created")
	s.bus.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: t, ActorID: actor.ID})

	for _, f := range in.Attachments {
		if _, err := s.upload(ctx, t, actor, f, task.ContextCreation, task.AuthorizeCreatorUpload); err != nil {
			s.log.Warn().Ctx(ctx).Err(err).Str("file", f.Name).Msg("creation attachment skipped")
		}
	}

	return t, nil
}

func (s *TaskService) checkReferences(ctx context.Context, in CreateInput) error {
	if in.AssigneeID != "" {
		if err := s.memberExists(ctx, in.AssigneeID); err != nil {
			return err
		}
	}
	if in.EventID != "" {
		if _, err := s.Catalog.GetEvent(ctx, in.EventID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return fmt.Errorf("%w: event %s does not exist", task.ErrValidation, in.EventID)
			}
			return storeErr("load event", err)
		}
	}
	if in.CostCenterID != "" {
		if _, err := s.Catalog.GetCostCenter(ctx, in.CostCenterID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return fmt.Errorf("%w: cost center %s does not exist", task.ErrValidation, in.CostCenterID)
			}
			return storeErr("load cost center", err)
		}
	}
	return nil
}

func (s *TaskService) memberExists(ctx context.Context, id string) error {
	if _, err := s.Members.Get(ctx, id); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return fmt.Errorf("%w: member %s does not exist", task.ErrValidation, id)
		}
		return storeErr("load member", err)
	}
	return nil
}

// Get returns the projected view of one task.
func (s *TaskService) Get(ctx context.Context, id string) (task.View, error) {
	if _, err := currentActor(ctx, s.Identity); err != nil {
		return task.View{}, err
	}
	t, err := s.load(ctx, id)
	if err != nil {
		return task.View{}, err
	}
	return s.projector().View(ctx, t)
}

// List returns the projected views of the tasks matching filter.
func (s *TaskService) List(ctx context.Context, filter task.ListFilter) ([]task.View, error) {
	if _, err := currentActor(ctx, s.Identity); err != nil {
		return nil, err
	}
	if filter.Order != "" && !filter.Order.IsValid() {
		return nil, fmt.Errorf("%w: unknown order %q", task.ErrValidation, filter.Order)
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", task.ErrValidation, filter.Status)
	}

	tasks, err := s.Tasks.List(ctx, filter)
	if err != nil {
		return nil, storeErr("list tasks", err)
	}

	p := s.projector()
	views := make([]task.View, 0, len(tasks))
	for _, t := range tasks {
		v, err := p.View(ctx, t)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// History returns the audit trail of a task, oldest first.
func (s *TaskService) History(ctx context.Context, id string) ([]task.Event, error) {
	if _, err := currentActor(ctx, s.Identity); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	events, err := s.Tasks.Events(ctx, id)
	if err != nil {
		return nil, storeErr("list task events", err)
	}
	return events, nil
}

// AdvanceInput drives a status change. An empty Target means the next state.
// A non-zero ExpectedVersion must match the stored version.
type AdvanceInput struct {
	Target          task.Status
	Edits           task.Edits
	Comment         string
	ExpectedVersion int64
}

// Advance moves the task forward, or through the approval branch when it is
// awaiting approval. Re-issuing the current status is a no-op.
func (s *TaskService) Advance(ctx context.Context, id string, in AdvanceInput) (task.Task, error) {
	actor, err := currentActor(ctx, s.Identity)
	if err != nil {
		return task.Task{}, err
	}
	t, err := s.loadVersion(ctx, id, in.ExpectedVersion)
	if err != nil {
		return task.Task{}, err
	}
	return s.transition(ctx, t, actor, in)
}

// Approve completes a task awaiting approval.
func (s *TaskService) Approve(ctx context.Context, id, comment string, expectedVersion int64) (task.Task, error) {
	return s.review(ctx, id, task.StatusCompleted, comment, expectedVersion)
}

// Reject sends a task awaiting approval back to In Progress. Started and
// acknowledged stamps are kept.
func (s *TaskService) Reject(ctx context.Context, id, comment string, expectedVersion int64) (task.Task, error) {
	return s.review(ctx, id, task.StatusInProgress, comment, expectedVersion)
}

func (s *TaskService) review(ctx context.Context, id string, target task.Status, comment string, expectedVersion int64) (task.Task, error) {
	actor, err := currentActor(ctx, s.Identity)
	if err != nil {
		return task.Task{}, err
	}
	t, err := s.loadVersion(ctx, id, expectedVersion)
	if err != nil {
		return task.Task{}, err
	}

	if task.PermissionsFor(t, actor).IsObserver() {
		return task.Task{}, fmt.Errorf("review task: %w: actor %q may not change task %s", task.ErrUnauthorized, actor.ID, t.ID)
	}
	if t.Status.Canonical() != task.StatusAwaitingApproval {
		return task.Task{}, fmt.Errorf("review task: %w: task %s is %s, not awaiting approval", task.ErrInvalidTransition, t.ID, t.Status)
	}

	return s.transition(ctx, t, actor, AdvanceInput{Target: target, Comment: comment})
}

func (s *TaskService) transition(ctx context.Context, t task.Task, actor identity.Actor, in AdvanceInput) (task.Task, error) {
	next, tr, err := task.ApplyTransition(t, actor, in.Target, in.Edits, s.now())
	if err != nil {
		return task.Task{}, fmt.Errorf("advance task: %w", err)
	}
	if tr.NoOp {
		if in.Edits.IsEmpty() {
			return t, nil
		}
		return s.saveFulfillment(ctx, t, next, actor, in.Edits, "advance task")
	}

	ev := tr.Event(t.ID, actor.ID, strings.TrimSpace(in.Comment), s.now())
	if changed := in.Edits.Changed(); len(changed) > 0 {
		ev.Details = map[string]any{"fields": changed}
	}
	if err := s.Tasks.Update(ctx, &next, ev); err != nil {
		return task.Task{}, storeErr("advance task", err)
	}

	ctx = logging.WithTaskID(logging.WithActorID(ctx, actor.ID), t.ID)
	s.log.Info().Ctx(ctx).
		Str("from", string(tr.From)).
		Str("to", string(tr.To)).
		Str("kind", string(tr.Kind)).
		Msg("task transitioned")

	s.bus.PublishTaskTransitioned(eventbus.TaskTransitionedPayload{
		Task:    next,
		From:    tr.From,
		To:      tr.To,
		Kind:    tr.Kind,
		ActorID: actor.ID,
		Comment: ev.Comment,
	})
	return next, nil
}

// SaveFulfillment records vendor and cost data without changing status. An
// empty buffer writes nothing.
func (s *TaskService) SaveFulfillment(ctx context.Context, id string, edits task.Edits, expectedVersion int64) (task.Task, error) {
	actor, err := currentActor(ctx, s.Identity)
	if err != nil {
		return task.Task{}, err
	}
	t, err := s.loadVersion(ctx, id, expectedVersion)
	if err != nil {
		return task.Task{}, err
	}

	next, err := task.SaveFulfillment(t, actor, edits)
	if err != nil {
		return task.Task{}, fmt.Errorf("save fulfillment: %w", err)
	}
	if edits.IsEmpty() {
		return t, nil
	}
	return s.saveFulfillment(ctx, t, next, actor, edits, "save fulfillment")
}

func (s *TaskService) saveFulfillment(ctx context.Context, t, next task.Task, actor identity.Actor, edits task.Edits, op string) (task.Task, error) {
	fields := edits.Changed()
	ev := task.Event{
		TaskID:    t.ID,
		Kind:      task.EventFulfillment,
		ActorID:   actor.ID,
		Details:   map[string]any{"fields": fields},
		CreatedAt: s.now(),
	}
	if err := s.Tasks.Update(ctx, &next, ev); err != nil {
		return task.Task{}, storeErr(op, err)
	}

	s.bus.PublishTaskFulfillmentSaved(eventbus.TaskFulfillmentSavedPayload{Task: next, Fields: fields, ActorID: actor.ID})
	return next, nil
}

// Reassign hands the task to another member, or clears the assignee while
// the task is still early. Setting the current assignee again is a no-op.
func (s *TaskService) Reassign(ctx context.Context, id, assigneeID string, expectedVersion int64) (task.Task, error) {
	actor, err := currentActor(ctx, s.Identity)
	if err != nil {
		return task.Task{}, err
	}
	t, err := s.loadVersion(ctx, id, expectedVersion)
	if err != nil {
		return task.Task{}, err
	}

	next, err := task.Reassign(t, actor, assigneeID)
	if err != nil {
		return task.Task{}, fmt.Errorf("reassign task: %w", err)
	}
	if next.AssigneeID == t.AssigneeID {
		return t, nil
	}
	if next.AssigneeID != "" {
		if err := s.memberExists(ctx, next.AssigneeID); err != nil {
			return task.Task{}, fmt.Errorf("reassign task: %w", err)
		}
	}

	ev := task.Event{
		TaskID:    t.ID,
		Kind:      task.EventReassigned,
		ActorID:   actor.ID,
		Details:   map[string]any{"from": t.AssigneeID, "to": next.AssigneeID},
		CreatedAt: s.now(),
	}
	if err := s.Tasks.Update(ctx, &next, ev); err != nil {
		return task.Task{}, storeErr("reassign task", err)
	}

	s.bus.PublishTaskReassigned(eventbus.TaskReassignedPayload{Task: next, From: t.AssigneeID, ActorID: actor.ID})
	return next, nil
}

// Delete removes the task with its attachment rows, reservations and audit
// trail. Stored files are left in the object store.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	actor, err := currentActor(ctx, s.Identity)
	if err != nil {
		return err
	}
	t, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := task.AuthorizeDelete(t, actor); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if err := s.Tasks.Delete(ctx, t.ID); err != nil {
		return storeErr("delete task", err)
	}

	ctx = logging.WithTaskID(logging.WithActorID(ctx, actor.ID), t.ID)
	s.log.Info().Ctx(ctx).Msg("task deleted")
	s.bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: t.ID, Title: t.Title, ActorID: actor.ID})
	return nil
}

// UploadInput is a file attached to an existing task.
type UploadInput struct {
	FileInput
	Context task.AttachmentContext
}

// Upload validates the file, checks the gating policy, stores the bytes and
// records the attachment. Size and type are checked before the actor's rights.
func (s *TaskService) Upload(ctx context.Context, id string, in UploadInput) (task.Attachment, error) {
	actor, err := currentActor(ctx, s.Identity)
	if err != nil {
		return task.Attachment{}, err
	}
	t, err := s.load(ctx, id)
	if err != nil {
		return task.Attachment{}, err
	}
	return s.upload(ctx, t, actor, in.FileInput, in.Context, task.AuthorizeUpload)
}

type uploadAuthorizer func(task.Task, identity.Actor, task.AttachmentContext) error

func (s *TaskService) upload(ctx context.Context, t task.Task, actor identity.Actor, f FileInput, c task.AttachmentContext, authorize uploadAuthorizer) (task.Attachment, error) {
	if f.Body == nil {
		return task.Attachment{}, fmt.Errorf("upload attachment: %w: no file supplied", task.ErrValidation)
	}
	up, err := task.ReadUpload(f.Name, f.ContentType, f.Body)
	if err != nil {
		return task.Attachment{}, fmt.Errorf("upload attachment: %w", err)
	}
	if err := authorize(t, actor, c); err != nil {
		return task.Attachment{}, fmt.Errorf("upload attachment: %w", err)
	}

	key := blob.TaskKey(t.ID, up.Name)
	if err := s.Blobs.Upload(ctx, key, up.Reader(), up.ContentType); err != nil {
		return task.Attachment{}, storeErr("upload attachment", err)
	}

	now := s.now()
	a := task.Attachment{
		TaskID:     t.ID,
		FileName:   blob.SafeName(up.Name),
		FilePath:   key,
		FileType:   up.ContentType,
		FileSize:   up.Size(),
		UploadedBy: actor.ID,
		Context:    c,
		CreatedAt:  now,
	}
	ev := task.Event{
		TaskID:    t.ID,
		Kind:      task.EventAttachment,
		ActorID:   actor.ID,
		Details:   map[string]any{"file_name": a.FileName, "context": string(c)},
		CreatedAt: now,
	}
	if err := s.Tasks.AddAttachment(ctx, &a, ev); err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Str("key", key).Msg("attachment row not written, stored file is orphaned")
		return task.Attachment{}, storeErr("record attachment", err)
	}
	a.URL = s.Blobs.PublicURL(key)

	s.bus.PublishAttachmentUploaded(eventbus.AttachmentUploadedPayload{Attachment: a, ActorID: actor.ID})
	return a, nil
}

func (s *TaskService) load(ctx context.Context, id string) (task.Task, error) {
	t, err := s.Tasks.Get(ctx, id)
	if err != nil {
		return task.Task{}, storeErr("load task", err)
	}
	return t, nil
}

func (s *TaskService) loadVersion(ctx context.Context, id string, expected int64) (task.Task, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	if expected != 0 && expected != t.Version {
		return task.Task{}, fmt.Errorf("%w: task %s is at version %d, expected %d", task.ErrConflict, t.ID, t.Version, expected)
	}
	return t, nil
}

func (s *TaskService) projector() *projector {
	return &projector{
		tasks:      s.Tasks,
		members:    s.Members,
		catalog:    s.Catalog,
		inventory:  s.Inventory,
		blobs:      s.Blobs,
		memberRefs: map[string]*task.MemberRef{},
		eventRefs:  map[string]*task.EventRef{},
		centerRefs: map[string]*task.CostCenterRef{},
	}
}
