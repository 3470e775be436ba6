package tracker

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrikINS/floor-ready/internal/core/eventbus"
	"github.com/KrikINS/floor-ready/internal/core/identity"
	"github.com/KrikINS/floor-ready/internal/core/inventory"
	"github.com/KrikINS/floor-ready/internal/core/task"
)

func TestTaskService_FullLifecycle(t *testing.T) {
	fx := newFixture(t)
	admin := fx.member(t, "ada", identity.RoleAdmin, identity.StatusActive)
	emp := fx.member(t, "eve", identity.RoleEmployee, identity.StatusActive)
	asEmp, asAdmin := as(emp), as(admin)

	created := fx.createTask(t, asEmp, CreateInput{
		Title:            "Stage lighting",
		AssigneeID:       emp.ID,
		CostToClient:     ptr(100.0),
		BillableQuantity: ptr(3.0),
	})
	assert.Equal(t, task.StatusPending, created.Status)
	assert.Equal(t, task.PriorityMedium, created.Priority)
	assert.Equal(t, int64(1), created.Version)

	acked, err := fx.app.Tasks.Advance(asEmp, created.ID, AdvanceInput{})
	require.NoError(t, err)
	assert.Equal(t, task.StatusAcknowledged, acked.Status)
	require.NotNil(t, acked.AcknowledgedAt)

	started, err := fx.app.Tasks.Advance(asEmp, created.ID, AdvanceInput{
		Edits: task.Edits{ActualCost: ptr("40"), VendorName: ptr("Bright Co")},
	})
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, started.Status)
	require.NotNil(t, started.StartedAt)
	startedAt := *started.StartedAt

	submitted, err := fx.app.Tasks.Advance(asEmp, created.ID, AdvanceInput{Target: task.StatusAwaitingApproval})
	require.NoError(t, err)
	assert.Equal(t, task.StatusAwaitingApproval, submitted.Status)

	// The assignee is locked out while review is pending.
	_, err = fx.app.Tasks.Advance(asEmp, created.ID, AdvanceInput{})
	require.ErrorIs(t, err, task.ErrUnauthorized)

	rejected, err := fx.app.Tasks.Reject(asAdmin, created.ID, "missing receipt", 0)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, rejected.Status)
	require.NotNil(t, rejected.StartedAt)
	assert.True(t, startedAt.Equal(*rejected.StartedAt), "reject keeps started_at")
	assert.Nil(t, rejected.CompletedAt)

	_, err = fx.app.Tasks.Advance(asEmp, created.ID, AdvanceInput{})
	require.NoError(t, err)

	approved, err := fx.app.Tasks.Approve(asAdmin, created.ID, "", 0)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, approved.Status)
	require.NotNil(t, approved.CompletedAt)
	assert.False(t, approved.CompletedAt.Before(approved.CreatedAt))

	_, err = fx.app.Tasks.Advance(asAdmin, created.ID, AdvanceInput{})
	require.ErrorIs(t, err, task.ErrInvalidTransition)

	v, err := fx.app.Tasks.Get(asEmp, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Profit{PerUnit: 60, Net: 180}, v.Profit)
	assert.Equal(t, task.ProgressInfo{Step: 4, Steps: 5, Fraction: 1}, v.Progress)
	require.NotNil(t, v.Assignee)
	assert.Equal(t, "eve", v.Assignee.Name)
	require.NotNil(t, v.VendorName)
	assert.Equal(t, "Bright Co", *v.VendorName)

	history, err := fx.app.Tasks.History(asEmp, created.ID)
	require.NoError(t, err)
	kinds := make([]task.EventKind, 0, len(history))
	for _, ev := range history {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []task.EventKind{
		task.EventCreated,
		task.EventTransition,
		task.EventTransition,
		task.EventTransition,
		task.EventRejected,
		task.EventTransition,
		task.EventApproved,
	}, kinds)
	assert.Equal(t, "missing receipt", history[4].Comment)
	assert.Equal(t, admin.ID, history[4].ActorID)

	fx.bus.AssertPublished(t, eventbus.EventTaskCreated)
	fx.bus.AssertPublished(t, eventbus.EventTaskTransitioned)
}

func TestTaskService_ObserverLeavesRowUnchanged(t *testing.T) {
	fx := newFixture(t)
	emp := fx.member(t, "eve", identity.RoleEmployee, identity.StatusActive)
	other := fx.member(t, "olly", identity.RoleEmployee, identity.StatusActive)
	created := fx.createTask(t, as(emp), CreateInput{Title: "Badges", AssigneeID: emp.ID})

	_, err := fx.app.Tasks.Advance(as(other), created.ID, AdvanceInput{Edits: task.Edits{VendorName: ptr("x")}})
	require.ErrorIs(t, err, task.ErrUnauthorized)

	_, err = fx.app.Tasks.Reject(as(other), created.ID, "", 0)
	require.ErrorIs(t, err, task.ErrUnauthorized)

	v, err := fx.app.Tasks.Get(as(other), created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, v.Status)
	assert.Equal(t, int64(1), v.Version)
	assert.Nil(t, v.VendorName)
	assert.Nil(t, v.AcknowledgedAt)
}

func TestTaskService_SuspendedAssigneeCannotAdvance(t *testing.T) {
	fx := newFixture(t)
	emp := fx.member(t, "eve", identity.RoleEmployee, identity.StatusActive)
	created := fx.createTask(t, as(emp), CreateInput{Title: "Badges", AssigneeID: emp.ID})

	suspended := emp
	suspended.Status = identity.StatusSuspended

	_, err := fx.app.Tasks.Advance(as(suspended), created.ID, AdvanceInput{})
	require.ErrorIs(t, err, task.ErrUnauthorized)
}

func TestTaskService_ReissueIsNoOp(t *testing.T) {
	fx := newFixture(t)
	emp := fx.member(t, "eve", identity.RoleEmployee, identity.StatusActive)
	ctx := as(emp)
	created := fx.createTask(t, ctx, CreateInput{Title: "Badges", AssigneeID: emp.ID})

	acked, err := fx.app.Tasks.Advance(ctx, created.ID, AdvanceInput{})
	require.NoError(t, err)

	again, err := fx.app.Tasks.Advance(ctx, created.ID, AdvanceInput{Target: task.StatusAcknowledged})
	require.NoError(t, err)
	assert.Equal(t, acked.Version, again.Version)
	assert.Equal(t, task.StatusAcknowledged, again.Status)

	history, err := fx.app.Tasks.History(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestTaskService_ReissueWithEdits(t *testing.T) {
	fx := newFixture(t)
	admin := fx.member(t, "ada", identity.RoleAdmin, identity.StatusActive)
	emp := fx.member(t, "eve", identity.RoleEmployee, identity.StatusActive)
	ctx := as(emp)
	created := fx.createTask(t, ctx, CreateInput{Title: "Badges", AssigneeID: emp.ID})

	_, err := fx.app.Tasks.Advance(as(admin), created.ID, AdvanceInput{Target: task.StatusPending})
	require.ErrorIs(t, err, task.ErrUnauthorized, "admin is not the assignee")

	started := fx.advanceTo(t, ctx, created.ID, task.StatusInProgress)

	_, err = fx.app.Tasks.Advance(ctx, created.ID, AdvanceInput{
		Target: task.StatusInProgress,
		Edits:  task.Edits{ActualCost: ptr("-5")},
	})
	require.ErrorIs(t, err, task.ErrValidation)

	saved, err := fx.app.Tasks.Advance(ctx, created.ID, AdvanceInput{
		Target: task.StatusInProgress,
		Edits:  task.Edits{VendorName: ptr("Acme Print")},
	})
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, saved.Status)
	assert.Equal(t, started.Version+1, saved.Version)

	v, err := fx.app.Tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, v.VendorName)
	assert.Equal(t, "Acme Print", *v.VendorName)

	history, err := fx.app.Tasks.History(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.EventFulfillment, history[len(history)-1].Kind)
	fx.bus.AssertPublished(t, eventbus.EventTaskFulfillmentSaved)
}

func TestTaskService_AdvanceErrors(t *testing.T) {
	fx := newFixture(t)
	admin := fx.member(t, "ada", identity.RoleAdmin, identity.StatusActive)
	emp := fx.member(t, "eve", identity.RoleEmployee, identity.StatusActive)
	created := fx.createTask(t, as(emp), CreateInput{Title: "Badges", AssigneeID: emp.ID})

	t.Run("skipping a state", func(t *testing.T) {
		_, err := fx.app.Tasks.Advance(as(emp), created.ID, AdvanceInput{Target: task.StatusInProgress})
		require.ErrorIs(t, err, task.ErrInvalidTransition)
	})

	t.Run("admin cannot advance for the assignee", func(t *testing.T) {
		_, err := fx.app.Tasks.Advance(as(admin), created.ID, AdvanceInput{})
		require.ErrorIs(t, err, task.ErrUnauthorized)
	})

	t.Run("approve before submission", func(t *testing.T) {
		_, err := fx.app.Tasks.Approve(as(admin), created.ID, "", 0)
		require.ErrorIs(t, err, task.ErrInvalidTransition)
	})

	t.Run("stale version", func(t *testing.T) {
		_, err := fx.app.Tasks.Advance(as(emp), created.ID, AdvanceInput{ExpectedVersion: 7})
		require.ErrorIs(t, err, task.ErrConflict)
	})

	t.Run("negative cost in edits", func(t *testing.T) {
		_, err := fx.app.Tasks.Advance(as(emp), created.ID, AdvanceInput{Edits: task.Edits{ActualCost: ptr("-5")}})
		require.ErrorIs(t, err, task.ErrValidation)
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := fx.app.Tasks.Advance(as(emp), "missing", AdvanceInput{})
		require.ErrorIs(t, err, task.ErrNotFound)
	})

	t.Run("no actor", func(t *testing.T) {
		_, err := fx.app.Tasks.Advance(context.Background(), created.ID, AdvanceInput{})
		require.ErrorIs(t, err, task.ErrUnauthorized)
	})
}

func TestTaskService_Create(t *testing.T) {
	fx := newFixture(t)
	admin := fx.member(t, "ada", identity.RoleAdmin, identity.StatusActive)
	pending := fx.member(t, "pat", identity.RoleEmployee, identity.StatusPending)

	item, err := fx.app.Inventory.CreateItem(as(admin), NewItemInput{Name: "Cable", Unit: "m", Stock: 50})
	require.NoError(t, err)
	ev, err := fx.app.Catalog.CreateEvent(as(admin), NewEventInput{Name: "Expo"})
	require.NoError(t, err)
	cc, err := fx.app.Catalog.CreateCostCenter(as(admin), NewCostCenterInput{Code: "ops", Title: "Operations"})
	require.NoError(t, err)

	t.Run("with references and reservations", func(t *testing.T) {
		created := fx.createTask(t, as(admin), CreateInput{
			Title:            "  Run cables  ",
			Priority:         task.PriorityHigh,
			EventID:          ev.ID,
			CostCenterID:     cc.ID,
			ItemIDs:          []string{item.ID, item.ID},
			QuantityRequired: 12,
		})
		assert.Equal(t, "Run cables", created.Title)

		v, err := fx.app.Tasks.Get(as(admin), created.ID)
		require.NoError(t, err)
		require.NotNil(t, v.Event)
		assert.Equal(t, "Expo", v.Event.Name)
		require.NotNil(t, v.CostCenter)
		assert.Equal(t, "OPS", v.CostCenter.Code)
		require.Len(t, v.Reservations, 1)
		assert.Equal(t, 12, v.Reservations[0].QuantityRequired)

		items, err := fx.app.Inventory.ListItems(as(admin))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 50, items[0].Stock, "reserving does not move stock")
	})

	tests := []struct {
		name string
		ctx  context.Context
		in   CreateInput
		want error
	}{
		{"missing title", as(admin), CreateInput{Title: "   "}, task.ErrValidation},
		{"bad priority", as(admin), CreateInput{Title: "x", Priority: "Whenever"}, task.ErrValidation},
		{"unknown assignee", as(admin), CreateInput{Title: "x", AssigneeID: "ghost"}, task.ErrValidation},
		{"unknown event", as(admin), CreateInput{Title: "x", EventID: "ghost"}, task.ErrValidation},
		{"unknown cost center", as(admin), CreateInput{Title: "x", CostCenterID: "ghost"}, task.ErrValidation},
		{"unknown item", as(admin), CreateInput{Title: "x", ItemIDs: []string{"ghost"}, QuantityRequired: 1}, task.ErrValidation},
		{"items without quantity", as(admin), CreateInput{Title: "x", ItemIDs: []string{item.ID}}, task.ErrValidation},
		{"negative price", as(admin), CreateInput{Title: "x", CostToClient: ptr(-1.0)}, task.ErrValidation},
		{"pending member", as(pending), CreateInput{Title: "x"}, task.ErrUnauthorized},
		{"nobody", context.Background(), CreateInput{Title: "x"}, task.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.app.Tasks.Create(tt.ctx, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unknown item leaves no task behind", func(t *testing.T) {
		views, err := fx.app.Tasks.List(as(admin), task.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, views, 1)
	})
}

func TestTaskService_CreateAttachments(t *testing.T) {
	fx := newFixture(t)
	emp := fx.member(t, "eve", identity.RoleEmployee, identity.StatusActive)

	created := fx.createTask(t, as(emp), CreateInput{
		Title:      "Floor plan",
		AssigneeID: emp.ID,
		Attachments: []FileInput{
			pngFile("plan v1.png"),
			{Name: "notes.txt", ContentType: "text/plain", Body: strings.NewReader("hello")},
		},
	})

	v, err := fx.app.Tasks.Get(as(emp), created.ID)
	require.NoError(t, err)
	require.Len(t, v.Attachments, 1, "the rejected file is skipped and the task kept")

	a := v.Attachments[0]
	assert.Equal(t, task.ContextCreation, a.Context)
	assert.Equal(t, "plan_v1.png", a.FileName)
	assert.Equal(t, "image/png", a.FileType)
	assert.Equal(t, emp.ID, a.UploadedBy)
	assert.True(t, strings.HasPrefix(a.FilePath, "tasks/"+created.ID+"/"))
	assert.Equal(t, "http://files.test/"+a.FilePath, a.URL)

	data, err := os.ReadFile(filepath.Join(fx.blobs.Dir(), filepath.FromSlash(a.FilePath)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestTaskService_CreateAttachmentsByNonParticipant(t *testing.T) {
	fx := newFixture(t)
	fx.member(t, "ada", identity.RoleAdmin, identity.StatusActive)
	emp := fx.member(t, "eve", identity.RoleEmployee, identity.StatusActive)
	crew := fx.member(t, "carl", identity.RoleEmployee, identity.StatusActive)

	created := fx.createTask(t, as(emp), CreateInput{
		Title:       "Stage brief",
		AssigneeID:  crew.ID,
		Attachments: []FileInput{pngFile("brief.png")},
	})

	v, err := fx.app.Tasks.Get(as(crew), created.ID)
	require.NoError(t, err)
	require.Len(t, v.Attachments, 1)
	assert.Equal(t, emp.ID, v.Attachments[0].UploadedBy)

	_, err = fx.app.Tasks.Upload(as(emp), created.ID, UploadInput{FileInput: pngFile("later.png"), Context: task.ContextCreation})
	require.ErrorIs(t, err, task.ErrUnauthorized, "only the create call bypasses participation")
}

func TestTaskService_Upload(t *testing.T) {
	fx := newFixture(t)
	admin := fx.member(t, "ada", identity.RoleAdmin, identity.StatusActive)
	emp := fx.member(t, "eve", identity.RoleEmployee, identity.StatusActive)
	other := fx.member(t, "olly", identity.RoleEmployee, identity.StatusActive)
	created := fx.createTask(t, as(emp), CreateInput{Title: "Signage", AssigneeID: emp.ID})

	t.Run("size limit applies to admins too", func(t *testing.T) {
		big := bytes.Repeat([]byte{0}, task.MaxAttachmentSize+1)
		_, err := fx.app.Tasks.Upload(as(admin), created.ID, UploadInput{
			FileInput: FileInput{Name: "big.pdf", ContentType: "application/pdf", Body: bytes.NewReader(big)},
			Context:   task.ContextComment,
		})
		require.ErrorIs(t, err, task.ErrValidation)
		assert.Contains(t, err.Error(), "10 MiB")
	})

	t.Run("submission before work starts", func(t *testing.T) {
		_, err := fx.app.Tasks.Upload(as(emp), created.ID, UploadInput{FileInput: pngFile("a.png"), Context: task.ContextSubmission})
		require.ErrorIs(t, err, task.ErrUnauthorized)
	})

	t.Run("observer comment", func(t *testing.T) {
		_, err := fx.app.Tasks.Upload(as(other), created.ID, UploadInput{FileInput: pngFile("a.png"), Context: task.ContextComment})
		require.ErrorIs(t, err, task.ErrUnauthorized)
	})

	t.Run("unknown context", func(t *testing.T) {
		_, err := fx.app.Tasks.Upload(as(emp), created.ID, UploadInput{FileInput: pngFile("a.png"), Context: "selfie"})
		require.ErrorIs(t, err, task.ErrValidation)
	})

	t.Run("submission while in progress", func(t *testing.T) {
		fx.advanceTo(t, as(emp), created.ID, task.StatusInProgress)

		a, err := fx.app.Tasks.Upload(as(emp), created.ID, UploadInput{FileInput: pngFile("receipt.png"), Context: task.ContextSubmission})
		require.NoError(t, err)
		assert.Equal(t, task.ContextSubmission, a.Context)
		assert.NotEmpty(t, a.URL)
		fx.bus.AssertPublished(t, eventbus.EventAttachmentUploaded)

		_, err = fx.app.Tasks.Upload(as(admin), created.ID, UploadInput{FileInput: pngFile("x.png"), Context: task.ContextCreation})
		require.ErrorIs(t, err, task.ErrUnauthorized, "creation files need a pending task")
	})

	t.Run("admin cannot submit evidence", func(t *testing.T) {
		_, err := fx.app.Tasks.Upload(as(admin), created.ID, UploadInput{FileInput: pngFile("x.png"), Context: task.ContextSubmission})
		require.ErrorIs(t, err, task.ErrUnauthorized)
	})
}

func TestTaskService_SaveFulfillment(t *testing.T) {
	fx := newFixture(t)
	admin := fx.member(t, "ada", identity.RoleAdmin, identity.StatusActive)
	emp := fx.member(t, "eve", identity.RoleEmployee, identity.StatusActive)
	created := fx.createTask(t, as(emp), CreateInput{Title: "Catering", AssigneeID: emp.ID})

	_, err := fx.app.Tasks.SaveFulfillment(as(emp), created.ID, task.Edits{VendorName: ptr("Chef")}, 0)
	require.ErrorIs(t, err, task.ErrValidation, "hidden before work starts")

	fx.advanceTo(t, as(emp), created.ID, task.StatusInProgress)

	saved, err := fx.app.Tasks.SaveFulfillment(as(emp), created.ID, task.Edits{
		ActualCost:    ptr("1,250.50"),
		VendorName:    ptr("Chef"),
		VendorContact: ptr("  "),
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, saved.Status)
	require.NotNil(t, saved.ActualCost)
	assert.InDelta(t, 1250.50, *saved.ActualCost, 0.001)
	assert.Nil(t, saved.VendorContact)

	require.True(t, fx.bus.WaitFor(eventbus.EventTaskFulfillmentSaved, time.Second))
	payloads := fx.bus.Of(eventbus.EventTaskFulfillmentSaved)
	require.Len(t, payloads, 1)
	p := payloads[0].(eventbus.TaskFulfillmentSavedPayload)
	assert.Equal(t, []string{"actual_cost", "vendor_name", "vendor_contact"}, p.Fields)

	unchanged, err := fx.app.Tasks.SaveFulfillment(as(emp), created.ID, task.Edits{}, 0)
	require.NoError(t, err)
	assert.Equal(t, saved.Version, unchanged.Version)

	_, err = fx.app.Tasks.Advance(as(emp), created.ID, AdvanceInput{})
	require.NoError(t, err)

	_, err = fx.app.Tasks.SaveFulfillment(as(emp), created.ID, task.Edits{VendorName: ptr("Other")}, 0)
	require.ErrorIs(t, err, task.ErrUnauthorized, "assignee is locked during review")

	reviewed, err := fx.app.Tasks.SaveFulfillment(as(admin), created.ID, task.Edits{VendorName: ptr("Other")}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Other", *reviewed.VendorName)
	assert.Equal(t, task.StatusAwaitingApproval, reviewed.Status)
}

func TestTaskService_Reassign(t *testing.T) {
	fx := newFixture(t)
	mgr := fx.member(t, "max", identity.RoleManager, identity.StatusActive)
	emp := fx.member(t, "eve", identity.RoleEmployee, identity.StatusActive)
	emp2 := fx.member(t, "ed", identity.RoleEmployee, identity.StatusActive)
	created := fx.createTask(t, as(emp), CreateInput{Title: "Shuttle", AssigneeID: emp.ID})

	_, err := fx.app.Tasks.Reassign(as(emp), created.ID, emp2.ID, 0)
	require.ErrorIs(t, err, task.ErrUnauthorized)

	_, err = fx.app.Tasks.Reassign(as(mgr), created.ID, "ghost", 0)
	require.ErrorIs(t, err, task.ErrValidation)

	cleared, err := fx.app.Tasks.Reassign(as(mgr), created.ID, "", 0)
	require.NoError(t, err)
	assert.Empty(t, cleared.AssigneeID)

	moved, err := fx.app.Tasks.Reassign(as(mgr), created.ID, emp2.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, emp2.ID, moved.AssigneeID)

	same, err := fx.app.Tasks.Reassign(as(mgr), created.ID, emp2.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, moved.Version, same.Version)

	fx.advanceTo(t, as(emp2), created.ID, task.StatusInProgress)

	_, err = fx.app.Tasks.Reassign(as(mgr), created.ID, "", 0)
	require.ErrorIs(t, err, task.ErrValidation)

	history, err := fx.app.Tasks.History(as(mgr), created.ID)
	require.NoError(t, err)
	var reassigned []task.Event
	for _, ev := range history {
		if ev.Kind == task.EventReassigned {
			reassigned = append(reassigned, ev)
		}
	}
	require.Len(t, reassigned, 2)
	assert.Equal(t, emp2.ID, reassigned[1].Details["to"])
}

func TestTaskService_Delete(t *testing.T) {
	fx := newFixture(t)
	admin := fx.member(t, "ada", identity.RoleAdmin, identity.StatusActive)
	emp := fx.member(t, "eve", identity.RoleEmployee, identity.StatusActive)
	created := fx.createTask(t, as(emp), CreateInput{
		Title:       "Tear down",
		AssigneeID:  emp.ID,
		Attachments: []FileInput{pngFile("plan.png")},
	})

	v, err := fx.app.Tasks.Get(as(emp), created.ID)
	require.NoError(t, err)
	require.Len(t, v.Attachments, 1)
	blobPath := filepath.Join(fx.blobs.Dir(), filepath.FromSlash(v.Attachments[0].FilePath))

	err = fx.app.Tasks.Delete(as(emp), created.ID)
	require.ErrorIs(t, err, task.ErrUnauthorized)

	require.NoError(t, fx.app.Tasks.Delete(as(admin), created.ID))
	fx.bus.AssertPublished(t, eventbus.EventTaskDeleted)

	_, err = fx.app.Tasks.Get(as(admin), created.ID)
	require.ErrorIs(t, err, task.ErrNotFound)

	_, err = fx.app.Tasks.History(as(admin), created.ID)
	require.ErrorIs(t, err, task.ErrNotFound)

	_, err = os.Stat(blobPath)
	assert.NoError(t, err, "stored files outlive the task")
}

func TestTaskService_List(t *testing.T) {
	fx := newFixture(t)
	emp := fx.member(t, "eve", identity.RoleEmployee, identity.StatusActive)
	emp2 := fx.member(t, "ed", identity.RoleEmployee, identity.StatusActive)
	ctx := as(emp)

	a := fx.createTask(t, ctx, CreateInput{Title: "A", AssigneeID: emp.ID})
	fx.createTask(t, ctx, CreateInput{Title: "B", AssigneeID: emp2.ID})
	fx.createTask(t, ctx, CreateInput{Title: "C", AssigneeID: emp.ID})
	fx.advanceTo(t, ctx, a.ID, task.StatusAcknowledged)

	mine, err := fx.app.Tasks.List(ctx, task.ListFilter{AssigneeID: emp.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	acked, err := fx.app.Tasks.List(ctx, task.ListFilter{Status: task.StatusAcknowledged})
	require.NoError(t, err)
	require.Len(t, acked, 1)
	assert.Equal(t, "A", acked[0].Title)
	require.NotNil(t, acked[0].Assignee)
	assert.Equal(t, "eve", acked[0].Assignee.Name)

	newest, err := fx.app.Tasks.List(ctx, task.ListFilter{Order: task.OrderNewest})
	require.NoError(t, err)
	require.Len(t, newest, 3)
	assert.Equal(t, "C", newest[0].Title)

	_, err = fx.app.Tasks.List(ctx, task.ListFilter{Order: "random"})
	require.ErrorIs(t, err, task.ErrValidation)

	_, err = fx.app.Tasks.List(ctx, task.ListFilter{Status: "Done"})
	require.ErrorIs(t, err, task.ErrValidation)
}

func TestStoreErr(t *testing.T) {
	err := storeErr("load task", task.ErrNotFound)
	assert.ErrorIs(t, err, task.ErrNotFound)
	assert.NotErrorIs(t, err, task.ErrPersistence)

	err = storeErr("load task", inventory.ErrNotFound)
	assert.True(t, IsNotFound(err))

	err = storeErr("load task", assert.AnError)
	assert.ErrorIs(t, err, task.ErrPersistence)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), assert.AnError.Error())

	assert.NoError(t, storeErr("noop", nil))
}
