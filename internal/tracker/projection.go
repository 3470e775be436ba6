package tracker

import (
	"context"
	"errors"

	"github.com/KrikINS/floor-ready/internal/core/blob"
	"github.com/KrikINS/floor-ready/internal/core/catalog"
	"github.com/KrikINS/floor-ready/internal/core/identity"
	"github.com/KrikINS/floor-ready/internal/core/inventory"
	"github.com/KrikINS/floor-ready/internal/core/task"
)

// projector joins tasks with their references. Lookups are memoized for the
// lifetime of one query so a list touches each member, event and cost
// center once.
type projector struct {
	tasks     task.Store
	members   identity.MemberStore
	catalog   catalog.Store
	inventory inventory.Store
	blobs     blob.Store

	memberRefs map[string]*task.MemberRef
	eventRefs  map[string]*task.EventRef
	centerRefs map[string]*task.CostCenterRef
}

// View builds the projection of t. References that no longer resolve are
// left empty.
func (p *projector) View(ctx context.Context, t task.Task) (task.View, error) {
	v := task.NewView(t)

	var err error
	if v.Assignee, err = p.member(ctx, t.AssigneeID); err != nil {
		return task.View{}, err
	}
	if v.Event, err = p.event(ctx, t.EventID); err != nil {
		return task.View{}, err
	}
	if v.CostCenter, err = p.costCenter(ctx, t.CostCenterID); err != nil {
		return task.View{}, err
	}

	if v.Reservations, err = p.inventory.ReservationsForTask(ctx, t.ID); err != nil {
		return task.View{}, storeErr("load reservations", err)
	}

	attachments, err := p.tasks.Attachments(ctx, t.ID)
	if err != nil {
		return task.View{}, storeErr("load attachments", err)
	}
	for i := range attachments {
		attachments[i].URL = p.blobs.PublicURL(attachments[i].FilePath)
	}
	v.Attachments = attachments

	return v, nil
}

func (p *projector) member(ctx context.Context, id string) (*task.MemberRef, error) {
	if id == "" {
		return nil, nil
	}
	if ref, ok := p.memberRefs[id]; ok {
		return ref, nil
	}

	m, err := p.members.Get(ctx, id)
	switch {
	case errors.Is(err, identity.ErrNotFound):
		p.memberRefs[id] = nil
		return nil, nil
	case err != nil:
		return nil, storeErr("load assignee", err)
	}

	ref := &task.MemberRef{ID: m.ID, Name: m.Name, AvatarURL: m.AvatarURL}
	p.memberRefs[id] = ref
	return ref, nil
}

func (p *projector) event(ctx context.Context, id string) (*task.EventRef, error) {
	if id == "" {
		return nil, nil
	}
	if ref, ok := p.eventRefs[id]; ok {
		return ref, nil
	}

	e, err := p.catalog.GetEvent(ctx, id)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		p.eventRefs[id] = nil
		return nil, nil
	case err != nil:
		return nil, storeErr("load event", err)
	}

	ref := &task.EventRef{ID: e.ID, Name: e.Name}
	p.eventRefs[id] = ref
	return ref, nil
}

func (p *projector) costCenter(ctx context.Context, id string) (*task.CostCenterRef, error) {
	if id == "" {
		return nil, nil
	}
	if ref, ok := p.centerRefs[id]; ok {
		return ref, nil
	}

	c, err := p.catalog.GetCostCenter(ctx, id)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		p.centerRefs[id] = nil
		return nil, nil
	case err != nil:
		return nil, storeErr("load cost center", err)
	}

	ref := &task.CostCenterRef{ID: c.ID, Code: c.Code, Title: c.Title}
	p.centerRefs[id] = ref
	return ref, nil
}
