package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/KrikINS/floor-ready/internal/core/catalog"
	"github.com/KrikINS/floor-ready/internal/core/identity"
	"github.com/KrikINS/floor-ready/internal/core/task"
)

// CatalogService manages events and cost centers.
type CatalogService struct {
	store    catalog.Store
	identity identity.Provider
	log      zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(store catalog.Store, provider identity.Provider, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		store:    store,
		identity: provider,
		log:      log.With().Str("component", "catalog-service").Logger(),
	}
}

// NewEventInput holds the fields of a new event.
type NewEventInput struct {
	Name     string     `json:"name" validate:"required,max=200"`
	Venue    string     `json:"venue" validate:"max=200"`
	StartsAt *time.Time `json:"starts_at"`
}

// CreateEvent adds an event. Admin or Manager only.
func (s *CatalogService) CreateEvent(ctx context.Context, in NewEventInput) (catalog.Event, error) {
	if err := s.authorize(ctx); err != nil {
		return catalog.Event{}, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return catalog.Event{}, err
	}

	e := catalog.Event{Name: in.Name, Venue: strings.TrimSpace(in.Venue), StartsAt: in.StartsAt}
	if err := s.store.CreateEvent(ctx, &e); err != nil {
		return catalog.Event{}, storeErr("create event", err)
	}

	s.log.Info().Str("event_id", e.ID).Str("name", e.Name).Msg("event created")
	return e, nil
}

// ListEvents returns events by start time, undated last.
func (s *CatalogService) ListEvents(ctx context.Context) ([]catalog.Event, error) {
	if _, err := currentActor(ctx, s.identity); err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	return events, nil
}

// NewCostCenterInput holds the fields of a new cost center.
type NewCostCenterInput struct {
	Code  string `json:"code" validate:"required,alphanum,max=16"`
	Title string `json:"title" validate:"required,max=120"`
}

// CreateCostCenter adds a cost center. Codes are unique and case-insensitive.
func (s *CatalogService) CreateCostCenter(ctx context.Context, in NewCostCenterInput) (catalog.CostCenter, error) {
	if err := s.authorize(ctx); err != nil {
		return catalog.CostCenter{}, err
	}

	in.Code = strings.TrimSpace(in.Code)
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return catalog.CostCenter{}, err
	}

	c := catalog.CostCenter{Code: in.Code, Title: in.Title}
	if err := s.store.CreateCostCenter(ctx, &c); err != nil {
		if errors.Is(err, catalog.ErrDuplicate) {
			return catalog.CostCenter{}, fmt.Errorf("create cost center: %w: code %s is taken", task.ErrValidation, strings.ToUpper(in.Code))
		}
		return catalog.CostCenter{}, storeErr("create cost center", err)
	}

	s.log.Info().Str("cost_center_id", c.ID).Str("code", c.Code).Msg("cost center created")
	return c, nil
}

// ListCostCenters returns cost centers ordered by code.
func (s *CatalogService) ListCostCenters(ctx context.Context) ([]catalog.CostCenter, error) {
	if _, err := currentActor(ctx, s.identity); err != nil {
		return nil, err
	}
	centers, err := s.store.ListCostCenters(ctx)
	if err != nil {
		return nil, storeErr("list cost centers", err)
	}
	return centers, nil
}

func (s *CatalogService) authorize(ctx context.Context) error {
	actor, err := currentActor(ctx, s.identity)
	if err != nil {
		return err
	}
	return requirePrivileged(actor, "manage events and cost centers")
}
