package tracker

import (
	"github.com/rs/zerolog"

	"github.com/KrikINS/floor-ready/internal/auth"
	"github.com/KrikINS/floor-ready/internal/core/blob"
	"github.com/KrikINS/floor-ready/internal/core/config"
	"github.com/KrikINS/floor-ready/internal/core/eventbus"
	"github.com/KrikINS/floor-ready/internal/core/identity"
	"github.com/KrikINS/floor-ready/internal/data/db"
	"github.com/KrikINS/floor-ready/internal/data/stores"
)

// App is the central entry point for all tracker operations.
// Commands and the HTTP API consume App instead of cherry-picking raw dependencies.
type App struct {
	Tasks     *TaskService
	Team      *TeamService
	Inventory *InventoryService
	Catalog   *CatalogService
	Reports   *ReportService

	Members identity.MemberStore
	Tokens  *auth.Tokens
	Blobs   blob.Store
	Config  *config.Config
	DB      *db.DB
	Bus     *eventbus.EventBus
}

// NewApp wires the services over the SQLite stores. provider resolves the
// acting member for every call; tokens may be nil when no secret is set.
func NewApp(
	cfg *config.Config,
	database *db.DB,
	blobs blob.Store,
	provider identity.Provider,
	tokens *auth.Tokens,
	bus *eventbus.EventBus,
	log zerolog.Logger,
) *App {
	members := stores.NewMemberStore(database)
	catalogStore := stores.NewCatalogStore(database)
	inventoryStore := stores.NewInventoryStore(database)

	tasks := NewTaskService(TaskDeps{
		Tasks:     stores.NewTaskStore(database),
		Members:   members,
		Catalog:   catalogStore,
		Inventory: inventoryStore,
		Blobs:     blobs,
		Identity:  provider,
	}, bus, log)

	return &App{
		Tasks:     tasks,
		Team:      NewTeamService(members, provider, tokens, log),
		Inventory: NewInventoryService(inventoryStore, provider, log),
		Catalog:   NewCatalogService(catalogStore, provider, log),
		Reports:   NewReportService(tasks, log),
		Members:   members,
		Tokens:    tokens,
		Blobs:     blobs,
		Config:    cfg,
		DB:        database,
		Bus:       bus,
	}
}
