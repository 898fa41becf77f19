// Package wire provides dependency injection for the gtdstore application.
// It creates singleton repositories with lazy initialization.
package wire

import (
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/example/gtdstore/internal/adapters/sqlite"
	"github.com/example/gtdstore/internal/backup"
	"github.com/example/gtdstore/internal/config"
	"github.com/example/gtdstore/internal/db"
	"github.com/example/gtdstore/internal/migrate"
	"github.com/example/gtdstore/internal/ports/secondary"
)

var (
	itemRepo         secondary.ItemRepository
	contextRepo      secondary.ContextRepository
	stakeholderRepo  secondary.StakeholderRepository
	organizationRepo secondary.OrganizationRepository
	assignmentRepo   secondary.AssignmentRepository
	once             sync.Once
)

// Config returns the user configuration, falling back to defaults when no
// config file exists.
func Config() *config.Config {
	home, err := os.UserHomeDir()
	if err != nil {
		return &config.Config{Version: "1"}
	}
	return config.LoadOrDefault(home)
}

// StorePath resolves the store location: the config override when set,
// otherwise the default under the home directory.
func StorePath() string {
	if cfg := Config(); cfg.DBPath != "" {
		return cfg.DBPath
	}
	path, err := db.DefaultPath()
	if err != nil {
		log.Fatalf("failed to resolve store path: %v", err)
	}
	return path
}

// Logger returns the shared structured logger, writing to stderr so command
// output on stdout stays clean.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// Engine builds a migration engine over the configured store. A new engine
// is created per call: migrations need exclusive access to the store file,
// so the engine must not share the repositories' long-lived connection.
func Engine() *migrate.Engine {
	cfg := Config()
	storePath := StorePath()
	return migrate.NewEngine(storePath, migrate.DefaultCatalog(), backup.NewManager(storePath), migrate.Options{
		RiskThreshold:   cfg.RiskThreshold,
		BackupRetention: time.Duration(cfg.BackupRetentionHours) * time.Hour,
		Logger:          Logger(),
	})
}

// Backups returns a backup manager over the configured store.
func Backups() *backup.Manager {
	return backup.NewManager(StorePath())
}

// ItemRepository returns the singleton item repository.
func ItemRepository() secondary.ItemRepository {
	once.Do(initRepos)
	return itemRepo
}

// ContextRepository returns the singleton context repository.
func ContextRepository() secondary.ContextRepository {
	once.Do(initRepos)
	return contextRepo
}

// StakeholderRepository returns the singleton stakeholder repository.
func StakeholderRepository() secondary.StakeholderRepository {
	once.Do(initRepos)
	return stakeholderRepo
}

// OrganizationRepository returns the singleton organization repository.
func OrganizationRepository() secondary.OrganizationRepository {
	once.Do(initRepos)
	return organizationRepo
}

// AssignmentRepository returns the singleton assignment repository.
func AssignmentRepository() secondary.AssignmentRepository {
	once.Do(initRepos)
	return assignmentRepo
}

// initRepos opens the store and builds all repositories over the shared
// connection. Called once via sync.Once.
func initRepos() {
	database, err := db.Open(StorePath())
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	itemRepo = sqlite.NewItemRepository(database)
	contextRepo = sqlite.NewContextRepository(database)
	stakeholderRepo = sqlite.NewStakeholderRepository(database)
	organizationRepo = sqlite.NewOrganizationRepository(database)
	assignmentRepo = sqlite.NewAssignmentRepository(database)
}
