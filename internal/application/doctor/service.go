package doctor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/doeshing/panel-go/internal/application/config"
	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// archiveProbeTimeout bounds the archive reachability check.
const archiveProbeTimeout = 3 * time.Second

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Archive        ports.HistoryArchive
	// Intents are the lexicon intent names the analyzer can classify.
	Intents []string
	// Expects maps lexicon intents to the entity kinds they expect. It must
	// agree with the required slots of the catalog, or overall confidence
	// is computed against the wrong entities.
	Expects map[string][]domain.EntityKind
	// Catalog is the loaded command catalog.
	Catalog []domain.CatalogEntry
	// Modules are the target modules with a registered handler.
	Modules []string
}

// Run executes checks and returns a report. The error is non-nil only when
// the config cannot be loaded; failed checks are reported in the report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded format %s", cfg.ConfigFormatVersion)))

	if err := config.Validate(cfg); err != nil {
		checks = append(checks, fail("Config values", err.Error()))
	} else {
		checks = append(checks, ok("Config values", "valid"))
	}

	checks = append(checks, s.intentCheck(), s.handlerCheck(), s.archiveCheck(ctx, cfg), natsCheck(cfg))
	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) intentCheck() domain.HealthCheck {
	known := make(map[string]domain.CatalogEntry, len(s.Catalog))
	for _, entry := range s.Catalog {
		known[entry.Intent] = entry
	}
	var missing, drifted []string
	for _, intent := range s.Intents {
		entry, ok := known[intent]
		if !ok {
			missing = append(missing, intent)
			continue
		}
		if expects, ok := s.Expects[intent]; ok && !sameKinds(expects, entry.ExpectedEntities()) {
			drifted = append(drifted, intent)
		}
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "no catalog command for: "+strings.Join(missing, ", "))
	}
	if len(drifted) > 0 {
		problems = append(problems, "lexicon expects differ from required slots for: "+strings.Join(drifted, ", "))
	}
	if len(problems) > 0 {
		return warn("Intent coverage", strings.Join(problems, "; "))
	}
	return ok("Intent coverage", fmt.Sprintf("%d intents, %d commands", len(s.Intents), len(s.Catalog)))
}

func sameKinds(a, b []domain.EntityKind) bool {
	set := make(map[domain.EntityKind]bool, len(a))
	for _, kind := range a {
		set[kind] = true
	}
	other := make(map[domain.EntityKind]bool, len(b))
	for _, kind := range b {
		if !set[kind] {
			return false
		}
		other[kind] = true
	}
	return len(other) == len(set)
}

func (s *Service) handlerCheck() domain.HealthCheck {
	registered := make(map[string]bool, len(s.Modules))
	for _, module := range s.Modules {
		registered[module] = true
	}
	missingSet := map[string]bool{}
	for _, entry := range s.Catalog {
		if !registered[entry.TargetModule] {
			missingSet[entry.TargetModule] = true
		}
	}
	if len(missingSet) > 0 {
		missing := make([]string, 0, len(missingSet))
		for module := range missingSet {
			missing = append(missing, module)
		}
		sort.Strings(missing)
		return fail("Handlers", "no handler for module: "+strings.Join(missing, ", "))
	}
	return ok("Handlers", "registered: "+strings.Join(s.Modules, ", "))
}

func (s *Service) archiveCheck(ctx context.Context, cfg domain.Config) domain.HealthCheck {
	driver := cfg.GetArchiveDriver()
	if s.Archive == nil || driver == domain.ArchiveNone {
		return warn("History archive", "disabled; history is kept in memory only")
	}
	probeCtx, cancel := context.WithTimeout(ctx, archiveProbeTimeout)
	defer cancel()
	if _, err := s.Archive.Recent(probeCtx, 1); err != nil {
		return fail("History archive", fmt.Sprintf("%s unreachable: %v", driver, err))
	}
	if located, found := s.Archive.(interface{ Path() string }); found {
		return ok("History archive", fmt.Sprintf("%s reachable at %s", driver, located.Path()))
	}
	return ok("History archive", driver+" reachable")
}

func natsCheck(cfg domain.Config) domain.HealthCheck {
	if !cfg.IsNATSEnabled() {
		return ok("Insight delivery", "in-memory queue")
	}
	return ok("Insight delivery", fmt.Sprintf("in-memory queue and NATS %s.*", cfg.GetNATSSubject()))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
