package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status    Status
	Checks    map[string]CheckResult
	Documents int
	// Provider is empty in heuristic-only mode.
	Provider string
}

const providerCheck = "provider"

// Service coordinates health checks.
type Service struct {
	corpus       CorpusChecker
	db           DBPinger
	provider     ProviderChecker
	providerName string
}

// New creates a Service. db and provider can be nil.
func New(corpus CorpusChecker, db DBPinger, provider ProviderChecker, providerName string) *Service {
	return &Service{corpus: corpus, db: db, provider: provider, providerName: providerName}
}

// Check runs health checks against all components. Status reflects the
// corpus and database only: with a failing provider every capability still
// answers in heuristic mode, so the provider result is informational.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["corpus"] = result(s.corpus.Err())

	if s.db != nil {
		checks["database"] = result(s.db.Ping(ctx))
	}

	if s.provider != nil {
		checks[providerCheck] = result(s.provider.HealthCheck(ctx))
	}

	status := Healthy
	for name, v := range checks {
		if name != providerCheck && v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{
		Status:    status,
		Checks:    checks,
		Documents: s.corpus.Len(),
		Provider:  s.providerName,
	}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
