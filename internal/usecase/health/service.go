package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the runtime probe failed while the model and store are up.
	Degraded Status = "degraded"
	// Unhealthy indicates searches cannot be answered.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckNotReady indicates a component that has not finished starting.
	CheckNotReady CheckResult = "not_ready"
)

// Check names.
const (
	CheckStore     = "store"
	CheckModel     = "model"
	CheckEmbedding = "embedding"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	model     ModelState
	embedding EmbeddingChecker
}

// New creates a Service. model and embedding can be nil.
func New(db DBPinger, model ModelState, embedding EmbeddingChecker) *Service {
	return &Service{db: db, model: model, embedding: embedding}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks[CheckStore] = CheckError
		status = Unhealthy
	} else {
		checks[CheckStore] = CheckOK
	}

	ready := true
	if s.model != nil {
		ready = s.model.Ready()
		if ready {
			checks[CheckModel] = CheckOK
		} else {
			checks[CheckModel] = CheckNotReady
			status = Unhealthy
		}
	}

	// The runtime probe is meaningless until the model is loaded.
	if s.embedding != nil && ready {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks[CheckEmbedding] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks[CheckEmbedding] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
