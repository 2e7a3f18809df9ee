package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-agents/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.AskService = (*Orchestrator)(nil)

// OrchestratorConfig configures dispatch.
type OrchestratorConfig struct {
	// Workers bounds concurrent agent calls across all questions.
	Workers int

	// ProviderTimeout bounds each agent call.
	ProviderTimeout time.Duration
}

// Orchestrator routes a question to agents, merges their summaries and
// records the interaction.
type Orchestrator struct {
	decider     Decider
	synthesizer Synthesizer
	logs        driven.LogStore
	agents      map[domain.AgentID]Agent
	pool        *ants.Pool
	timeout     time.Duration
	now         func() time.Time
}

// NewOrchestrator creates an orchestrator. Agents without a registered
// implementation fail at dispatch with domain.ErrProviderUnavailable.
func NewOrchestrator(
	decider Decider,
	synthesizer Synthesizer,
	logs driven.LogStore,
	agents []Agent,
	cfg OrchestratorConfig,
) (*Orchestrator, error) {
	if decider == nil || synthesizer == nil || logs == nil {
		return nil, fmt.Errorf("%w: decider, synthesizer and log store are required", domain.ErrInvalidInput)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = domain.DefaultWorkers
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = domain.DefaultProviderTimeout
	}

	pool, err := ants.NewPool(cfg.Workers, ants.WithPanicHandler(func(p any) {
		logger.Error("Agent worker panic recovered: %v", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	registry := make(map[domain.AgentID]Agent, len(agents))
	for _, a := range agents {
		if a != nil {
			registry[a.ID()] = a
		}
	}

	return &Orchestrator{
		decider:     decider,
		synthesizer: synthesizer,
		logs:        logs,
		agents:      registry,
		pool:        pool,
		timeout:     cfg.ProviderTimeout,
		now:         time.Now,
	}, nil
}

// Ask decides, dispatches, synthesises and logs. Only a blank question
// returns an error.
func (o *Orchestrator) Ask(ctx context.Context, q domain.Question) (*domain.FinalAnswer, error) {
	if q.IsBlank() {
		return nil, domain.ErrEmptyQuestion
	}

	decision := o.decider.Decide(ctx, q)
	logger.Debug("Routing %q to %s", q.Text, decision.String())

	results := o.dispatch(ctx, q, decision.Agents)

	var items []domain.ResultItem
	for _, r := range results {
		items = append(items, r.Items...)
	}

	answer := &domain.FinalAnswer{
		Answer:    o.synthesizer.Synthesize(ctx, q, results),
		Decision:  decision,
		Results:   results,
		Items:     items,
		Timestamp: o.now().UTC(),
	}

	if err := o.logs.Append(ctx, domain.NewLogEntry(q, *answer)); err != nil {
		logger.Warn("Failed to append interaction log: %v", err)
	}

	return answer, nil
}

// dispatch runs the selected agents concurrently and returns their
// results in selection order.
func (o *Orchestrator) dispatch(ctx context.Context, q domain.Question, ids []domain.AgentID) []domain.AgentResult {
	results := make([]domain.AgentResult, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = o.runAgent(ctx, id, q)
		}
		if err := o.pool.Submit(task); err != nil {
			wg.Done()
			results[i] = failedResult(id, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err))
		}
	}
	wg.Wait()

	return results
}

// runAgent calls one agent under its own timeout. Errors and panics become
// an error-flavoured result.
func (o *Orchestrator) runAgent(ctx context.Context, id domain.AgentID, q domain.Question) (result domain.AgentResult) {
	agent, ok := o.agents[id]
	if !ok {
		return failedResult(id, fmt.Errorf("%w: %s is not configured", domain.ErrProviderUnavailable, id))
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			logger.Error("Agent %s panicked: %v", id, p)
			result = failedResult(id, fmt.Errorf("panic: %v", p))
		}
	}()

	start := o.now()
	res, err := agent.Run(callCtx, q)
	if err == nil && callCtx.Err() != nil {
		err = callCtx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", o.timeout, err)
		}
		logger.Warn("Agent %s failed: %v", id, err)
		return failedResult(id, err)
	}

	res.ProviderID = id
	logger.Debug("Agent %s returned %d items in %s", id, len(res.Items), o.now().Sub(start))
	return res
}

// Close releases the worker pool.
func (o *Orchestrator) Close() {
	o.pool.Release()
}

func failedResult(id domain.AgentID, err error) domain.AgentResult {
	return domain.AgentResult{
		ProviderID: id,
		Summary:    fmt.Sprintf("Error during %s search: %v", id.SearchName(), err),
		Err:        err,
	}
}

// LogService reads the interaction log.
type LogService struct {
	store driven.LogStore
}

// Ensure LogService implements the interface.
var _ driving.LogService = (*LogService)(nil)

// NewLogService creates a log reader.
func NewLogService(store driven.LogStore) *LogService {
	return &LogService{store: store}
}

// List returns every entry in insertion order.
func (s *LogService) List(ctx context.Context) ([]domain.LogEntry, error) {
	entries, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.LogEntry{}
	}
	return entries, nil
}

// Recent returns the last n entries in insertion order. n <= 0 returns all.
func (s *LogService) Recent(ctx context.Context, n int) ([]domain.LogEntry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}
