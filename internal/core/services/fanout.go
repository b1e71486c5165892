package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
	"github.com/custodia-labs/descry-cli/internal/logger"
)

// searchFanout executes a search plan concurrently: one task per plan
// item, each running the search and summarising its results. A failed
// task never aborts its siblings; every task settles into an outcome
// and the caller decides what a partially failed set means.
type searchFanout struct {
	searcher driven.SearchProvider
	gateway  *CompletionGateway
}

func newSearchFanout(searcher driven.SearchProvider, gateway *CompletionGateway) *searchFanout {
	return &searchFanout{searcher: searcher, gateway: gateway}
}

// run executes every plan item and returns one outcome per item,
// ordered by task completion. onSettle, if non-nil, is called once per
// settled task from the collecting goroutine's lock, so callers can
// emit progress without their own synchronisation.
//
// Cancellation flows through ctx: in-flight searches observe it via
// the provider, and run still waits for every task to settle so no
// goroutine outlives the call.
func (f *searchFanout) run(
	ctx context.Context,
	traceID string,
	plan []domain.SearchPlanItem,
	onSettle func(domain.SearchOutcome),
) domain.SearchResultSet {
	var (
		mu       sync.Mutex
		outcomes = make([]domain.SearchOutcome, 0, len(plan))
		wg       sync.WaitGroup
	)

	settle := func(outcome domain.SearchOutcome) {
		mu.Lock()
		defer mu.Unlock()

		outcomes = append(outcomes, outcome)
		if onSettle != nil {
			onSettle(outcome)
		}
	}

	for _, item := range plan {
		wg.Add(1)
		go func(item domain.SearchPlanItem) {
			defer wg.Done()
			settle(f.execute(ctx, traceID, item))
		}(item)
	}

	wg.Wait()

	return domain.SearchResultSet{Outcomes: outcomes}
}

// execute runs a single search task to a settled outcome. A panic in
// the provider or the summariser settles as a failure instead of
// tearing down the run.
func (f *searchFanout) execute(
	ctx context.Context, traceID string, item domain.SearchPlanItem,
) (outcome domain.SearchOutcome) {
	outcome = domain.SearchOutcome{Item: item}

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Search task panic: term=%q: %v", item.Term, r)
			outcome = domain.SearchOutcome{
				Item:    item,
				Failure: fmt.Sprintf("search task panic: %v", r),
			}
		}
	}()

	logger.Debug("Search task start: provider=%s term=%q", f.searcher.Name(), item.Term)

	raw, err := f.searcher.Search(ctx, item.Term)
	if err != nil {
		outcome.Failure = fmt.Sprintf("search: %v", err)
		return outcome
	}

	summary, err := f.gateway.SummarizeSearch(ctx, traceID, item.Term, raw)
	if err != nil {
		outcome.Failure = fmt.Sprintf("summarize: %v", err)
		return outcome
	}

	outcome.Summary = summary
	outcome.Succeeded = true
	return outcome
}
