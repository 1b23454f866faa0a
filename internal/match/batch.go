package match

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"log/slog"

	"github.com/talentlink/matchengine/pkg/models"
	"github.com/talentlink/matchengine/pkg/repository"
)

// BatchRequest describes one many-to-many matching run. Empty ID slices mean
// "all known entities" on that side.
type BatchRequest struct {
	CandidateIDs []int64
	PositionIDs  []int64
	MinScore     float64
	Limit        int
}

// BatchOutcome is the collected result of a batch run.
type BatchOutcome struct {
	Results     []models.MatchResult
	TotalPairs  int
	FailedPairs int
}

type pair struct {
	candidate models.Candidate
	position  models.Position
}

// Runner drives many-to-many matching over a bounded worker pool. Pair
// computations are independent, so failures on one pair are logged and
// skipped without aborting the batch.
type Runner struct {
	engine      *Engine
	candidates  repository.CandidateRepo
	positions   repository.PositionRepo
	logger      *slog.Logger
	concurrency int
}

func NewRunner(engine *Engine, cr repository.CandidateRepo, pr repository.PositionRepo, logger *slog.Logger, concurrency int) *Runner {
	if concurrency <= 0 {
		concurrency = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{engine: engine, candidates: cr, positions: pr, logger: logger, concurrency: concurrency}
}

// Run computes all pairwise matches, filters by MinScore, sorts descending by
// overall score, and returns the top Limit. Ties are broken by candidate then
// position ID so the ordering is deterministic.
func (r *Runner) Run(ctx context.Context, req BatchRequest, cfg *models.AlgorithmConfig) (*BatchOutcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	candidates, err := r.candidates.ListCandidates(ctx, req.CandidateIDs)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	positions, err := r.positions.ListPositions(ctx, req.PositionIDs)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	total := len(candidates) * len(positions)
	r.logger.Info("batch match starting", "candidates", len(candidates), "positions", len(positions), "pairs", total)

	pairs := make(chan pair)
	results := make(chan models.MatchResult, r.concurrency)
	failures := make(chan struct{}, r.concurrency)

	var wg sync.WaitGroup
	for i := 0; i < r.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pr := range pairs {
				res, err := r.engine.Calculate(ctx, &pr.candidate, &pr.position, cfg)
				if err != nil {
					r.logger.Error("pair match failed",
						"candidate_id", pr.candidate.ID, "position_id", pr.position.ID, "err", err)
					failures <- struct{}{}
					continue
				}
				results <- *res
			}
		}()
	}

	go func() {
		defer close(pairs)
		for _, c := range candidates {
			for _, p := range positions {
				select {
				case pairs <- pair{candidate: c, position: p}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	out := &BatchOutcome{TotalPairs: total}
	collected := make([]models.MatchResult, 0, total)
	for {
		select {
		case res := <-results:
			if res.OverallScore >= req.MinScore {
				collected = append(collected, res)
			}
		case <-failures:
			out.FailedPairs++
		case <-done:
			// drain anything buffered before the workers exited
			for {
				select {
				case res := <-results:
					if res.OverallScore >= req.MinScore {
						collected = append(collected, res)
					}
					continue
				case <-failures:
					out.FailedPairs++
					continue
				default:
				}
				break
			}

			sort.Slice(collected, func(i, j int) bool {
				if collected[i].OverallScore != collected[j].OverallScore {
					return collected[i].OverallScore > collected[j].OverallScore
				}
				if collected[i].CandidateID != collected[j].CandidateID {
					return collected[i].CandidateID < collected[j].CandidateID
				}
				return collected[i].PositionID < collected[j].PositionID
			})
			if req.Limit > 0 && len(collected) > req.Limit {
				collected = collected[:req.Limit]
			}
			out.Results = collected

			r.logger.Info("batch match finished", "pairs", total, "failed", out.FailedPairs, "matches", len(out.Results))
			return out, ctx.Err()
		}
	}
}
