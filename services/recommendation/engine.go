package recommendation

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"nutrimatch-go-worker/enums"
	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services/catalog"
	"nutrimatch-go-worker/services/metrics"
	"nutrimatch-go-worker/structs"
	"nutrimatch-go-worker/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// UserContext supplies the user's profile, restrictions and allergens.
type UserContext interface {
	Snapshot(ctx context.Context, userID int64) (structs.UserSnapshot, error)
}

// ConsumptionHistory supplies ratings, learned preferences and last
// consumption dates for a set of candidates.
type ConsumptionHistory interface {
	Snapshot(ctx context.Context, userID int64, foods []models.Food) (*structs.HistorySnapshot, error)
}

// Engine ranks candidate foods for a user. All I/O happens before scoring
// starts; scoring itself runs in parallel over read-only snapshots.
type Engine struct {
	cfg     Config
	users   UserContext
	history ConsumptionHistory
	filter  *CandidateFilter
	scorer  *Scorer
	log     *logrus.Entry
	now     func() time.Time
}

func NewEngine(cfg Config, foods catalog.FoodCatalog, users UserContext, history ConsumptionHistory, rng *rand.Rand, log *logrus.Entry) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		cfg:     cfg,
		users:   users,
		history: history,
		filter:  NewCandidateFilter(cfg, foods, rng, log),
		scorer:  NewScorer(cfg),
		log:     log,
		now:     time.Now,
	}
}

// ClampCount applies the default and the upper bound to a requested count.
func (e *Engine) ClampCount(count int) int {
	if count <= 0 {
		return e.cfg.DefaultCount
	}
	if count > e.cfg.MaxCount {
		return e.cfg.MaxCount
	}
	return count
}

// GetRecommendations returns up to req.Count scored foods, best first after
// the diversity pass.
func (e *Engine) GetRecommendations(ctx context.Context, req structs.RecommendationRequest) ([]structs.ScoreRecord, error) {
	start := time.Now()
	if req.SessionType == "" {
		req.SessionType = enums.SessionMealSuggestion
	}
	defer metrics.ObserveSince(metrics.RecommendationDuration.WithLabelValues(req.SessionType), start)

	if err := utils.Validate(req); err != nil {
		metrics.RecommendationsServed.WithLabelValues(req.SessionType, structs.KindBadInput).Inc()
		return nil, err
	}
	count := e.ClampCount(req.Count)
	logwg := e.log.WithFields(logrus.Fields{"task": "recommend", "user_id": req.UserID, "session_type": req.SessionType, "meal_type": req.MealType})

	records, err := e.rank(ctx, req)
	if err != nil {
		metrics.RecommendationsServed.WithLabelValues(req.SessionType, structs.ErrorKind(err)).Inc()
		logwg.WithField("error_message", err.Error()).Error("recommendation failed")
		return nil, err
	}

	records = SelectDiverse(records, count*e.cfg.DiversityFactor)
	if len(records) > count {
		records = records[:count]
	}
	metrics.RecommendationsServed.WithLabelValues(req.SessionType, "ok").Inc()
	logwg.WithFields(logrus.Fields{"count": len(records), "elapsed_ms": time.Since(start).Milliseconds()}).Info("recommendations ready")
	return records, nil
}

// rank scores every candidate and returns those with a positive total in
// descending order, ties broken by food id.
func (e *Engine) rank(ctx context.Context, req structs.RecommendationRequest) ([]structs.ScoreRecord, error) {
	user, err := e.users.Snapshot(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	candidates, err := e.filter.Candidates(ctx, user, req.MealType)
	if err != nil {
		return nil, err
	}
	history, err := e.history.Snapshot(ctx, req.UserID, candidates)
	if err != nil {
		return nil, err
	}

	now := e.now()
	scored := make([]structs.ScoreRecord, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.ScoringWorkers)
	for i := range candidates {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scored[i] = e.scorer.Score(candidates[i], user, history, req.CurrentNutrition, req.MealType, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := scored[:0]
	for _, record := range scored {
		if record.TotalScore > 0 {
			records = append(records, record)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].TotalScore != records[j].TotalScore {
			return records[i].TotalScore > records[j].TotalScore
		}
		return records[i].Food.ID < records[j].Food.ID
	})
	return records, nil
}
