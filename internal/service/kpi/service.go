package kpi

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/cache"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/sse"
	"golang.org/x/sync/errgroup"
)

// Strategy selects where monthly aggregation happens.
type Strategy string

const (
	// StrategyLocal fetches raw records and aggregates in process.
	StrategyLocal Strategy = "local"
	// StrategyServer asks the store for pre-aggregated monthly totals when the view allows it.
	StrategyServer Strategy = "server"
)

type KPIServiceImpl struct {
	recordRepo   kpi.RecordRepository
	employeeRepo employee.EmployeeRepository
	cache        cache.Cache
	cacheTTL     time.Duration
	targets      kpi.TargetConfig
	strategy     Strategy
	threshold    float64
	hub          *sse.Hub
	now          func() time.Time
}

type Options struct {
	Targets  kpi.TargetConfig
	Strategy Strategy
	CacheTTL time.Duration
	// FilterThreshold is the ranking filter threshold used when a request omits one.
	FilterThreshold float64
	// Hub receives record change events; nil creates a private hub.
	Hub *sse.Hub
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func NewKPIService(recordRepo kpi.RecordRepository, employeeRepo employee.EmployeeRepository, bucketCache cache.Cache, opts Options) kpi.KPIService {
	if bucketCache == nil {
		bucketCache = cache.NewNoopCache()
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyLocal
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FilterThreshold == 0 {
		opts.FilterThreshold = kpi.DefaultFilterThreshold
	}
	if opts.Hub == nil {
		opts.Hub = sse.NewHub()
	}
	if opts.Targets.Targets == nil {
		opts.Targets = kpi.DefaultTargetConfig()
	}
	return &KPIServiceImpl{
		recordRepo:   recordRepo,
		employeeRepo: employeeRepo,
		cache:        bucketCache,
		cacheTTL:     opts.CacheTTL,
		targets:      opts.Targets,
		strategy:     opts.Strategy,
		threshold:    opts.FilterThreshold,
		hub:          opts.Hub,
		now:          opts.Now,
	}
}

// resolveEmployeeScope returns the employee id a caller may query.
// Admins get what they asked for; everyone else is pinned to their own employee.
func resolveEmployeeScope(actor auth.AuthContext, requested string) (string, error) {
	if actor.IsAdmin {
		return requested, nil
	}
	if actor.EmployeeID == "" {
		return "", kpi.ErrForbiddenEmployee
	}
	if requested != "" && requested != actor.EmployeeID {
		return "", kpi.ErrForbiddenEmployee
	}
	return actor.EmployeeID, nil
}

// ListRecords implements kpi.KPIService.
func (s *KPIServiceImpl) ListRecords(ctx context.Context, actor auth.AuthContext, req kpi.ListRecordsRequest) ([]kpi.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	employeeID, err := resolveEmployeeScope(actor, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	records, err := s.recordRepo.List(ctx, kpi.RecordFilter{
		EmployeeID: employeeID,
		Year:       req.Year,
		Month:      req.Month,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list kpi records: %w", err)
	}

	resp := make([]kpi.RecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, kpi.NewRecordResponse(r))
	}
	return resp, nil
}

// UpsertRecord implements kpi.KPIService.
func (s *KPIServiceImpl) UpsertRecord(ctx context.Context, actor auth.AuthContext, req kpi.UpsertRecordRequest) (kpi.RecordResponse, error) {
	if !actor.IsAdmin {
		return kpi.RecordResponse{}, kpi.ErrAdminRequired
	}
	if err := req.Validate(); err != nil {
		return kpi.RecordResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return kpi.RecordResponse{}, err
	}

	stored, err := s.recordRepo.Upsert(ctx, req.Record())
	if err != nil {
		return kpi.RecordResponse{}, fmt.Errorf("failed to upsert kpi record: %w", err)
	}

	if _, err := s.cache.Bump(ctx, bucketVersionKey(stored.Date.Year())); err != nil {
		slog.Warn("Failed to invalidate monthly bucket cache", "year", stored.Date.Year(), "error", err)
	}

	s.hub.PublishAll(stored.EmployeeID, sse.Event{
		Name: kpi.EventRecordChanged,
		Data: kpi.RecordChange{
			RecordID:   stored.ID,
			EmployeeID: stored.EmployeeID,
			Date:       stored.Date.Format(kpi.DateLayout),
			Year:       stored.Date.Year(),
			Month:      int(stored.Date.Month()),
		},
	})

	return kpi.NewRecordResponse(stored), nil
}

// Targets implements kpi.KPIService.
func (s *KPIServiceImpl) Targets() kpi.TargetConfig {
	return s.targets
}

// Dashboard implements kpi.KPIService.
func (s *KPIServiceImpl) Dashboard(ctx context.Context, actor auth.AuthContext, req kpi.DashboardRequest) (*kpi.DashboardResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	employeeID, err := resolveEmployeeScope(actor, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	sel := req.Selector()
	sel.EmployeeID = employeeID

	dash, err := s.compute(ctx, sel)
	if err != nil {
		return nil, err
	}

	resp := &kpi.DashboardResponse{
		ViewType:   sel.ViewType,
		Year:       sel.Year,
		Month:      int(sel.Month),
		EmployeeID: sel.EmployeeID,
		Dashboard:  dash,
	}
	switch sel.ViewType {
	case kpi.ViewWeekly:
		resp.Week = sel.Week
	case kpi.ViewDaily:
		resp.Day = sel.Day.Format(kpi.DateLayout)
	}
	return resp, nil
}

// Ranking implements kpi.KPIService.
func (s *KPIServiceImpl) Ranking(ctx context.Context, actor auth.AuthContext, req kpi.RankingRequest) (*kpi.RankingResponse, error) {
	if !actor.IsAdmin {
		return nil, kpi.ErrAdminRequired
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	dash, err := s.compute(ctx, req.Selector())
	if err != nil {
		return nil, err
	}

	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = kpi.SortByOverall
	}
	order := kpi.SortDirection(req.Order)
	if order == "" {
		order = kpi.SortDesc
	}
	filterKey := req.Filter
	if filterKey == "" {
		filterKey = kpi.FilterAll
	}
	threshold := s.threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	var filter *MinPctFilter
	if filterKey != kpi.FilterAll {
		filter = &MinPctFilter{Key: filterKey, Threshold: threshold}
	}

	return &kpi.RankingResponse{
		SortBy:    sortBy,
		Order:     order,
		Filter:    filterKey,
		Threshold: threshold,
		Rows:      ComputeRanking(dash.Rows, sortBy, order, filter),
	}, nil
}

// compute fetches records and employees concurrently and runs the pipeline.
func (s *KPIServiceImpl) compute(ctx context.Context, sel kpi.PeriodSelector) (kpi.Dashboard, error) {
	var (
		records   []kpi.Record
		totals    map[string]kpi.Totals
		employees []employee.Employee
	)
	useServer := s.strategy == StrategyServer && sel.ViewType == kpi.ViewMonthly

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if useServer {
			totals, err = s.recordRepo.MonthlyTotals(gCtx, sel.Year, int(sel.Month))
			if err != nil {
				return fmt.Errorf("failed to load monthly kpi totals: %w", err)
			}
			return nil
		}
		records, err = s.recordRepo.List(gCtx, recordFilterFor(sel))
		if err != nil {
			return fmt.Errorf("failed to list kpi records: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		employees, err = s.employeeRepo.List(gCtx, employee.EmployeeFilter{})
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return kpi.Dashboard{}, err
	}

	var dash kpi.Dashboard
	if useServer {
		if sel.EmployeeID != "" {
			scoped := make(map[string]kpi.Totals, 1)
			if t, ok := totals[sel.EmployeeID]; ok {
				scoped[sel.EmployeeID] = t
			}
			totals = scoped
		}
		dash = ScoreAggregation(AggregateTotals(totals, scopedEmployees(employees, sel)), employees, sel, s.targets)
	} else {
		dash = ComputeDashboard(records, employees, sel, s.targets)
	}

	if len(dash.OrphanEmployeeIDs) > 0 {
		slog.Warn("KPI records reference unknown employees",
			"count", len(dash.OrphanEmployeeIDs),
			"employee_ids", dash.OrphanEmployeeIDs,
			"year", sel.Year,
			"month", int(sel.Month),
		)
	}
	return dash, nil
}

// recordFilterFor narrows the store query to what the selector can touch.
func recordFilterFor(sel kpi.PeriodSelector) kpi.RecordFilter {
	f := kpi.RecordFilter{EmployeeID: sel.EmployeeID, Year: sel.Year, Month: int(sel.Month)}
	if sel.ViewType == kpi.ViewDaily && sel.Day.Month() != sel.Month {
		f.Month = 0
	}
	return f
}

func bucketVersionKey(year int) string {
	return "kpi:bucket:version:" + strconv.Itoa(year)
}

func bucketKey(version int64, metric kpi.Metric, year int, employeeID string) string {
	if employeeID == "" {
		employeeID = "all"
	}
	return fmt.Sprintf("kpi:bucket:%d:v%d:%s:%s", year, version, metric, employeeID)
}

// MonthlyBucket implements kpi.KPIService.
func (s *KPIServiceImpl) MonthlyBucket(ctx context.Context, actor auth.AuthContext, req kpi.MonthlyBucketRequest) ([]kpi.MonthBucket, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	employeeID, err := resolveEmployeeScope(actor, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	metric := kpi.Metric(req.Metric)

	version, err := s.cache.Version(ctx, bucketVersionKey(req.Year))
	if err != nil {
		slog.Warn("Failed to read monthly bucket cache version", "error", err)
	}
	key := bucketKey(version, metric, req.Year, employeeID)

	var buckets []kpi.MonthBucket
	if err == nil {
		hit, cacheErr := s.cache.GetJSON(ctx, key, &buckets)
		if cacheErr != nil {
			slog.Warn("Failed to read monthly bucket cache", "key", key, "error", cacheErr)
		}
		if hit {
			return buckets, nil
		}
	}

	if s.strategy == StrategyServer {
		buckets, err = s.recordRepo.MonthlyBucket(ctx, metric, req.Year, employeeID)
		if err != nil {
			return nil, fmt.Errorf("failed to load monthly bucket: %w", err)
		}
	} else {
		records, err := s.recordRepo.List(ctx, kpi.RecordFilter{EmployeeID: employeeID, Year: req.Year})
		if err != nil {
			return nil, fmt.Errorf("failed to list kpi records: %w", err)
		}
		buckets = BucketMonthly(records, metric, req.Year, employeeID)
	}

	if err := s.cache.SetJSON(ctx, key, buckets, s.cacheTTL); err != nil {
		slog.Warn("Failed to write monthly bucket cache", "key", key, "error", err)
	}
	return buckets, nil
}

// TeamTrend implements kpi.KPIService.
func (s *KPIServiceImpl) TeamTrend(ctx context.Context, actor auth.AuthContext, req kpi.TeamTrendRequest) (*kpi.TeamTrend, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	records, err := s.recordRepo.List(ctx, kpi.RecordFilter{Year: req.Year})
	if err != nil {
		return nil, fmt.Errorf("failed to list kpi records: %w", err)
	}

	trend := BuildTeamTrend(records, kpi.Metric(req.Metric), req.Year, TrendThrough(req.Year, s.now()))
	return &trend, nil
}

// WeekOptions implements kpi.KPIService.
func (s *KPIServiceImpl) WeekOptions(ctx context.Context, actor auth.AuthContext, req kpi.WeekOptionsRequest) ([]int, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	employeeID, err := resolveEmployeeScope(actor, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	records, err := s.recordRepo.List(ctx, kpi.RecordFilter{EmployeeID: employeeID, Year: req.Year, Month: req.Month})
	if err != nil {
		return nil, fmt.Errorf("failed to list kpi records: %w", err)
	}
	return WeeksInData(records), nil
}

// Subscribe implements kpi.KPIService.
func (s *KPIServiceImpl) Subscribe(ctx context.Context, actor auth.AuthContext) (<-chan sse.Event, func(), error) {
	topic := sse.TopicAll
	if !actor.IsAdmin {
		if actor.EmployeeID == "" {
			return nil, nil, kpi.ErrForbiddenEmployee
		}
		topic = actor.EmployeeID
	}
	events, cancel := s.hub.Subscribe(topic)
	return events, cancel, nil
}
