package kpi

import (
	"context"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/sse"
)

type KPIService interface {
	ListRecords(ctx context.Context, actor auth.AuthContext, req ListRecordsRequest) ([]RecordResponse, error)
	UpsertRecord(ctx context.Context, actor auth.AuthContext, req UpsertRecordRequest) (RecordResponse, error)
	Targets() TargetConfig

	// Dashboard runs the full scoring pipeline for one period selector.
	Dashboard(ctx context.Context, actor auth.AuthContext, req DashboardRequest) (*DashboardResponse, error)
	Ranking(ctx context.Context, actor auth.AuthContext, req RankingRequest) (*RankingResponse, error)

	MonthlyBucket(ctx context.Context, actor auth.AuthContext, req MonthlyBucketRequest) ([]MonthBucket, error)
	TeamTrend(ctx context.Context, actor auth.AuthContext, req TeamTrendRequest) (*TeamTrend, error)
	WeekOptions(ctx context.Context, actor auth.AuthContext, req WeekOptionsRequest) ([]int, error)

	// Subscribe streams record changes the caller may see: admins get every employee,
	// everyone else only their own. The cancel func must be called when done.
	Subscribe(ctx context.Context, actor auth.AuthContext) (<-chan sse.Event, func(), error)
}
