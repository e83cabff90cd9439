package service

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sangkips/invoicer-api/internal/domain/enum"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/internal/metrics"
	"github.com/sangkips/invoicer-api/pkg/logger"
)

const dashboardTTL = 5 * time.Minute

// DashboardService derives read-only income and status figures per company
type DashboardService struct {
	scope         *TenantScope
	analyticsRepo repository.AnalyticsRepository
	cache         repository.Cache
}

// NewDashboardService creates a new dashboard service. cache may be nil.
func NewDashboardService(
	scope *TenantScope,
	analyticsRepo repository.AnalyticsRepository,
	cache repository.Cache,
) *DashboardService {
	return &DashboardService{
		scope:         scope,
		analyticsRepo: analyticsRepo,
		cache:         cache,
	}
}

// Dashboard represents dashboard statistics
type Dashboard struct {
	MonthlyIncome  []MonthlyIncome `json:"monthly_income"`
	IncomeByClient []ClientIncome  `json:"income_by_client"`
	StatusCounts   StatusCounts    `json:"status_counts"`
	TotalIncome    decimal.Decimal `json:"total_income"`
}

// MonthlyIncome is income paid within one calendar month
type MonthlyIncome struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// ClientIncome is income paid on one client's invoices
type ClientIncome struct {
	ClientID   uuid.UUID       `json:"client_id"`
	ClientName string          `json:"client_name"`
	Total      decimal.Decimal `json:"total"`
}

type StatusCounts struct {
	Unpaid  int64 `json:"unpaid"`
	Partial int64 `json:"partial"`
	Paid    int64 `json:"paid"`
}

// GetDashboard returns the dashboard for a company the principal owns.
func (s *DashboardService) GetDashboard(ctx context.Context, principalID, companyID uuid.UUID) (*Dashboard, error) {
	company, err := s.scope.Company(ctx, principalID, companyID)
	if err != nil {
		return nil, err
	}

	gen, cacheable := s.generation(ctx, company.ID)
	if cacheable {
		if cached := s.fromCache(ctx, dashboardKey(company.ID, gen)); cached != nil {
			return cached, nil
		}
	}

	rows, err := s.analyticsRepo.LedgerRows(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	counts, err := s.analyticsRepo.InvoiceStatusCounts(ctx, company.ID)
	if err != nil {
		return nil, err
	}

	dash := AggregateDashboard(rows, counts)
	if cacheable {
		s.toCache(ctx, dashboardKey(company.ID, gen), dash)
	}
	return dash, nil
}

// Invalidate moves the company to a new cache generation. Call after commit.
// A read that started before the commit stores its result under the old
// generation, which nothing reads any more.
func (s *DashboardService) Invalidate(ctx context.Context, companyID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, generationKey(companyID)); err != nil {
		logger.Warn(ctx, "dashboard cache invalidation failed", "company_id", companyID, "error", err)
	}
}

// generation returns the company's current cache generation. ok is false
// when the cache should be bypassed.
func (s *DashboardService) generation(ctx context.Context, companyID uuid.UUID) (gen int64, ok bool) {
	if s.cache == nil {
		return 0, false
	}
	data, err := s.cache.Get(ctx, generationKey(companyID))
	if err != nil {
		metrics.DashboardCache.WithLabelValues("error").Inc()
		logger.Warn(ctx, "dashboard cache read failed", "company_id", companyID, "error", err)
		return 0, false
	}
	if data == nil {
		return 0, true
	}
	gen, err = strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		metrics.DashboardCache.WithLabelValues("error").Inc()
		return 0, false
	}
	return gen, true
}

func (s *DashboardService) fromCache(ctx context.Context, key string) *Dashboard {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.DashboardCache.WithLabelValues("error").Inc()
		logger.Warn(ctx, "dashboard cache read failed", "key", key, "error", err)
		return nil
	}
	if data == nil {
		metrics.DashboardCache.WithLabelValues("miss").Inc()
		return nil
	}
	var dash Dashboard
	if err := json.Unmarshal(data, &dash); err != nil {
		metrics.DashboardCache.WithLabelValues("error").Inc()
		return nil
	}
	metrics.DashboardCache.WithLabelValues("hit").Inc()
	return &dash
}

func (s *DashboardService) toCache(ctx context.Context, key string, dash *Dashboard) {
	data, err := json.Marshal(dash)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, dashboardTTL); err != nil {
		logger.Warn(ctx, "dashboard cache write failed", "key", key, "error", err)
	}
}

func dashboardKey(companyID uuid.UUID, gen int64) string {
	return "dashboard:" + companyID.String() + ":" + strconv.FormatInt(gen, 10)
}

func generationKey(companyID uuid.UUID) string {
	return "dashboard:gen:" + companyID.String()
}

// AggregateDashboard groups ledger rows by calendar month (oldest first) and
// by client (largest total first, ties by name then id).
func AggregateDashboard(rows []repository.LedgerRow, counts []repository.StatusCount) *Dashboard {
	type ym struct{ year, month int }

	byMonth := make(map[ym]decimal.Decimal)
	byClient := make(map[uuid.UUID]*ClientIncome)
	total := decimal.Zero

	for _, r := range rows {
		k := ym{r.PaidOn.Year(), int(r.PaidOn.Month())}
		byMonth[k] = byMonth[k].Add(r.Amount)

		ci, ok := byClient[r.ClientID]
		if !ok {
			ci = &ClientIncome{ClientID: r.ClientID, ClientName: r.ClientName, Total: decimal.Zero}
			byClient[r.ClientID] = ci
		}
		ci.Total = ci.Total.Add(r.Amount)
		total = total.Add(r.Amount)
	}

	dash := &Dashboard{
		MonthlyIncome:  make([]MonthlyIncome, 0, len(byMonth)),
		IncomeByClient: make([]ClientIncome, 0, len(byClient)),
		TotalIncome:    total,
	}

	for k, v := range byMonth {
		dash.MonthlyIncome = append(dash.MonthlyIncome, MonthlyIncome{Year: k.year, Month: k.month, Total: v})
	}
	sort.Slice(dash.MonthlyIncome, func(i, j int) bool {
		a, b := dash.MonthlyIncome[i], dash.MonthlyIncome[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})

	for _, ci := range byClient {
		dash.IncomeByClient = append(dash.IncomeByClient, *ci)
	}
	sort.Slice(dash.IncomeByClient, func(i, j int) bool {
		a, b := dash.IncomeByClient[i], dash.IncomeByClient[j]
		if c := a.Total.Cmp(b.Total); c != 0 {
			return c > 0
		}
		if a.ClientName != b.ClientName {
			return a.ClientName < b.ClientName
		}
		return a.ClientID.String() < b.ClientID.String()
	})

	for _, c := range counts {
		switch c.Status {
		case enum.InvoiceStatusUnpaid:
			dash.StatusCounts.Unpaid += c.Count
		case enum.InvoiceStatusPartial:
			dash.StatusCounts.Partial += c.Count
		case enum.InvoiceStatusPaid:
			dash.StatusCounts.Paid += c.Count
		}
	}

	return dash
}
