package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ifood_partner_v1/internal/api/dto"
	"ifood_partner_v1/internal/model"
	"ifood_partner_v1/internal/repository"
)

// ==================== MetricsService 经营看板 ====================

// MetricsService 当日经营指标聚合
type MetricsService struct {
	orderRepo repository.OrderRepository
}

// NewMetricsService 创建看板服务
func NewMetricsService(orderRepo repository.OrderRepository) *MetricsService {
	return &MetricsService{orderRepo: orderRepo}
}

// Dashboard 当日概览
// 统计口径：UTC 当日 0 点至今创建的订单
func (s *MetricsService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	since := time.Now().UTC().Truncate(24 * time.Hour)

	totalOrders, totalRevenue, err := s.orderRepo.TotalsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("统计订单总量失败: %w", err)
	}

	byStatus, err := s.orderRepo.CountByStatusSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("按状态统计失败: %w", err)
	}
	byType, err := s.orderRepo.CountByFieldSince(ctx, "order_type", since)
	if err != nil {
		return nil, fmt.Errorf("按类型统计失败: %w", err)
	}
	byCategory, err := s.orderRepo.CountByFieldSince(ctx, "category", since)
	if err != nil {
		return nil, fmt.Errorf("按品类统计失败: %w", err)
	}

	cancelled := byStatus[model.StatusCancelled]
	active := totalOrders - cancelled - byStatus[model.StatusConcluded]

	avgTicket := 0.0
	if totalOrders > 0 {
		avgTicket = totalRevenue / float64(totalOrders)
	}

	return &dto.DashboardResponse{
		TotalOrders:   totalOrders,
		TotalRevenue:  totalRevenue,
		AverageTicket: avgTicket,
		ByStatus:      byStatus,
		ByOrderType:   byType,
		ByCategory:    byCategory,
		ActiveOrders:  active,
		Cancelled:     cancelled,
	}, nil
}

// Summary 最近 N 天逐日汇总
// 按天分组在内存中完成，sqlite 和 postgres 的日期函数不一致
func (s *MetricsService) Summary(ctx context.Context, days int) (*dto.SummaryResponse, error) {
	if days <= 0 {
		days = 7
	}
	if days > 90 {
		days = 90
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := s.orderRepo.ListStatRowsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("查询汇总数据失败: %w", err)
	}

	byDay := make(map[string]*dto.DailySummary)
	for _, row := range rows {
		day := row.CreatedAt.UTC().Format("2006-01-02")
		entry, ok := byDay[day]
		if !ok {
			entry = &dto.DailySummary{Date: day}
			byDay[day] = entry
		}
		entry.Orders++
		entry.Revenue += row.Total
		if row.Status == model.StatusCancelled {
			entry.Cancelled++
		}
	}

	daily := make([]dto.DailySummary, 0, len(byDay))
	for _, entry := range byDay {
		daily = append(daily, *entry)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })

	return &dto.SummaryResponse{PeriodDays: days, Daily: daily}, nil
}
