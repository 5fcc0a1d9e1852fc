package service

import (
	"context"
	"testing"
	"time"

	"ifood_partner_v1/internal/model"
	"ifood_partner_v1/internal/repository"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMetricsService_Dashboard(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Order{}); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}

	seed := []struct {
		status    string
		orderType string
		total     float64
	}{
		{model.StatusConfirmed, model.OrderTypeDelivery, 40},
		{model.StatusDispatched, model.OrderTypeDelivery, 60},
		{model.StatusConcluded, model.OrderTypeTakeout, 50},
		{model.StatusCancelled, model.OrderTypeDelivery, 30},
	}
	for _, s := range seed {
		db.Create(&model.Order{
			ID:        uuid.NewString(),
			IfoodID:   uuid.NewString(),
			Status:    s.status,
			OrderType: s.orderType,
			Category:  model.CategoryFood,
			Total:     s.total,
		})
	}

	svc := NewMetricsService(repository.NewOrderRepository(db))
	dash, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	if dash.TotalOrders != 4 {
		t.Errorf("total_orders = %d, want 4", dash.TotalOrders)
	}
	if dash.TotalRevenue != 180 {
		t.Errorf("total_revenue = %v, want 180", dash.TotalRevenue)
	}
	if dash.AverageTicket != 45 {
		t.Errorf("average_ticket = %v, want 45", dash.AverageTicket)
	}
	if dash.Cancelled != 1 {
		t.Errorf("cancelled = %d, want 1", dash.Cancelled)
	}
	// 进行中 = 总数 - 已取消 - 已完成
	if dash.ActiveOrders != 2 {
		t.Errorf("active_orders = %d, want 2", dash.ActiveOrders)
	}
	if dash.ByStatus[model.StatusConfirmed] != 1 {
		t.Errorf("by_status = %v", dash.ByStatus)
	}
	if dash.ByOrderType[model.OrderTypeDelivery] != 3 {
		t.Errorf("by_order_type = %v", dash.ByOrderType)
	}
	if dash.ByCategory[model.CategoryFood] != 4 {
		t.Errorf("by_category = %v", dash.ByCategory)
	}
}

func TestMetricsService_Summary(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Order{}); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	seed := []struct {
		createdAt time.Time
		status    string
		total     float64
	}{
		{today.Add(2 * time.Hour), model.StatusConfirmed, 50},
		{today.Add(5 * time.Hour), model.StatusCancelled, 30},
		{yesterday.Add(10 * time.Hour), model.StatusConcluded, 80},
	}
	for _, s := range seed {
		db.Create(&model.Order{
			ID:        uuid.NewString(),
			IfoodID:   uuid.NewString(),
			Status:    s.status,
			OrderType: model.OrderTypeDelivery,
			Category:  model.CategoryFood,
			Total:     s.total,
			CreatedAt: s.createdAt,
		})
	}

	svc := NewMetricsService(repository.NewOrderRepository(db))
	summary, err := svc.Summary(context.Background(), 7)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if summary.PeriodDays != 7 {
		t.Errorf("period_days = %d, want 7", summary.PeriodDays)
	}
	if len(summary.Daily) != 2 {
		t.Fatalf("daily 条数 = %d, want 2", len(summary.Daily))
	}
	// 按日期升序：昨天在前
	if summary.Daily[0].Date != yesterday.Format("2006-01-02") {
		t.Errorf("daily[0].date = %s, want %s", summary.Daily[0].Date, yesterday.Format("2006-01-02"))
	}
	if summary.Daily[0].Orders != 1 || summary.Daily[0].Revenue != 80 {
		t.Errorf("昨日汇总 = %+v", summary.Daily[0])
	}
	if summary.Daily[1].Orders != 2 || summary.Daily[1].Revenue != 80 || summary.Daily[1].Cancelled != 1 {
		t.Errorf("今日汇总 = %+v", summary.Daily[1])
	}

	// days 非法时回退默认值
	fallback, err := svc.Summary(context.Background(), 0)
	if err != nil {
		t.Fatalf("Summary(0) error = %v", err)
	}
	if fallback.PeriodDays != 7 {
		t.Errorf("period_days = %d, want 默认 7", fallback.PeriodDays)
	}
}

func TestMetricsService_EmptyDay(t *testing.T) {
	db, _ := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	db.AutoMigrate(&model.Order{})

	svc := NewMetricsService(repository.NewOrderRepository(db))
	dash, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if dash.TotalOrders != 0 || dash.AverageTicket != 0 {
		t.Errorf("空库不应除零: %+v", dash)
	}
}
