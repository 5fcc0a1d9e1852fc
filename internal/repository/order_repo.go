package repository

import (
	"context"
	"errors"
	"time"

	"ifood_partner_v1/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	MerchantID string
	Status     string
	OrderType  string
	Category   string
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error

	// GetByID / GetByIfoodID 查不到时返回 (nil, nil)，不视为错误
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetByIfoodID(ctx context.Context, ifoodID string) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	ListToday(ctx context.Context) ([]model.Order, error)
	Update(ctx context.Context, order *model.Order) error

	// UpdateFieldsByIfoodID 按 iFood ID 更新指定字段
	// 返回命中的行数；0 行表示本地尚无该订单
	UpdateFieldsByIfoodID(ctx context.Context, ifoodID string, fields map[string]interface{}) (int64, error)

	// 统计
	CountByStatusSince(ctx context.Context, since time.Time) (map[string]int64, error)
	CountByFieldSince(ctx context.Context, field string, since time.Time) (map[string]int64, error)
	TotalsSince(ctx context.Context, since time.Time) (int64, float64, error)
	ListStatRowsSince(ctx context.Context, since time.Time) ([]OrderStatRow, error)
}

// OrderStatRow 汇总用的轻量订单行
type OrderStatRow struct {
	CreatedAt time.Time
	Status    string
	Total     float64
}

// orderRepo GORM 实现
type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

// Create 创建订单
func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// GetByID 按本地 ID 查询
func (r *orderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByIfoodID 按远端 ID 查询
func (r *orderRepo) GetByIfoodID(ctx context.Context, ifoodID string) (*model.Order, error) {
	return r.getOne(ctx, "ifood_id = ?", ifoodID)
}

func (r *orderRepo) getOne(ctx context.Context, cond string, arg string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).First(&order, cond, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List 条件查询
func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.MerchantID != "" {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderType != "" {
		query = query.Where("order_type = ?", filter.OrderType)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var orders []model.Order
	err := query.Order("created_at DESC").Offset(filter.Offset).Limit(limit).Find(&orders).Error
	return orders, total, err
}

// ListToday 今日订单
func (r *orderRepo) ListToday(ctx context.Context) ([]model.Order, error) {
	todayStart := time.Now().UTC().Truncate(24 * time.Hour)

	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", todayStart).
		Order("created_at DESC").
		Limit(200).
		Find(&orders).Error
	return orders, err
}

// Update 全量更新
func (r *orderRepo) Update(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// UpdateFieldsByIfoodID 按 iFood ID 更新指定字段
func (r *orderRepo) UpdateFieldsByIfoodID(ctx context.Context, ifoodID string, fields map[string]interface{}) (int64, error) {
	if len(fields) == 0 {
		return 0, errors.New("没有需要更新的字段")
	}
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("ifood_id = ?", ifoodID).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// ==================== 统计查询 ====================

// statusCount 分组统计行
type statusCount struct {
	Key   string
	Count int64
}

// CountByStatusSince 按状态分组统计
func (r *orderRepo) CountByStatusSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	return r.groupCount(ctx, "status", since)
}

// CountByFieldSince 按任意字段分组统计 (order_type / category)
func (r *orderRepo) CountByFieldSince(ctx context.Context, field string, since time.Time) (map[string]int64, error) {
	return r.groupCount(ctx, field, since)
}

func (r *orderRepo) groupCount(ctx context.Context, field string, since time.Time) (map[string]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select(field+" AS key, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group(field).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

// ListStatRowsSince 查询指定时间之后的轻量订单行，按天汇总在服务层完成
func (r *orderRepo) ListStatRowsSince(ctx context.Context, since time.Time) ([]OrderStatRow, error) {
	var rows []OrderStatRow
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("created_at, status, total").
		Where("created_at >= ?", since).
		Scan(&rows).Error
	return rows, err
}

// TotalsSince 订单总数和营收
func (r *orderRepo) TotalsSince(ctx context.Context, since time.Time) (int64, float64, error) {
	var row struct {
		Orders  int64
		Revenue float64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("COUNT(*) AS orders, COALESCE(SUM(total), 0) AS revenue").
		Where("created_at >= ?", since).
		Scan(&row).Error
	return row.Orders, row.Revenue, err
}
