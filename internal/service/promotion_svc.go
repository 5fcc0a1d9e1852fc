package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"ifood_partner_v1/internal/api/dto"
	"ifood_partner_v1/internal/model"
	"ifood_partner_v1/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrPromotionNotFound 本地不存在该促销
var ErrPromotionNotFound = errors.New("促销不存在")

// ==================== PromotionService 促销管理 ====================

// PromotionService 促销活动管理
// 校验规则在本地兜底 (平台上限 70% 折扣)，远端同步尽力而为
type PromotionService struct {
	promotionRepo repository.PromotionRepository
	gateway       *IfoodService
}

// NewPromotionService 创建促销服务
// gateway 可为 nil (纯本地模式)
func NewPromotionService(promotionRepo repository.PromotionRepository, gateway *IfoodService) *PromotionService {
	return &PromotionService{
		promotionRepo: promotionRepo,
		gateway:       gateway,
	}
}

// Create 新建促销
func (s *PromotionService) Create(ctx context.Context, req *dto.CreatePromotionRequest) (*dto.PromotionVO, error) {
	promoType := req.PromotionType
	if promoType == "" {
		promoType = model.PromoPercentage
	}

	if err := validatePromotion(promoType, req); err != nil {
		return nil, err
	}

	startDate, endDate, err := parsePromotionDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	itemIDs, _ := json.Marshal(req.ItemIDs)
	promotion := &model.Promotion{
		ID:                 uuid.NewString(),
		MerchantID:         req.MerchantID,
		Name:               req.Name,
		Description:        req.Description,
		PromotionType:      promoType,
		DiscountPercentage: req.DiscountPercentage,
		BuyQuantity:        req.BuyQuantity,
		GetQuantity:        req.GetQuantity,
		ItemIDs:            datatypes.JSON(itemIDs),
		StartDate:          startDate,
		EndDate:            endDate,
		Active:             true,
	}

	if err := s.promotionRepo.Create(ctx, promotion); err != nil {
		return nil, fmt.Errorf("促销入库失败: %w", err)
	}

	s.pushToRemote(ctx, promotion, req.ItemIDs)
	return toPromotionVO(promotion), nil
}

// validatePromotion 促销规则校验
func validatePromotion(promoType string, req *dto.CreatePromotionRequest) error {
	switch promoType {
	case model.PromoPercentage, model.PromoPercentagePerUnits:
		if req.DiscountPercentage <= 0 {
			return errors.New("折扣比例必须大于 0")
		}
		if req.DiscountPercentage > model.MaxDiscountPercentage {
			return fmt.Errorf("折扣比例超过平台上限 %.0f%%", model.MaxDiscountPercentage)
		}
	case model.PromoLXPY:
		if req.BuyQuantity <= 0 || req.GetQuantity <= 0 {
			return errors.New("买赠促销必须指定购买数量和赠送数量")
		}
	default:
		return fmt.Errorf("不支持的促销类型: %s", promoType)
	}
	return nil
}

// parsePromotionDates 解析促销起止日期
func parsePromotionDates(start, end string) (time.Time, time.Time, error) {
	startDate := time.Now()
	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("开始日期格式错误: %v", err)
		}
		startDate = t
	}

	endDate := startDate.AddDate(0, 1, 0)
	if end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("结束日期格式错误: %v", err)
		}
		endDate = t
	}

	if !endDate.After(startDate) {
		return time.Time{}, time.Time{}, errors.New("结束日期必须晚于开始日期")
	}
	return startDate, endDate, nil
}

// pushToRemote 推送促销到远端 (尽力而为)
func (s *PromotionService) pushToRemote(ctx context.Context, promotion *model.Promotion, itemIDs []string) {
	if s.gateway == nil {
		return
	}
	payload := map[string]any{
		"name":          promotion.Name,
		"description":   promotion.Description,
		"promotionType": promotion.PromotionType,
		"discount":      promotion.DiscountPercentage,
		"items":         itemIDs,
		"startDate":     promotion.StartDate.Format("2006-01-02"),
		"endDate":       promotion.EndDate.Format("2006-01-02"),
	}
	if _, err := s.gateway.CreateRemotePromotion(ctx, promotion.MerchantID, payload); err != nil {
		log.Printf("促销 %s 远端同步失败 (本地已保存): %v", promotion.Name, err)
	}
}

// List 促销列表
func (s *PromotionService) List(ctx context.Context, merchantID string, active *bool, limit int) ([]dto.PromotionVO, error) {
	promotions, err := s.promotionRepo.List(ctx, merchantID, active, limit)
	if err != nil {
		return nil, fmt.Errorf("查询促销列表失败: %w", err)
	}

	list := make([]dto.PromotionVO, len(promotions))
	for i := range promotions {
		list[i] = *toPromotionVO(&promotions[i])
	}
	return list, nil
}

// Get 促销详情
func (s *PromotionService) Get(ctx context.Context, id string) (*dto.PromotionVO, error) {
	promotion, err := s.promotionRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPromotionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询促销失败: %w", err)
	}
	return toPromotionVO(promotion), nil
}

// SetActive 启停促销
func (s *PromotionService) SetActive(ctx context.Context, id string, active bool) error {
	rows, err := s.promotionRepo.SetActive(ctx, id, active)
	if err != nil {
		return fmt.Errorf("更新促销状态失败: %w", err)
	}
	if rows == 0 {
		return ErrPromotionNotFound
	}
	return nil
}

// Delete 删除促销 (远端同步删除，尽力而为)
func (s *PromotionService) Delete(ctx context.Context, id string) error {
	promotion, err := s.promotionRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPromotionNotFound
	}
	if err != nil {
		return fmt.Errorf("查询促销失败: %w", err)
	}

	rows, err := s.promotionRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("删除促销失败: %w", err)
	}
	if rows == 0 {
		return ErrPromotionNotFound
	}

	if s.gateway != nil {
		if _, err := s.gateway.DeleteRemotePromotion(ctx, promotion.MerchantID, id); err != nil {
			log.Printf("促销 %s 远端删除失败 (本地已删除): %v", id, err)
		}
	}
	return nil
}

// toPromotionVO 视图转换
func toPromotionVO(promotion *model.Promotion) *dto.PromotionVO {
	var itemIDs []string
	if len(promotion.ItemIDs) > 0 {
		_ = json.Unmarshal(promotion.ItemIDs, &itemIDs)
	}
	return &dto.PromotionVO{
		ID:                 promotion.ID,
		MerchantID:         promotion.MerchantID,
		Name:               promotion.Name,
		Description:        promotion.Description,
		PromotionType:      promotion.PromotionType,
		DiscountPercentage: promotion.DiscountPercentage,
		BuyQuantity:        promotion.BuyQuantity,
		GetQuantity:        promotion.GetQuantity,
		ItemIDs:            itemIDs,
		StartDate:          promotion.StartDate,
		EndDate:            promotion.EndDate,
		Active:             promotion.Active,
		CreatedAt:          promotion.CreatedAt,
	}
}
