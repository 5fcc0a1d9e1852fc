package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ifood_partner_v1/internal/api/dto"
	"ifood_partner_v1/internal/model"
	"ifood_partner_v1/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrCatalogItemNotFound 本地不存在该商品
var ErrCatalogItemNotFound = errors.New("商品不存在")

// ==================== CatalogService 商品目录 ====================

// CatalogService 本地商品目录管理
// 本地为主，远端同步为尽力而为：同步失败只记日志，不阻塞本地操作
type CatalogService struct {
	catalogRepo repository.CatalogRepository
	gateway     *IfoodService
}

// NewCatalogService 创建商品目录服务
// gateway 可为 nil (纯本地模式，不做远端同步)
func NewCatalogService(catalogRepo repository.CatalogRepository, gateway *IfoodService) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		gateway:     gateway,
	}
}

// CreateItem 新增商品
func (s *CatalogService) CreateItem(ctx context.Context, req *dto.CreateCatalogItemRequest) (*dto.CatalogItemVO, error) {
	item := &model.CatalogItem{
		ID:            uuid.NewString(),
		MerchantID:    req.MerchantID,
		ExternalCode:  req.ExternalCode,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		EAN:           req.EAN,
		ImageURL:      req.ImageURL,
		Category:      req.Category,
		Unit:          req.Unit,
		Available:     true,
		StockQuantity: req.StockQuantity,
	}
	if item.Unit == "" {
		item.Unit = "un"
	}

	if err := s.catalogRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("商品入库失败: %w", err)
	}

	s.pushToRemote(ctx, item)
	return toCatalogItemVO(item), nil
}

// pushToRemote 推送商品到远端目录 (尽力而为)
func (s *CatalogService) pushToRemote(ctx context.Context, item *model.CatalogItem) {
	if s.gateway == nil {
		return
	}
	payload := map[string]any{
		"externalCode": item.ExternalCode,
		"name":         item.Name,
		"description":  item.Description,
		"price":        map[string]any{"value": item.Price, "originalValue": item.OriginalPrice},
		"ean":          item.EAN,
		"image":        item.ImageURL,
	}
	if _, err := s.gateway.CreateRemoteProduct(ctx, item.MerchantID, payload); err != nil {
		log.Printf("商品 %s 远端同步失败 (本地已保存): %v", item.ExternalCode, err)
	}
}

// ListItems 商品目录查询
func (s *CatalogService) ListItems(ctx context.Context, req *dto.ListCatalogRequest) (*dto.ListCatalogResponse, error) {
	offset := (req.Page - 1) * req.PageSize
	if offset < 0 {
		offset = 0
	}
	items, total, err := s.catalogRepo.List(ctx, repository.CatalogFilter{
		MerchantID: req.MerchantID,
		Category:   req.Category,
		Available:  req.Available,
		Limit:      req.PageSize,
		Offset:     offset,
	})
	if err != nil {
		return nil, fmt.Errorf("查询商品目录失败: %w", err)
	}

	list := make([]dto.CatalogItemVO, len(items))
	for i := range items {
		list[i] = *toCatalogItemVO(&items[i])
	}
	return &dto.ListCatalogResponse{Total: total, List: list}, nil
}

// GetItem 商品详情
func (s *CatalogService) GetItem(ctx context.Context, id string) (*dto.CatalogItemVO, error) {
	item, err := s.catalogRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCatalogItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询商品失败: %w", err)
	}
	return toCatalogItemVO(item), nil
}

// UpdateItem 修改商品 (只更新请求里出现的字段)
func (s *CatalogService) UpdateItem(ctx context.Context, id string, req *dto.UpdateCatalogItemRequest) error {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.OriginalPrice != nil {
		fields["original_price"] = *req.OriginalPrice
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Available != nil {
		fields["available"] = *req.Available
	}
	if req.StockQuantity != nil {
		fields["stock_quantity"] = *req.StockQuantity
	}
	if len(fields) == 0 {
		return errors.New("没有需要更新的字段")
	}

	rows, err := s.catalogRepo.UpdateFields(ctx, id, fields)
	if err != nil {
		return fmt.Errorf("更新商品失败: %w", err)
	}
	if rows == 0 {
		return ErrCatalogItemNotFound
	}

	// 上下架变动同步远端 (尽力而为)
	if req.Available != nil {
		s.syncAvailability(ctx, id, *req.Available)
	}
	return nil
}

// syncAvailability 同步上下架状态到远端
func (s *CatalogService) syncAvailability(ctx context.Context, id string, available bool) {
	if s.gateway == nil {
		return
	}
	item, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return
	}
	status := "AVAILABLE"
	if !available {
		status = "UNAVAILABLE"
	}
	updates := []map[string]any{{"externalCode": item.ExternalCode, "status": status}}
	if _, err := s.gateway.UpdateRemoteProductStatus(ctx, item.MerchantID, updates); err != nil {
		log.Printf("商品 %s 上下架远端同步失败: %v", item.ExternalCode, err)
	}
}

// DeleteItem 删除商品
func (s *CatalogService) DeleteItem(ctx context.Context, id string) error {
	rows, err := s.catalogRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("删除商品失败: %w", err)
	}
	if rows == 0 {
		return ErrCatalogItemNotFound
	}
	return nil
}

// toCatalogItemVO 视图转换
func toCatalogItemVO(item *model.CatalogItem) *dto.CatalogItemVO {
	return &dto.CatalogItemVO{
		ID:            item.ID,
		MerchantID:    item.MerchantID,
		ExternalCode:  item.ExternalCode,
		Name:          item.Name,
		Description:   item.Description,
		Price:         item.Price,
		OriginalPrice: item.OriginalPrice,
		EAN:           item.EAN,
		ImageURL:      item.ImageURL,
		Category:      item.Category,
		Unit:          item.Unit,
		Available:     item.Available,
		StockQuantity: item.StockQuantity,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}
