package service

import (
	"context"
	"errors"
	"fmt"

	"checkout-engine/internal/apperr"
	"checkout-engine/internal/dto"
	"checkout-engine/internal/model"
	"checkout-engine/internal/repository"

	"gorm.io/gorm"
)

type ShippingService interface {
	// Set creates the cart's shipping record or updates it in place. The
	// method must exist in the static rate table; its amount is never taken
	// from the client.
	Set(ctx context.Context, cartID uint, req *dto.ShippingRequest) (*dto.ShippingResponse, error)
	Get(ctx context.Context, cartID uint) (*dto.ShippingResponse, error)
}

type shippingServiceImpl struct {
	db           *gorm.DB
	shippingRepo repository.ShippingRepository
}

func NewShippingService(db *gorm.DB, shippingRepo repository.ShippingRepository) ShippingService {
	return &shippingServiceImpl{
		db:           db,
		shippingRepo: shippingRepo,
	}
}

func (s *shippingServiceImpl) Set(ctx context.Context, cartID uint, req *dto.ShippingRequest) (*dto.ShippingResponse, error) {
	if req.FullName == "" {
		return nil, apperr.InvalidState("full_name is required")
	}
	if req.Address == "" {
		return nil, apperr.InvalidState("address is required")
	}
	if req.City == "" {
		return nil, apperr.InvalidState("city is required")
	}

	amount, ok := model.ShippingRate(req.Method)
	if !ok {
		return nil, apperr.InvalidState(fmt.Sprintf("unknown shipping method %q", req.Method))
	}

	detail := &model.ShippingDetail{
		CartID:   cartID,
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		Method:   req.Method,
		Amount:   amount,
	}
	if err := s.shippingRepo.Upsert(ctx, s.db, detail); err != nil {
		return nil, fmt.Errorf("store shipping details: %w", err)
	}

	return toShippingResponse(detail), nil
}

func (s *shippingServiceImpl) Get(ctx context.Context, cartID uint) (*dto.ShippingResponse, error) {
	detail, err := s.shippingRepo.FindByCartID(ctx, s.db, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("shipping details not found")
		}
		return nil, fmt.Errorf("find shipping: %w", err)
	}

	return toShippingResponse(detail), nil
}

func toShippingResponse(detail *model.ShippingDetail) *dto.ShippingResponse {
	return &dto.ShippingResponse{
		FullName: detail.FullName,
		Phone:    detail.Phone,
		Address:  detail.Address,
		City:     detail.City,
		Method:   detail.Method,
		Amount:   detail.Amount,
	}
}
