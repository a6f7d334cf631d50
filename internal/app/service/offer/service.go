package offer

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/subscription/internal/models"
	"github.com/fatflowers/subscription/pkg/apperr"
	"github.com/fatflowers/subscription/pkg/types"
)

// Service owns the offer catalog. The subscription engine reads it on every
// create and renewal so period changes take effect on the next cycle.
type Service struct {
	log *zap.SugaredLogger
	db  *gorm.DB
}

func NewService(log *zap.SugaredLogger, db *gorm.DB) *Service {
	return &Service{log: log, db: db}
}

type CreateOfferRequest struct {
	Name         string          `json:"name" binding:"required"`
	Price        decimal.Decimal `json:"price" binding:"required"`
	PeriodMonths int             `json:"period_months" binding:"required,min=1"`
}

func (s *Service) Create(ctx context.Context, req *CreateOfferRequest) (*models.Offer, error) {
	if req.Name == "" || req.PeriodMonths < 1 || req.Price.IsNegative() {
		return nil, fmt.Errorf("invalid offer fields: %w", apperr.ErrValidation)
	}
	o := &models.Offer{
		Name:         req.Name,
		Price:        req.Price,
		PeriodMonths: req.PeriodMonths,
		Status:       types.OfferStatusActive,
	}
	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}
	s.log.Infow("offer created", "offer_id", o.ID, "period_months", o.PeriodMonths)
	return o, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*models.Offer, error) {
	var o models.Offer
	if err := s.db.WithContext(ctx).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("offer %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load offer %d: %w", id, err)
	}
	return &o, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Offer, error) {
	var offers []*models.Offer
	if err := s.db.WithContext(ctx).Order("id").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}
