package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/repos"
	"github.com/pasturelink/pasturelink-backend/internal/taxonomy"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

type CreateOrderInput struct {
	ProcessorOrgID uuid.UUID  `json:"processor_org_id"`
	AnimalType     string     `json:"animal_type"`
	HeadCount      int        `json:"head_count"`
	DropOffDate    *time.Time `json:"drop_off_date,omitempty"`
}

// OrderService is the anchor for cut sheets: a producer requests a processing
// slot with a processor, then attaches cut sheets to it.
type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*types.ProcessingOrder, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*types.ProcessingOrder, error)
	ListOrders(ctx context.Context) ([]*types.ProcessingOrder, error)
}

type orderService struct {
	db        *gorm.DB
	log       *logger.Logger
	orderRepo repos.ProcessingOrderRepo
	orgRepo   repos.OrganizationRepo
	tax       *taxonomy.Taxonomy
}

func NewOrderService(db *gorm.DB, log *logger.Logger, orderRepo repos.ProcessingOrderRepo, orgRepo repos.OrganizationRepo, tax *taxonomy.Taxonomy) OrderService {
	return &orderService{
		db:        db,
		log:       log.With("service", "OrderService"),
		orderRepo: orderRepo,
		orgRepo:   orgRepo,
		tax:       tax,
	}
}

func (os *orderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*types.ProcessingOrder, error) {
	rd, err := requireProducer(ctx, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if _, ok := os.tax.AnimalSchema(input.AnimalType); !ok {
		return nil, apierr.InvalidArgument(fmt.Errorf("unknown animal type %q", input.AnimalType))
	}
	processor, err := os.orgRepo.GetByID(ctx, nil, input.ProcessorOrgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("processor organization %s not found", input.ProcessorOrgID))
		}
		return nil, apierr.Persistence(fmt.Errorf("load processor organization: %w", err))
	}
	if processor.Type != types.OrgTypeProcessor {
		return nil, apierr.InvalidArgument(fmt.Errorf("organization %s is not a processor", input.ProcessorOrgID))
	}
	headCount := input.HeadCount
	if headCount <= 0 {
		headCount = 1
	}

	order := &types.ProcessingOrder{
		ID:             uuid.New(),
		ProducerOrgID:  rd.OrganizationID,
		ProcessorOrgID: input.ProcessorOrgID,
		AnimalType:     input.AnimalType,
		HeadCount:      headCount,
		Status:         types.OrderStatusRequested,
		DropOffDate:    input.DropOffDate,
	}
	if _, err := os.orderRepo.Create(ctx, nil, order); err != nil {
		return nil, apierr.Persistence(fmt.Errorf("create processing order: %w", err))
	}
	return order, nil
}

func (os *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*types.ProcessingOrder, error) {
	rd, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	order, err := os.orderRepo.GetByID(ctx, nil, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("processing order %s not found", orderID))
		}
		return nil, apierr.Persistence(fmt.Errorf("load processing order: %w", err))
	}
	if rd.OrganizationID != order.ProducerOrgID && rd.OrganizationID != order.ProcessorOrgID {
		return nil, apierr.NotAuthorized(fmt.Errorf("organization is not a party to this order"))
	}
	return order, nil
}

func (os *orderService) ListOrders(ctx context.Context) ([]*types.ProcessingOrder, error) {
	rd, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := os.orderRepo.ListForOrg(ctx, nil, rd.OrganizationID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list processing orders: %w", err))
	}
	return orders, nil
}
