package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/catalogomaker/backend/internal/model"
	"github.com/catalogomaker/backend/internal/repository"
	"github.com/catalogomaker/backend/internal/whatsapp"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	maxItemQuantity = 1000
	notifyTimeout   = 5 * time.Second
)

type OrderLine struct {
	ProductID string
	Quantity  int
}

type PlaceOrderInput struct {
	CustomerName  string
	CustomerPhone string
	Items         []OrderLine
}

type OrderService interface {
	ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error)
	// Place records a pending order priced from the stored products and notifies the merchant.
	Place(ctx context.Context, catalogID string, in PlaceOrderInput) (*model.Order, error)
}

type orderService struct {
	orders   repository.OrderRepository
	catalogs repository.CatalogRepository
	products repository.ProductRepository
	notifier whatsapp.Client
	logger   zerolog.Logger
}

func NewOrderService(orders repository.OrderRepository, catalogs repository.CatalogRepository, products repository.ProductRepository, notifier whatsapp.Client, logger zerolog.Logger) OrderService {
	return &orderService{
		orders:   orders,
		catalogs: catalogs,
		products: products,
		notifier: notifier,
		logger:   logger.With().Str("service", "OrderService").Logger(),
	}
}

func (s *orderService) ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, validationErrorf("uid is required")
	}
	orders, err := s.orders.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (s *orderService) Place(ctx context.Context, catalogID string, in PlaceOrderInput) (*model.Order, error) {
	name, phone := strings.TrimSpace(in.CustomerName), strings.TrimSpace(in.CustomerPhone)
	if name == "" || phone == "" {
		return nil, validationErrorf("customer name and phone are required")
	}
	if len(in.Items) == 0 {
		return nil, validationErrorf("order has no items")
	}

	c, err := s.catalogs.GetByID(ctx, catalogID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("catalog %s: %w", catalogID, ErrNotFound)
	}

	ids := make([]string, 0, len(in.Items))
	for _, line := range in.Items {
		if line.Quantity <= 0 || line.Quantity > maxItemQuantity {
			return nil, validationErrorf("invalid quantity %d for product %s", line.Quantity, line.ProductID)
		}
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, catalogID, ids)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:                    uuid.NewString(),
		CatalogID:             c.ID,
		CatalogOwnerAccountID: c.OwnerAccountID,
		CustomerName:          name,
		CustomerPhone:         phone,
		Status:                model.OrderStatusPending,
	}
	for _, line := range in.Items {
		p, ok := products[line.ProductID]
		if !ok {
			return nil, validationErrorf("unknown product %s", line.ProductID)
		}
		order.Items = append(order.Items, model.OrderItem{
			ProductID:      p.ID,
			Name:           p.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: p.PriceCents,
		})
		order.TotalCents += p.PriceCents * int64(line.Quantity)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("catalog_id", catalogID).Msg("Failed to create order")
		return nil, err
	}
	s.logger.Info().Str("catalog_id", catalogID).Str("order_id", order.ID).Int64("total_cents", order.TotalCents).Msg("Order placed")

	if c.WhatsAppPhone != "" {
		go s.notify(context.WithoutCancel(ctx), c, order)
	}
	return order, nil
}

// notify is best-effort and runs after the response; a failed message never
// fails the order.
func (s *orderService) notify(ctx context.Context, c *model.Catalog, o *model.Order) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := s.notifier.SendText(ctx, c.WhatsAppPhone, orderMessage(c, o)); err != nil {
		s.logger.Warn().Err(err).Str("order_id", o.ID).Msg("Failed to send WhatsApp order notification")
	}
}

func orderMessage(c *model.Catalog, o *model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Novo pedido em %s\n", c.Name)
	fmt.Fprintf(&b, "Cliente: %s (%s)\n", o.CustomerName, o.CustomerPhone)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %dx %s: %s\n", it.Quantity, it.Name, formatBRL(it.UnitPriceCents*int64(it.Quantity)))
	}
	fmt.Fprintf(&b, "Total: %s", formatBRL(o.TotalCents))
	return b.String()
}

func formatBRL(cents int64) string {
	return fmt.Sprintf("R$ %d,%02d", cents/100, cents%100)
}
