package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/DanieleMarcon/lasoluzione-backend/internal/database"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/models"
)

// ErrProductUnavailable is returned when a product cannot be added to a cart
var ErrProductUnavailable = fmt.Errorf("product is not available")

// CartService manages shopping carts. Line items snapshot the product
// name and price at add time; later catalog edits never change a cart.
type CartService struct {
	carts    *database.CartRepository
	products *database.ProductRepository
}

// NewCartService creates a new cart service
func NewCartService(db database.DB) *CartService {
	return &CartService{
		carts:    database.NewCartRepository(db),
		products: database.NewProductRepository(db),
	}
}

// GetOrCreate resolves a cart by token, creating a fresh one when the
// token is empty or unknown.
func (s *CartService) GetOrCreate(token string) (*models.Cart, error) {
	if token != "" {
		cart, err := s.carts.GetByToken(token)
		if err == nil {
			return cart, nil
		}
		if err != database.ErrNotFound {
			return nil, err
		}
	}
	return s.carts.Create(uuid.New().String())
}

// Get resolves an existing cart by token
func (s *CartService) Get(token string) (*models.Cart, error) {
	return s.carts.GetByToken(token)
}

// Response assembles the client-facing cart payload
func (s *CartService) Response(cart *models.Cart) (*models.CartResponse, error) {
	items, err := s.carts.GetItems(cart.ID)
	if err != nil {
		return nil, err
	}
	return &models.CartResponse{
		Token:      cart.Token,
		Items:      items,
		TotalCents: cart.TotalCents,
	}, nil
}

// AddItem adds an active product to the cart, snapshotting its current
// name and price, and recomputes the total.
func (s *CartService) AddItem(cart *models.Cart, productID int64, quantity int) error {
	product, err := s.products.GetByID(productID)
	if err != nil {
		if err == database.ErrNotFound {
			return ErrProductUnavailable
		}
		return err
	}
	if !product.Active {
		return ErrProductUnavailable
	}

	item := &models.CartItem{
		CartID:             cart.ID,
		ProductID:          product.ID,
		NameSnapshot:       product.Name,
		PriceCentsSnapshot: product.PriceCents,
		Quantity:           quantity,
	}
	if err := s.carts.AddItem(item); err != nil {
		return err
	}
	return s.recomputeTotal(cart)
}

// UpdateItem changes a line quantity and recomputes the total
func (s *CartService) UpdateItem(cart *models.Cart, itemID int64, quantity int) error {
	if err := s.carts.UpdateItemQuantity(cart.ID, itemID, quantity); err != nil {
		return err
	}
	return s.recomputeTotal(cart)
}

// RemoveItem drops a line and recomputes the total
func (s *CartService) RemoveItem(cart *models.Cart, itemID int64) error {
	if err := s.carts.DeleteItem(cart.ID, itemID); err != nil {
		return err
	}
	return s.recomputeTotal(cart)
}

// recomputeTotal sums the snapshot line totals and stores the result
func (s *CartService) recomputeTotal(cart *models.Cart) error {
	items, err := s.carts.GetItems(cart.ID)
	if err != nil {
		return err
	}

	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}

	if err := s.carts.UpdateTotal(cart.ID, total); err != nil {
		return err
	}
	cart.TotalCents = total
	return nil
}
