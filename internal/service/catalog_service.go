package service

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/vishnuvardhan105222/E-commerce/internal/models"
	"github.com/vishnuvardhan105222/E-commerce/internal/util"
)

// CatalogService handles product catalog reads and admin catalog management
type CatalogService struct {
	products ProductRepository
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(products ProductRepository) *CatalogService {
	return &CatalogService{
		products: products,
		logger:   util.GetLogger(),
	}
}

// ProductRequest carries product fields for create and update
type ProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price"`
	Category    string  `json:"category" binding:"required"`
	Stock       int     `json:"stock"`
}

func (r *ProductRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("product name is required: %w", ErrInvalidInput)
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("product description is required: %w", ErrInvalidInput)
	}
	if r.Price < 0 {
		return fmt.Errorf("price must be at least 0: %w", ErrInvalidInput)
	}
	if r.Stock < 0 {
		return fmt.Errorf("stock cannot be negative: %w", ErrInvalidInput)
	}
	if !models.ValidCategory(r.Category) {
		return fmt.Errorf("invalid category %q: %w", r.Category, ErrInvalidInput)
	}
	return nil
}

// ListProducts returns the whole catalog
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct returns a single product
func (s *CatalogService) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct")
	defer span.End()

	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("product %s not found: %w", id.Hex(), ErrNotFound)
	}
	return product, nil
}

// CreateProduct adds a product to the catalog
func (s *CatalogService) CreateProduct(ctx context.Context, req *ProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if err := req.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	}

	if err := s.products.InsertProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.Hex()),
		zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct overwrites a product's fields
func (s *CatalogService) UpdateProduct(ctx context.Context, id primitive.ObjectID, req *ProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	if err := req.validate(); err != nil {
		return nil, err
	}

	existing, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("product %s not found: %w", id.Hex(), ErrNotFound)
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Price = req.Price
	existing.Category = req.Category
	existing.Stock = req.Stock

	ok, err := s.products.ReplaceProduct(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("product %s not found: %w", id.Hex(), ErrNotFound)
	}
	return existing, nil
}

// DeleteProduct removes a product from the catalog
func (s *CatalogService) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteProduct")
	defer span.End()

	ok, err := s.products.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !ok {
		return fmt.Errorf("product %s not found: %w", id.Hex(), ErrNotFound)
	}

	s.logger.Info("Product deleted", zap.String("product_id", id.Hex()))
	return nil
}
