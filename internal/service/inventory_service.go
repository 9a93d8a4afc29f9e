package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/catalog"
	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/events"
	"github.com/andresuchdata/joyeria/backend-go/internal/repository"
	"github.com/andresuchdata/joyeria/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

// InventoryService owns product records: CRUD, images and catalog import.
type InventoryService struct {
	products repository.ProductRepository
	objects  storage.ObjectStorage
	notify   *Notifier
	now      func() time.Time
}

// NewInventoryService accepts a nil objects store; image uploads then fail.
func NewInventoryService(products repository.ProductRepository, objects storage.ObjectStorage, notify *Notifier) *InventoryService {
	return &InventoryService{products: products, objects: objects, notify: notify, now: time.Now}
}

func (s *InventoryService) CreateProduct(ctx context.Context, in domain.CreateProductInput, userID *string) (*domain.Product, error) {
	product, err := s.newProduct(in, userID)
	if err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.notify.Changed(ctx, events.TableProducts, events.ActionInsert, product.ID)
	return product, nil
}

func (s *InventoryService) newProduct(in domain.CreateProductInput, userID *string) (*domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	if err := domain.RequireNonNegative("purchase_price", in.PurchasePrice); err != nil {
		return nil, err
	}
	if err := domain.RequireNonNegative("sale_price", in.SalePrice); err != nil {
		return nil, err
	}

	available := in.Stock > 0
	if in.Available != nil {
		available = *in.Available && in.Stock > 0
	}
	purchaseDate := domain.StartOfDay(s.now())
	if in.PurchaseDate != nil && !in.PurchaseDate.IsZero() {
		purchaseDate = in.PurchaseDate.Time
	}

	return &domain.Product{
		ID:            newID(),
		Name:          in.Name,
		Description:   in.Description,
		PurchasePrice: in.PurchasePrice.Round(2),
		SalePrice:     in.SalePrice.Round(2),
		Stock:         in.Stock,
		Available:     available,
		Category:      in.Category,
		Supplier:      in.Supplier,
		PurchaseDate:  purchaseDate,
		UserID:        userID,
	}, nil
}

func (s *InventoryService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *InventoryService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int, error) {
	return s.products.List(ctx, filter)
}

func (s *InventoryService) UpdateProduct(ctx context.Context, id string, in domain.UpdateProductInput) (*domain.Product, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	if in.PurchasePrice != nil {
		if err := domain.RequireNonNegative("purchase_price", *in.PurchasePrice); err != nil {
			return nil, err
		}
	}
	if in.SalePrice != nil {
		if err := domain.RequireNonNegative("sale_price", *in.SalePrice); err != nil {
			return nil, err
		}
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = in.Description
	}
	if in.PurchasePrice != nil {
		product.PurchasePrice = in.PurchasePrice.Round(2)
	}
	if in.SalePrice != nil {
		product.SalePrice = in.SalePrice.Round(2)
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
		product.Available = product.Stock > 0
	}
	if in.Available != nil {
		product.Available = *in.Available && product.Stock > 0
	}
	if in.Category != nil {
		product.Category = in.Category
	}
	if in.Supplier != nil {
		product.Supplier = in.Supplier
	}
	if in.ImageURL != nil {
		product.ImageURL = in.ImageURL
	}
	if product.Name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.notify.Changed(ctx, events.TableProducts, events.ActionUpdate, product.ID)
	return product, nil
}

func (s *InventoryService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.notify.Changed(ctx, events.TableProducts, events.ActionDelete, id)
	return nil
}

// UploadImage stores a thumbnail of the uploaded image and points the
// product's image_url at it.
func (s *InventoryService) UploadImage(ctx context.Context, id string, data []byte) (*domain.Product, error) {
	if s.objects == nil {
		return nil, domain.NewValidationError("image", "image storage is not configured")
	}
	if len(data) == 0 {
		return nil, domain.NewValidationError("image", "is required")
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	thumb, err := storage.Thumbnail(data, storage.ThumbnailWidth)
	if err != nil {
		return nil, domain.NewValidationError("image", "unsupported image: %v", err)
	}

	url, err := s.objects.Upload(ctx, storage.ProductImageKey(product.ID), thumb, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("failed to upload product image: %w", err)
	}

	product.ImageURL = &url
	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product image: %w", err)
	}

	s.notify.Changed(ctx, events.TableProducts, events.ActionUpdate, product.ID)
	return product, nil
}

// ImportCatalog upserts every valid row of a CSV or XLSX catalog by
// product name. Invalid rows are reported and skipped.
func (s *InventoryService) ImportCatalog(ctx context.Context, filename string, r io.Reader, userID *string) (*catalog.Report, error) {
	rows, rowErrors, err := catalog.Parse(filename, r)
	if err != nil {
		return nil, err
	}

	report := &catalog.Report{File: filename, Errors: rowErrors}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		product, err := s.newProduct(row.Product, userID)
		if err != nil {
			report.AddError(row.Line, err)
			continue
		}

		created, err := s.products.UpsertByName(ctx, product)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				report.AddError(row.Line, err)
				continue
			}
			return report, fmt.Errorf("failed to import line %d: %w", row.Line, err)
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	log.Info().
		Str("file", filename).
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("errors", len(report.Errors)).
		Msg("Catalog import finished")

	if report.Created+report.Updated > 0 {
		s.notify.Changed(ctx, events.TableProducts, events.ActionUpdate, "")
	}
	return report, nil
}
