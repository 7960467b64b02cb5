package service

import (
	"context"
	"fmt"

	"catalogweb/internal/model"
	"catalogweb/internal/repository"
)

// CatalogService is the only surface other components may call for product
// data. It delegates to the repository without adding business rules; it
// exists to decouple handlers and the importer from storage details.
type CatalogService interface {
	Save(ctx context.Context, product model.Product) (model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	Search(ctx context.Context, query string) ([]model.Product, error)
	GetByID(ctx context.Context, id int64) (model.Product, error)
	Update(ctx context.Context, product model.Product) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

func (s *catalogService) Save(ctx context.Context, product model.Product) (model.Product, error) {
	saved, err := s.productRepo.Save(ctx, product)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository save: %w", err)
	}
	return saved, nil
}

func (s *catalogService) ListAll(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository find all: %w", err)
	}
	return products, nil
}

func (s *catalogService) Search(ctx context.Context, query string) ([]model.Product, error) {
	products, err := s.productRepo.SearchByTitle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("product repository search by title: %w", err)
	}
	return products, nil
}

func (s *catalogService) GetByID(ctx context.Context, id int64) (model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	return product, nil
}

func (s *catalogService) Update(ctx context.Context, product model.Product) error {
	return s.productRepo.Update(ctx, product)
}

func (s *catalogService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.productRepo.DeleteByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("product repository delete by id: %w", err)
	}
	return deleted, nil
}
