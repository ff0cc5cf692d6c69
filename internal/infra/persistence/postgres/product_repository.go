package postgres

import (
	"context"

	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/domain/lifecycle"
	"mlm/internal/domain/repository"
	"mlm/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository is the constructor for productRepository.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (repo *productRepository) Create(ctx context.Context, product *entity.Product) error {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	productM := fromProductDomain(product)
	if err := repo.db.WithContext(ctx).Create(productM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateSKU
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create product")
	}
	product.CreatedAt = productM.CreatedAt
	product.UpdatedAt = productM.UpdatedAt

	return nil
}

func (repo *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	var productM model.ProductModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&productM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}

		return nil, errors.Wrap(err, "failed to find product by id")
	}

	return toProductDomain(&productM), nil
}

func (repo *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Product, error) {
	products := make(map[uuid.UUID]*entity.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	var productMs []*model.ProductModel
	if err := repo.db.WithContext(ctx).Where("id IN ?", ids).Find(&productMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find products by ids")
	}
	for _, productM := range productMs {
		products[productM.ID] = toProductDomain(productM)
	}

	return products, nil
}

func (repo *productRepository) List(ctx context.Context, activeOnly bool) ([]*entity.Product, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	query := repo.db.WithContext(ctx).Order("sku ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var productMs []*model.ProductModel
	if err := query.Find(&productMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	products := make([]*entity.Product, len(productMs))
	for i, productM := range productMs {
		products[i] = toProductDomain(productM)
	}

	return products, nil
}

func toProductDomain(data *model.ProductModel) *entity.Product {
	return &entity.Product{
		ID:        data.ID,
		SKU:       data.SKU,
		Name:      data.Name,
		Price:     data.Price,
		Points:    data.Points,
		IsPack:    data.IsPack,
		PackRank:  data.PackRank,
		ImageURL:  data.ImageURL,
		IsActive:  data.IsActive,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromProductDomain(data *entity.Product) *model.ProductModel {
	return &model.ProductModel{
		ID:        data.ID,
		SKU:       data.SKU,
		Name:      data.Name,
		Price:     data.Price,
		Points:    data.Points,
		IsPack:    data.IsPack,
		PackRank:  data.PackRank,
		ImageURL:  data.ImageURL,
		IsActive:  data.IsActive,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
