package repository

import (
	"context"

	"github.com/yukikurage/listing-api/internal/database"
	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/utils"
	"gorm.io/gorm"
)

// GormListingRepository is a GORM implementation of ListingRepository
type GormListingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new ListingRepository
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &GormListingRepository{db: db}
}

// Create creates a new listing
func (r *GormListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

// FindByID finds a listing by ID with optional preloading
func (r *GormListingRepository) FindByID(ctx context.Context, id string, preload ...string) (*models.Listing, error) {
	var listing models.Listing
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, err
	}

	return &listing, nil
}

// FindBySlug finds a listing by slug, newest first when inactive copies exist
func (r *GormListingRepository) FindBySlug(ctx context.Context, slug string, activeOnly bool, preload ...string) (*models.Listing, error) {
	var listing models.Listing
	query := r.db.WithContext(ctx).Where("slug = ?", slug)
	if activeOnly {
		query = query.Scopes(database.ActiveListings)
	}

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Order("is_active DESC, created_at DESC").First(&listing).Error; err != nil {
		return nil, err
	}

	return &listing, nil
}

// ExistsActiveSlug reports whether an active listing already uses slug
func (r *GormListingRepository) ExistsActiveSlug(ctx context.Context, slug string) (bool, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Scopes(database.ActiveListings).
		Where("slug = ?", slug).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// UpdateScoped patches a listing only if it still belongs to sponsorID.
// Zero rows affected means the listing is gone or owned by another sponsor.
func (r *GormListingRepository) UpdateScoped(ctx context.Context, id, sponsorID string, patch map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Scopes(database.SponsorScope(id, sponsorID)).
		Updates(patch)
	return result.RowsAffected, result.Error
}

// IncrementPaymentsMade adds one to total_payments_made
func (r *GormListingRepository) IncrementPaymentsMade(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		UpdateColumn("total_payments_made", gorm.Expr("total_payments_made + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List retrieves listings with filtering and pagination
func (r *GormListingRepository) List(ctx context.Context, filter ListingFilter) ([]models.Listing, int64, error) {
	var listings []models.Listing

	if filter.SponsorID == "" {
		return []models.Listing{}, 0, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Listing{}).Where("listings.sponsor_id = ?", filter.SponsorID)

	if filter.ActiveOnly {
		query = query.Scopes(database.ActiveListings)
	}
	if filter.Type != nil {
		query = query.Where("listings.type = ?", *filter.Type)
	}
	if filter.IsPublished != nil {
		query = query.Where("listings.is_published = ?", *filter.IsPublished)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("listings.created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Find(&listings).Error; err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}
