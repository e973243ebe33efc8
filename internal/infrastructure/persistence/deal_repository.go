package persistence

import (
	"context"

	"github.com/estatehub/backend/internal/domain/crm"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDealRepository implements crm.DealRepository using GORM
type GormDealRepository struct {
	db *gorm.DB
}

// NewGormDealRepository creates a new GormDealRepository
func NewGormDealRepository(db *gorm.DB) *GormDealRepository {
	return &GormDealRepository{db: db}
}

// FindByID finds a deal by ID
func (r *GormDealRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Deal, error) {
	var deal crm.Deal
	if err := r.db.WithContext(ctx).First(&deal, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &deal, nil
}

// FindAllForAgency lists an agency's deals
func (r *GormDealRepository) FindAllForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]crm.Deal, error) {
	var deals []crm.Deal
	query := r.applyFilter(r.db.WithContext(ctx).Model(&crm.Deal{}).Where("agency_id = ?", agencyID), filter)
	query = paginate(query.Order(orderClause(filter.OrderBy, filter.OrderDir, DealSortFields, "created_at")), filter)
	if err := query.Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

// CountForAgency counts an agency's deals matching the filter
func (r *GormDealRepository) CountForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&crm.Deal{}).Where("agency_id = ?", agencyID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a deal
func (r *GormDealRepository) Save(ctx context.Context, deal *crm.Deal) error {
	return r.db.WithContext(ctx).Save(deal).Error
}

// SaveClosedWon writes a won deal with its commission, converted lead and sold property
func (r *GormDealRepository) SaveClosedWon(ctx context.Context, w crm.ClosedWon) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(w.Deal).Error; err != nil {
			return err
		}
		if w.Commission != nil {
			if err := tx.Create(w.Commission).Error; err != nil {
				return err
			}
		}
		if w.Lead != nil {
			if err := tx.Save(w.Lead).Error; err != nil {
				return err
			}
		}
		if w.Property != nil {
			if err := tx.Omit("Images").Save(w.Property).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a deal
func (r *GormDealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(r.db.WithContext(ctx).Delete(&crm.Deal{}, "id = ?", id))
}

func (r *GormDealRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = searchAny(query, filter.Search, "title")
	for key, value := range filter.Filters {
		switch key {
		case "stage":
			query = query.Where("stage = ?", value)
		case "agent_id":
			query = query.Where("agent_id = ?", value)
		case "lead_id":
			query = query.Where("lead_id = ?", value)
		case "property_id":
			query = query.Where("property_id = ?", value)
		}
	}
	return query
}

var _ crm.DealRepository = (*GormDealRepository)(nil)
