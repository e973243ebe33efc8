package persistence

import (
	"context"

	"github.com/estatehub/backend/internal/domain/crm"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// leadImportBatchSize bounds the rows per INSERT statement during CSV import
const leadImportBatchSize = 200

// GormLeadRepository implements crm.LeadRepository using GORM
type GormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new GormLeadRepository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// FindByID finds a lead by ID regardless of agency; callers check ownership
func (r *GormLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Lead, error) {
	var lead crm.Lead
	if err := r.db.WithContext(ctx).First(&lead, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &lead, nil
}

// FindAllForAgency lists an agency's leads
func (r *GormLeadRepository) FindAllForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]crm.Lead, error) {
	var leads []crm.Lead
	query := r.applyFilter(r.db.WithContext(ctx).Model(&crm.Lead{}).Where("agency_id = ?", agencyID), filter)
	query = paginate(query.Order(orderClause(filter.OrderBy, filter.OrderDir, LeadSortFields, "created_at")), filter)
	if err := query.Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

// CountForAgency counts an agency's leads matching the filter
func (r *GormLeadRepository) CountForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&crm.Lead{}).Where("agency_id = ?", agencyID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a lead
func (r *GormLeadRepository) Save(ctx context.Context, lead *crm.Lead) error {
	return r.db.WithContext(ctx).Save(lead).Error
}

// SaveBatch inserts imported leads in batches
func (r *GormLeadRepository) SaveBatch(ctx context.Context, leads []*crm.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(leads, leadImportBatchSize).Error
}

// Delete removes a lead
func (r *GormLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(r.db.WithContext(ctx).Delete(&crm.Lead{}, "id = ?", id))
}

func (r *GormLeadRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = searchAny(query, filter.Search, "full_name", "email", "phone")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		case "assigned_to_id":
			query = query.Where("assigned_to_id = ?", value)
		case "unassigned":
			query = query.Where("assigned_to_id IS NULL")
		case "property_id":
			query = query.Where("property_id = ?", value)
		case "preferred_district":
			query = query.Where("preferred_district = ?", value)
		}
	}
	return query
}

var _ crm.LeadRepository = (*GormLeadRepository)(nil)
