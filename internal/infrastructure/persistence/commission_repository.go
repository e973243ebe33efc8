package persistence

import (
	"context"

	"github.com/estatehub/backend/internal/domain/crm"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCommissionRepository implements crm.CommissionRepository using GORM
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewGormCommissionRepository creates a new GormCommissionRepository
func NewGormCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// FindByID finds a commission by ID
func (r *GormCommissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Commission, error) {
	var c crm.Commission
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// FindByDeal lists the commissions of a deal
func (r *GormCommissionRepository) FindByDeal(ctx context.Context, dealID uuid.UUID) ([]crm.Commission, error) {
	var list []crm.Commission
	if err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// FindAllForAgency lists an agency's commissions
func (r *GormCommissionRepository) FindAllForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]crm.Commission, error) {
	var list []crm.Commission
	query := r.applyFilter(r.db.WithContext(ctx).Model(&crm.Commission{}).Where("agency_id = ?", agencyID), filter)
	query = paginate(query.Order(orderClause(filter.OrderBy, filter.OrderDir, CommissionSortFields, "created_at")), filter)
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// CountForAgency counts an agency's commissions matching the filter
func (r *GormCommissionRepository) CountForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&crm.Commission{}).Where("agency_id = ?", agencyID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type commissionTotalsRow struct {
	Status   string
	Currency string
	Count    int64
	Amount   decimal.Decimal
}

// Totals sums commissions per status and currency for the agency or one member
func (r *GormCommissionRepository) Totals(ctx context.Context, agencyID uuid.UUID, memberID *uuid.UUID) ([]crm.CommissionTotals, error) {
	query := r.db.WithContext(ctx).
		Model(&crm.Commission{}).
		Select("status, currency, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Where("agency_id = ?", agencyID)
	if memberID != nil {
		query = query.Where("member_id = ?", *memberID)
	}

	var rows []commissionTotalsRow
	if err := query.Group("status, currency").Order("status, currency").Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make([]crm.CommissionTotals, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, crm.CommissionTotals{
			Status:   crm.CommissionStatus(row.Status),
			Currency: row.Currency,
			Count:    row.Count,
			Amount:   row.Amount,
		})
	}
	return totals, nil
}

// Save creates or updates a commission
func (r *GormCommissionRepository) Save(ctx context.Context, c *crm.Commission) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *GormCommissionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "member_id":
			query = query.Where("member_id = ?", value)
		case "deal_id":
			query = query.Where("deal_id = ?", value)
		}
	}
	return query
}

var _ crm.CommissionRepository = (*GormCommissionRepository)(nil)
