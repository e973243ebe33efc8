package persistence

import (
	"context"
	"strings"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAgencyRepository implements agency.AgencyRepository using GORM
type GormAgencyRepository struct {
	db *gorm.DB
}

// NewGormAgencyRepository creates a new GormAgencyRepository
func NewGormAgencyRepository(db *gorm.DB) *GormAgencyRepository {
	return &GormAgencyRepository{db: db}
}

// FindByID finds an agency by ID
func (r *GormAgencyRepository) FindByID(ctx context.Context, id uuid.UUID) (*agency.Agency, error) {
	var a agency.Agency
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// FindBySlug finds an agency by slug
func (r *GormAgencyRepository) FindBySlug(ctx context.Context, slug string) (*agency.Agency, error) {
	var a agency.Agency
	if err := r.db.WithContext(ctx).
		Where("slug = ?", strings.ToLower(slug)).
		First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// ExistsBySlug reports whether the slug is taken
func (r *GormAgencyRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&agency.Agency{}).
		Where("slug = ?", strings.ToLower(slug)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an agency
func (r *GormAgencyRepository) Save(ctx context.Context, a *agency.Agency) error {
	return saved(r.db.WithContext(ctx).Save(a).Error)
}

// CreateWithOwner inserts the agency and its owner membership in one transaction
func (r *GormAgencyRepository) CreateWithOwner(ctx context.Context, a *agency.Agency, owner *agency.Member) error {
	return saved(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		return tx.Create(owner).Error
	}))
}

// GormMemberRepository implements agency.MemberRepository using GORM
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// FindByID finds a member by ID
func (r *GormMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*agency.Member, error) {
	var m agency.Member
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// FindByAgencyAndUser finds a user's membership in an agency
func (r *GormMemberRepository) FindByAgencyAndUser(ctx context.Context, agencyID, userID uuid.UUID) (*agency.Member, error) {
	var m agency.Member
	if err := r.db.WithContext(ctx).
		Where("agency_id = ? AND user_id = ?", agencyID, userID).
		First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// FindByUser lists all memberships of a user, oldest first
func (r *GormMemberRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]agency.Member, error) {
	var members []agency.Member
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// FindByIDs loads several members at once
func (r *GormMemberRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]agency.Member, error) {
	if len(ids) == 0 {
		return []agency.Member{}, nil
	}
	var members []agency.Member
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// FindAllForAgency lists an agency's members
func (r *GormMemberRepository) FindAllForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]agency.Member, error) {
	var members []agency.Member
	query := r.applyFilter(r.db.WithContext(ctx).Model(&agency.Member{}).Where("agency_id = ?", agencyID), filter)
	query = paginate(query.Order(orderClause(filter.OrderBy, filter.OrderDir, MemberSortFields, "joined_at")), filter)
	if err := query.Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// CountForAgency counts an agency's members matching the filter
func (r *GormMemberRepository) CountForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&agency.Member{}).Where("agency_id = ?", agencyID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOwners counts active OWNER members
func (r *GormMemberRepository) CountOwners(ctx context.Context, agencyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&agency.Member{}).
		Where("agency_id = ? AND role = ? AND active = ?", agencyID, agency.RoleOwner, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a member
func (r *GormMemberRepository) Save(ctx context.Context, m *agency.Member) error {
	return saved(r.db.WithContext(ctx).Save(m).Error)
}

// Delete removes a member
func (r *GormMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(r.db.WithContext(ctx).Delete(&agency.Member{}, "id = ?", id))
}

func (r *GormMemberRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "role":
			query = query.Where("role = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}
	return query
}

var (
	_ agency.AgencyRepository = (*GormAgencyRepository)(nil)
	_ agency.MemberRepository = (*GormMemberRepository)(nil)
)
