package agency

import (
	"context"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AgencyRepository defines persistence for agencies
type AgencyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Agency, error)
	FindBySlug(ctx context.Context, slug string) (*Agency, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, agency *Agency) error
	// CreateWithOwner inserts the agency and its first member atomically
	CreateWithOwner(ctx context.Context, agency *Agency, owner *Member) error
}

// MemberRepository defines persistence for memberships
type MemberRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)
	FindByAgencyAndUser(ctx context.Context, agencyID, userID uuid.UUID) (*Member, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Member, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Member, error)
	FindAllForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]Member, error)
	CountForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) (int64, error)
	CountOwners(ctx context.Context, agencyID uuid.UUID) (int64, error)
	Save(ctx context.Context, member *Member) error
	Delete(ctx context.Context, id uuid.UUID) error
}
