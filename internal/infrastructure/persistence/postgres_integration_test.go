package persistence

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/crm"
	"github.com/estatehub/backend/internal/domain/identity"
	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/estatehub/backend/internal/infrastructure/migration"
	"github.com/estatehub/backend/migrations"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newPostgresDB starts a disposable PostgreSQL container and applies the
// embedded migrations to it
func newPostgresDB(t *testing.T) (*gorm.DB, *migration.Migrator) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("estatehub_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, m
}

func TestPostgres_MigrationsRoundTrip(t *testing.T) {
	db, m := newPostgresDB(t)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(4), version)

	for _, table := range []string{"users", "agencies", "members", "properties", "property_images", "points_of_interest", "leads", "deals", "commissions", "tasks", "notifications"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	require.NoError(t, m.Steps(-2))
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, db.Migrator().HasTable("leads"))
	assert.True(t, db.Migrator().HasTable("properties"))

	require.NoError(t, m.Up())
	assert.True(t, db.Migrator().HasTable("leads"))
}

func TestPostgres_ListingQueries(t *testing.T) {
	db, _ := newPostgresDB(t)
	repo := NewGormPropertyRepository(db)
	ctx := context.Background()

	agencyID, _ := seedAgencyWithOwner(t, db, "Casa Azul")
	subject := seedProperty(t, repo, agencyID, propertySeed{"Subject", "Alfama", 300000, 80, 2, true})
	seedProperty(t, repo, agencyID, propertySeed{"Comparable", "Alfama", 320000, 85, 2, true})
	seedProperty(t, repo, agencyID, propertySeed{"Draft", "Belem", 250000, 70, 1, false})

	count, err := repo.CountPublic(ctx, listing.SearchCriteria{City: "LISBON", District: "alfama"}, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	maxPrice := decimal.NewFromInt(310000)
	list, err := repo.SearchPublic(ctx, listing.SearchCriteria{MaxPrice: &maxPrice}, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, subject.ID, list[0].ID)

	comps, err := repo.FindComparables(ctx, listing.ComparableQuery{
		City:         "Lisbon",
		DealType:     listing.DealTypeSale,
		PropertyType: listing.PropertyTypeApartment,
		Currency:     "EUR",
		ExcludeID:    &subject.ID,
		Limit:        10,
	})
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.True(t, decimal.NewFromInt(320000).Equal(comps[0].Price))
}

func TestPostgres_CRMQueries(t *testing.T) {
	db, _ := newPostgresDB(t)
	leads := NewGormLeadRepository(db)
	tasks := NewGormTaskRepository(db)
	ctx := context.Background()

	agencyID, owner := seedAgencyWithOwner(t, db, "Casa Verde")
	maria := seedLead(t, leads, agencyID, "Maria Lopez", "maria@example.com")
	seedLead(t, leads, agencyID, "John Smith", "john@example.com")
	otherAgency, _ := seedAgencyWithOwner(t, db, "Casa Rosa")
	seedLead(t, leads, otherAgency, "Maria Lopez Rosa", "rosa@example.com")

	found, err := leads.FindAllForAgency(ctx, agencyID, shared.NewFilter(1, 20, "", "", "LOPEZ"))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, maria.ID, found[0].ID)

	count, err := leads.CountForAgency(ctx, otherAgency, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	task, err := crm.NewTask(agencyID, owner, "Call Maria", crm.TaskPriorityHigh)
	require.NoError(t, err)
	due := time.Now().UTC().Add(-time.Hour)
	task.DueAt = &due
	require.NoError(t, tasks.Save(ctx, task))

	overdue, err := tasks.FindOverdueUnnotified(ctx, time.Now().UTC(), 10)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, task.ID, overdue[0].ID)
}

// seedAgencyWithOwner inserts the user, agency and owner rows the foreign keys need
func seedAgencyWithOwner(t *testing.T, db *gorm.DB, name string) (agencyID, ownerID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	user, err := identity.NewUser(strings.ToLower(strings.ReplaceAll(name, " ", "."))+"@example.test", "correct-horse-battery", name+" Owner")
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Create(ctx, user))

	a, err := agency.NewAgency(name, listing.Slugify(name))
	require.NoError(t, err)
	owner, err := agency.NewMember(a.ID, user.ID, agency.RoleOwner, "Founder")
	require.NoError(t, err)
	require.NoError(t, NewGormAgencyRepository(db).CreateWithOwner(ctx, a, owner))
	return a.ID, owner.ID
}
