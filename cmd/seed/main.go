// Command seed fills a database with a demo agency: members, listings,
// points of interest, leads, tasks and a closed deal.
package main

import (
	"context"
	"flag"

	agencyapp "github.com/estatehub/backend/internal/application/agency"
	"github.com/estatehub/backend/internal/application/crm"
	identityapp "github.com/estatehub/backend/internal/application/identity"
	listingapp "github.com/estatehub/backend/internal/application/listing"
	notificationapp "github.com/estatehub/backend/internal/application/notification"
	"github.com/estatehub/backend/internal/infrastructure/auth"
	"github.com/estatehub/backend/internal/infrastructure/config"
	"github.com/estatehub/backend/internal/infrastructure/logger"
	"github.com/estatehub/backend/internal/infrastructure/persistence"
	"github.com/estatehub/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	opts := Options{}
	flag.StringVar(&opts.AgencyName, "agency", "Demo Realty", "Agency name")
	flag.StringVar(&opts.City, "city", "Lisbon", "City for listings")
	flag.Float64Var(&opts.CenterLat, "lat", 38.7223, "City centre latitude")
	flag.Float64Var(&opts.CenterLng, "lng", -9.1393, "City centre longitude")
	flag.StringVar(&opts.Currency, "currency", "EUR", "Listing and deal currency")
	flag.StringVar(&opts.Password, "password", "demo-password", "Password for every seeded user")
	flag.IntVar(&opts.Agents, "agents", 3, "Number of agents")
	flag.IntVar(&opts.Properties, "properties", 40, "Number of listings")
	flag.IntVar(&opts.Leads, "leads", 25, "Number of leads")
	flag.IntVar(&opts.POIs, "pois", 60, "Number of points of interest")
	flag.Uint64Var(&opts.Seed, "seed", 0, "Random seed (0 = random)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if cfg.Database.Driver == "sqlite" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	seeder := NewSeeder(newServices(db.DB, cfg, log), opts.Seed, log)
	if _, err := seeder.Run(context.Background(), opts); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
}

func newServices(db *gorm.DB, cfg *config.Config, log *zap.Logger) Services {
	userRepo := persistence.NewGormUserRepository(db)
	memberRepo := persistence.NewGormMemberRepository(db)
	leadRepo := persistence.NewGormLeadRepository(db)
	dealRepo := persistence.NewGormDealRepository(db)
	propertyRepo := persistence.NewGormPropertyRepository(db)
	poiRepo := persistence.NewGormPOIRepository(db)
	notifications := notificationapp.NewNotificationService(persistence.NewGormNotificationRepository(db), log)

	return Services{
		Auth: identityapp.NewAuthService(userRepo, memberRepo, auth.NewJWTService(cfg.JWT),
			auth.NewInMemoryTokenBlacklist(), log),
		Agencies: agencyapp.NewAgencyService(persistence.NewGormAgencyRepository(db), memberRepo, userRepo, log),
		// seeded listings carry no images
		Listings: listingapp.NewListingService(propertyRepo, persistence.NewGormImageRepository(db), memberRepo,
			storage.NewMemoryObjectStorage(cfg.Storage.PublicBaseURL), cfg.Storage.MaxImageSize, log),
		POIs:  listingapp.NewPOIService(poiRepo, log),
		Leads: crm.NewLeadService(leadRepo, memberRepo, propertyRepo, notifications, log),
		Deals: crm.NewDealService(dealRepo, leadRepo, propertyRepo, memberRepo, notifications, log),
		Tasks: crm.NewTaskService(persistence.NewGormTaskRepository(db), leadRepo, dealRepo, memberRepo, log),
	}
}
