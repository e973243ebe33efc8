package main

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	agencyapp "github.com/estatehub/backend/internal/application/agency"
	"github.com/estatehub/backend/internal/application/crm"
	identityapp "github.com/estatehub/backend/internal/application/identity"
	listingapp "github.com/estatehub/backend/internal/application/listing"
	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options sizes the demo data set
type Options struct {
	AgencyName string
	City       string
	CenterLat  float64
	CenterLng  float64
	Currency   string
	Password   string
	Agents     int
	Properties int
	Leads      int
	POIs       int
	Seed       uint64
}

// Summary counts what a run created
type Summary struct {
	AgencyID   uuid.UUID
	OwnerEmail string
	Members    int
	Properties int
	Published  int
	POIs       int
	Leads      int
	Deals      int
	Tasks      int
}

// Services are the application services the seeder drives
type Services struct {
	Auth     *identityapp.AuthService
	Agencies *agencyapp.AgencyService
	Listings *listingapp.ListingService
	POIs     *listingapp.POIService
	Leads    *crm.LeadService
	Deals    *crm.DealService
	Tasks    *crm.TaskService
}

// Seeder creates a demo agency through the application services so every
// record passes the same validation as API input
type Seeder struct {
	svc    Services
	faker  *gofakeit.Faker
	logger *zap.Logger
}

// NewSeeder creates a seeder; a zero seed picks a random one
func NewSeeder(svc Services, seed uint64, logger *zap.Logger) *Seeder {
	return &Seeder{svc: svc, faker: gofakeit.New(seed), logger: logger}
}

var (
	districts       = []string{"Centro", "Riverside", "Old Town", "Harbour", "Hillside", "University"}
	dealTypes       = []string{string(listing.DealTypeSale), string(listing.DealTypeSale), string(listing.DealTypeRent)}
	propertyTypes   = []string{string(listing.PropertyTypeApartment), string(listing.PropertyTypeApartment), string(listing.PropertyTypeHouse)}
	renovations     = []string{string(listing.RenovationNone), string(listing.RenovationCosmetic), string(listing.RenovationEuro), string(listing.RenovationDesigner)}
	buildingClass   = []string{string(listing.BuildingClassEconomy), string(listing.BuildingClassComfort), string(listing.BuildingClassBusiness), string(listing.BuildingClassPremium)}
	leadSources     = []string{"WEBSITE", "REFERRAL", "PORTAL", "SOCIAL", "WALK_IN"}
	poiCategories   = []string{"GROCERY", "TRANSIT", "SCHOOL", "PARK", "PHARMACY", "RESTAURANT", "HOSPITAL"}
	metersPerDegLat = 111_320.0
)

// Run creates the owner, agency, agents, POIs, listings, leads, one won deal and tasks
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	slug := listing.Slugify(opts.AgencyName)
	ownerEmail := fmt.Sprintf("owner@%s.test", slug)

	ownerUser, err := s.svc.Auth.Register(ctx, identityapp.RegisterInput{
		Email:    ownerEmail,
		Password: opts.Password,
		FullName: s.faker.Name(),
	})
	if err != nil {
		return nil, fmt.Errorf("register owner %s: %w", ownerEmail, err)
	}
	created, err := s.svc.Agencies.CreateAgency(ctx, ownerUser.ID, agencyapp.CreateAgencyInput{
		Name:  opts.AgencyName,
		Email: "hello@" + slug + ".test",
		Phone: s.faker.Phone(),
	})
	if err != nil {
		return nil, fmt.Errorf("create agency: %w", err)
	}
	owner := agency.Actor{UserID: ownerUser.ID, AgencyID: created.ID, MemberID: created.Owner.ID, Role: agency.RoleOwner}
	summary := &Summary{AgencyID: created.ID, OwnerEmail: ownerEmail, Members: 1}

	agents := make([]agency.Actor, 0, opts.Agents)
	for i := 0; i < opts.Agents; i++ {
		email := fmt.Sprintf("agent%d@%s.test", i+1, slug)
		user, err := s.svc.Auth.Register(ctx, identityapp.RegisterInput{
			Email:    email,
			Password: opts.Password,
			FullName: s.faker.Name(),
		})
		if err != nil {
			return nil, fmt.Errorf("register agent %s: %w", email, err)
		}
		member, err := s.svc.Agencies.AddMember(ctx, owner, agencyapp.AddMemberInput{
			Email: email,
			Role:  string(agency.RoleAgent),
			Title: "Sales agent",
		})
		if err != nil {
			return nil, fmt.Errorf("add agent %s: %w", email, err)
		}
		agents = append(agents, agency.Actor{UserID: user.ID, AgencyID: created.ID, MemberID: member.ID, Role: agency.RoleAgent})
	}
	summary.Members += len(agents)

	for i := 0; i < opts.POIs; i++ {
		lat, lng := s.scatter(opts.CenterLat, opts.CenterLng, 2000)
		category := poiCategories[i%len(poiCategories)]
		if _, err := s.svc.POIs.Create(ctx, owner, listingapp.CreatePOIInput{
			Name:      s.faker.Company() + " " + strings.ToLower(category),
			Category:  category,
			Latitude:  lat,
			Longitude: lng,
		}); err != nil {
			return nil, fmt.Errorf("create poi: %w", err)
		}
		summary.POIs++
	}

	propertyIDs := make([]uuid.UUID, 0, opts.Properties)
	for i := 0; i < opts.Properties; i++ {
		agentID := s.pickAgent(owner, agents, i).MemberID
		p, err := s.svc.Listings.Create(ctx, owner, s.propertyInput(opts, agentID))
		if err != nil {
			return nil, fmt.Errorf("create listing: %w", err)
		}
		summary.Properties++
		propertyIDs = append(propertyIDs, p.ID)
		// roughly three in four listings go live
		if i%4 == 3 {
			continue
		}
		if _, err := s.svc.Listings.Publish(ctx, owner, p.ID); err != nil {
			return nil, fmt.Errorf("publish listing %s: %w", p.ID, err)
		}
		summary.Published++
	}

	now := time.Now().UTC()
	for i := 0; i < opts.Leads; i++ {
		agent := s.pickAgent(owner, agents, i)
		budget := decimal.NewFromInt(int64(s.faker.IntRange(80, 900)) * 1000)
		input := crm.CreateLeadInput{
			FullName:          s.faker.Name(),
			Email:             s.faker.Email(),
			Phone:             s.faker.Phone(),
			Source:            leadSources[i%len(leadSources)],
			BudgetMax:         &budget,
			PreferredDistrict: districts[i%len(districts)],
			Notes:             s.faker.Sentence(8),
			AssignedToID:      &agent.MemberID,
		}
		if len(propertyIDs) > 0 {
			input.PropertyID = &propertyIDs[i%len(propertyIDs)]
		}
		lead, err := s.svc.Leads.Create(ctx, owner, input)
		if err != nil {
			return nil, fmt.Errorf("create lead: %w", err)
		}
		summary.Leads++

		// one follow-up per lead, spread from overdue to next week
		due := now.Add(time.Duration(i%10-3) * 12 * time.Hour)
		if _, err := s.svc.Tasks.Create(ctx, agent, crm.CreateTaskInput{
			Title:       "Follow up with " + lead.FullName,
			Description: s.faker.Sentence(6),
			Priority:    []string{"LOW", "MEDIUM", "HIGH"}[i%3],
			LeadID:      &lead.ID,
			DueAt:       &due,
		}); err != nil {
			return nil, fmt.Errorf("create task: %w", err)
		}
		summary.Tasks++

		// the first lead closes so the commission ledger has an entry
		if i == 0 && input.PropertyID != nil {
			if err := s.closeDeal(ctx, owner, agent, lead.ID, *input.PropertyID, opts.Currency); err != nil {
				return nil, err
			}
			summary.Deals++
		}
	}

	s.logger.Info("Demo data seeded",
		zap.String("agency_id", summary.AgencyID.String()),
		zap.String("owner_email", summary.OwnerEmail),
		zap.Int("members", summary.Members),
		zap.Int("properties", summary.Properties),
		zap.Int("published", summary.Published),
		zap.Int("pois", summary.POIs),
		zap.Int("leads", summary.Leads),
		zap.Int("tasks", summary.Tasks),
		zap.Int("deals", summary.Deals))
	return summary, nil
}

func (s *Seeder) closeDeal(ctx context.Context, owner, agent agency.Actor, leadID, propertyID uuid.UUID, currency string) error {
	rate := decimal.NewFromInt(3)
	deal, err := s.svc.Deals.Create(ctx, owner, crm.CreateDealInput{
		LeadID:         leadID,
		PropertyID:     &propertyID,
		AgentID:        &agent.MemberID,
		Title:          "Demo sale",
		Amount:         decimal.NewFromInt(int64(s.faker.IntRange(150, 600)) * 1000),
		Currency:       currency,
		CommissionRate: &rate,
	})
	if err != nil {
		return fmt.Errorf("create deal: %w", err)
	}
	for _, stage := range []string{"NEGOTIATION", "CLOSED_WON"} {
		if _, err := s.svc.Deals.ChangeStage(ctx, owner, deal.ID, crm.ChangeStageInput{Stage: stage}); err != nil {
			return fmt.Errorf("move deal to %s: %w", stage, err)
		}
	}
	return nil
}

func (s *Seeder) propertyInput(opts Options, agentID uuid.UUID) listingapp.PropertyInput {
	dealType := dealTypes[s.faker.IntRange(0, len(dealTypes)-1)]
	area := float64(s.faker.IntRange(35, 220))
	bedrooms := int(math.Max(0, math.Round(area/35)-1))
	// rent is priced per month, sale per square metre
	pricePerSqm := s.faker.IntRange(2500, 6500)
	if dealType == string(listing.DealTypeRent) {
		pricePerSqm = s.faker.IntRange(12, 30)
	}
	price := decimal.NewFromFloat(area).Mul(decimal.NewFromInt(int64(pricePerSqm))).Round(0)
	lat, lng := s.scatter(opts.CenterLat, opts.CenterLng, 3000)
	year := s.faker.IntRange(1900, 2024)
	floors := s.faker.IntRange(2, 12)
	floor := s.faker.IntRange(0, floors)

	return listingapp.PropertyInput{
		Title:         fmt.Sprintf("%d-bedroom %s in %s", bedrooms, strings.ToLower(propertyTypes[bedrooms%len(propertyTypes)]), opts.City),
		Description:   s.faker.Paragraph(2, 3, 12, " "),
		DealType:      dealType,
		PropertyType:  propertyTypes[bedrooms%len(propertyTypes)],
		Price:         price,
		Currency:      opts.Currency,
		Area:          area,
		Bedrooms:      bedrooms,
		Floor:         &floor,
		TotalFloors:   &floors,
		City:          opts.City,
		District:      districts[s.faker.IntRange(0, len(districts)-1)],
		Address:       s.faker.Street(),
		Latitude:      &lat,
		Longitude:     &lng,
		Renovation:    renovations[s.faker.IntRange(0, len(renovations)-1)],
		BuildingClass: buildingClass[s.faker.IntRange(0, len(buildingClass)-1)],
		YearBuilt:     &year,
		AgentID:       &agentID,
	}
}

// scatter returns a point within radius meters of the center
func (s *Seeder) scatter(lat, lng, radius float64) (float64, float64) {
	dLat := (s.faker.Float64Range(-1, 1) * radius) / metersPerDegLat
	dLng := (s.faker.Float64Range(-1, 1) * radius) / (metersPerDegLat * math.Cos(lat*math.Pi/180))
	return lat + dLat, lng + dLng
}

func (s *Seeder) pickAgent(owner agency.Actor, agents []agency.Actor, i int) agency.Actor {
	if len(agents) == 0 {
		return owner
	}
	return agents[i%len(agents)]
}
