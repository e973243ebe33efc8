package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	agencyapp "github.com/estatehub/backend/internal/application/agency"
	"github.com/estatehub/backend/internal/application/crm"
	identityapp "github.com/estatehub/backend/internal/application/identity"
	listingapp "github.com/estatehub/backend/internal/application/listing"
	notificationapp "github.com/estatehub/backend/internal/application/notification"
	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/infrastructure/auth"
	"github.com/estatehub/backend/internal/infrastructure/config"
	"github.com/estatehub/backend/internal/infrastructure/persistence"
	"github.com/estatehub/backend/internal/infrastructure/storage"
	"github.com/estatehub/backend/internal/interfaces/http/handler"
	"github.com/estatehub/backend/internal/interfaces/http/middleware"
	"github.com/estatehub/backend/internal/interfaces/http/router"
	"github.com/estatehub/backend/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

const maxTestImageSize = 1 << 20

type actorCtxKey struct{}

// apiEnv is the full HTTP stack on an in-memory sqlite database. The caller
// identity is injected per request in place of the JWT middleware.
type apiEnv struct {
	t        *testing.T
	db       *gorm.DB
	engine   *gin.Engine
	images   *storage.MemoryObjectStorage
	authSvc  *identityapp.AuthService
	agencies *agencyapp.AgencyService
	seq      int
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	log := zap.NewNop()

	userRepo := persistence.NewGormUserRepository(db)
	agencyRepo := persistence.NewGormAgencyRepository(db)
	memberRepo := persistence.NewGormMemberRepository(db)
	leadRepo := persistence.NewGormLeadRepository(db)
	dealRepo := persistence.NewGormDealRepository(db)
	commissionRepo := persistence.NewGormCommissionRepository(db)
	taskRepo := persistence.NewGormTaskRepository(db)
	propertyRepo := persistence.NewGormPropertyRepository(db)
	imageRepo := persistence.NewGormImageRepository(db)
	poiRepo := persistence.NewGormPOIRepository(db)
	notificationRepo := persistence.NewGormNotificationRepository(db)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-access-secret-0123456789",
		RefreshSecret:          "handler-test-refresh-secret-0123456789",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "estatehub-test",
	})
	images := storage.NewMemoryObjectStorage("https://cdn.test/uploads")

	notifications := notificationapp.NewNotificationService(notificationRepo, log)
	authSvc := identityapp.NewAuthService(userRepo, memberRepo, jwtService, auth.NewInMemoryTokenBlacklist(), log)
	agencies := agencyapp.NewAgencyService(agencyRepo, memberRepo, userRepo, log)

	handlers := router.Handlers{
		System: handler.NewSystemHandler("estatehub", "test", map[string]handler.Pinger{
			"database": handler.PingFunc(func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}),
		}),
		Auth:   handler.NewAuthHandler(authSvc),
		Agency: handler.NewAgencyHandler(agencies),
		Lead: handler.NewLeadHandler(
			crm.NewLeadService(leadRepo, memberRepo, propertyRepo, notifications, log)),
		Deal: handler.NewDealHandler(
			crm.NewDealService(dealRepo, leadRepo, propertyRepo, memberRepo, notifications, log)),
		Commission: handler.NewCommissionHandler(
			crm.NewCommissionService(commissionRepo, dealRepo, memberRepo, notifications, log)),
		Task: handler.NewTaskHandler(
			crm.NewTaskService(taskRepo, leadRepo, dealRepo, memberRepo, log)),
		Property: handler.NewPropertyHandler(
			listingapp.NewListingService(propertyRepo, imageRepo, memberRepo, images, maxTestImageSize, log)),
		Marketplace: handler.NewMarketplaceHandler(
			listingapp.NewMarketplaceService(propertyRepo, poiRepo, 20, log)),
		POI:          handler.NewPOIHandler(listingapp.NewPOIService(poiRepo, log)),
		Notification: handler.NewNotificationHandler(notifications),
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(func(c *gin.Context) {
		if actor, ok := c.Request.Context().Value(actorCtxKey{}).(agency.Actor); ok {
			c.Set(middleware.ActorKey, actor)
		}
		c.Next()
	})
	router.NewRouter(engine).RegisterAPI(handlers, router.APIOptions{}).Setup()

	return &apiEnv{
		t:        t,
		db:       db,
		engine:   engine,
		images:   images,
		authSvc:  authSvc,
		agencies: agencies,
	}
}

// newUser registers a user and returns its actor without an agency
func (e *apiEnv) newUser(name string) agency.Actor {
	e.t.Helper()
	e.seq++
	user, err := e.authSvc.Register(context.Background(), identityapp.RegisterInput{
		Email:    fmt.Sprintf("user%d@estatehub.test", e.seq),
		Password: "correct-horse-battery",
		FullName: name,
	})
	require.NoError(e.t, err)
	return agency.Actor{UserID: user.ID}
}

// newAgency registers an owner and creates an agency for them
func (e *apiEnv) newAgency(name string) agency.Actor {
	e.t.Helper()
	owner := e.newUser(name + " Owner")
	result, err := e.agencies.CreateAgency(context.Background(), owner.UserID, agencyapp.CreateAgencyInput{Name: name})
	require.NoError(e.t, err)
	require.NotNil(e.t, result.Owner)
	return agency.Actor{
		UserID:   owner.UserID,
		AgencyID: result.ID,
		MemberID: result.Owner.ID,
		Role:     agency.RoleOwner,
	}
}

// addMember registers a user and adds it to the owner's agency with the role
func (e *apiEnv) addMember(owner agency.Actor, name string, role agency.Role) agency.Actor {
	e.t.Helper()
	e.seq++
	email := fmt.Sprintf("member%d@estatehub.test", e.seq)
	user, err := e.authSvc.Register(context.Background(), identityapp.RegisterInput{
		Email:    email,
		Password: "correct-horse-battery",
		FullName: name,
	})
	require.NoError(e.t, err)
	member, err := e.agencies.AddMember(context.Background(), owner, agencyapp.AddMemberInput{
		Email: email,
		Role:  string(role),
	})
	require.NoError(e.t, err)
	return agency.Actor{
		UserID:   user.ID,
		AgencyID: owner.AgencyID,
		MemberID: member.ID,
		Role:     role,
	}
}

func (e *apiEnv) serve(req *http.Request, actor *agency.Actor) *httptest.ResponseRecorder {
	if actor != nil {
		req = req.WithContext(context.WithValue(req.Context(), actorCtxKey{}, *actor))
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// do sends a JSON request as actor; a nil actor is anonymous
func (e *apiEnv) do(method, path string, actor *agency.Actor, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.serve(req, actor)
}

// upload sends a multipart form with one file field
func (e *apiEnv) upload(path string, actor *agency.Actor, field, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename)}
	header["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(header)
	require.NoError(e.t, err)
	_, err = part.Write(content)
	require.NoError(e.t, err)
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.serve(req, actor)
}

func decodeItem[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp handler.ItemResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(t, resp.Success, w.Body.String())
	return resp.Data
}

func decodePage[T any](t *testing.T, w *httptest.ResponseRecorder) handler.PageResponse[T] {
	t.Helper()
	var resp handler.PageResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(t, resp.Success, w.Body.String())
	return resp
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

func ptr[T any](v T) *T { return &v }
