package router

import (
	"github.com/estatehub/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler of the API
type Handlers struct {
	System       *handler.SystemHandler
	Auth         *handler.AuthHandler
	Agency       *handler.AgencyHandler
	Lead         *handler.LeadHandler
	Deal         *handler.DealHandler
	Commission   *handler.CommissionHandler
	Task         *handler.TaskHandler
	Property     *handler.PropertyHandler
	Marketplace  *handler.MarketplaceHandler
	POI          *handler.POIHandler
	Notification *handler.NotificationHandler
}

// APIOptions tunes how the API groups are mounted
type APIOptions struct {
	// CredentialGuard runs before register, login and refresh (typically a strict rate limit)
	CredentialGuard []gin.HandlerFunc
}

// RegisterAPI registers the API domain groups and the unversioned /health check.
// Authentication is enforced by the engine-level JWT middleware.
func (r *Router) RegisterAPI(h Handlers, opts APIOptions) *Router {
	r.engine.GET("/health", h.System.Health)
	for _, g := range APIGroups(h, opts) {
		r.Register(g)
	}
	return r
}

// APIGroups builds the domain groups mounted under /api/v1
func APIGroups(h Handlers, opts APIOptions) []*DomainGroup {
	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)
	system.GET("/system/info", h.System.GetSystemInfo)

	authGroup := NewDomainGroup("auth", "/auth")
	credentials := authGroup.Group("credentials", "")
	credentials.Use(opts.CredentialGuard...)
	credentials.POST("/register", h.Auth.Register)
	credentials.POST("/login", h.Auth.Login)
	credentials.POST("/refresh", h.Auth.RefreshToken)
	authGroup.POST("/logout", h.Auth.Logout)
	authGroup.GET("/me", h.Auth.GetCurrentUser)
	authGroup.PUT("/me", h.Auth.UpdateProfile)
	authGroup.PUT("/password", h.Auth.ChangePassword)

	agencies := NewDomainGroup("agency", "/agencies")
	agencies.POST("", h.Agency.Create)
	agencies.GET("/current", h.Agency.GetCurrent)
	agencies.PUT("/current", h.Agency.UpdateCurrent)
	members := agencies.Group("members", "/current/members")
	members.GET("", h.Agency.ListMembers)
	members.POST("", h.Agency.AddMember)
	members.PUT("/:id", h.Agency.UpdateMember)
	members.DELETE("/:id", h.Agency.RemoveMember)

	leads := NewDomainGroup("lead", "/leads")
	leads.GET("", h.Lead.List)
	leads.POST("", h.Lead.Create)
	leads.POST("/import", h.Lead.Import)
	leads.GET("/export", h.Lead.Export)
	leads.GET("/:id", h.Lead.GetByID)
	leads.PUT("/:id", h.Lead.Update)
	leads.DELETE("/:id", h.Lead.Delete)
	leads.PATCH("/:id/status", h.Lead.ChangeStatus)
	leads.POST("/:id/assign", h.Lead.Assign)

	deals := NewDomainGroup("deal", "/deals")
	deals.GET("", h.Deal.List)
	deals.POST("", h.Deal.Create)
	deals.GET("/:id", h.Deal.GetByID)
	deals.PUT("/:id", h.Deal.Update)
	deals.DELETE("/:id", h.Deal.Delete)
	deals.PATCH("/:id/stage", h.Deal.ChangeStage)

	commissions := NewDomainGroup("commission", "/commissions")
	commissions.GET("", h.Commission.List)
	commissions.POST("", h.Commission.Create)
	commissions.GET("/summary", h.Commission.Summary)
	commissions.GET("/:id", h.Commission.GetByID)
	commissions.POST("/:id/approve", h.Commission.Approve)
	commissions.POST("/:id/pay", h.Commission.MarkPaid)
	commissions.POST("/:id/cancel", h.Commission.Cancel)

	tasks := NewDomainGroup("task", "/tasks")
	tasks.GET("", h.Task.List)
	tasks.POST("", h.Task.Create)
	tasks.GET("/:id", h.Task.GetByID)
	tasks.PUT("/:id", h.Task.Update)
	tasks.DELETE("/:id", h.Task.Delete)
	tasks.PATCH("/:id/status", h.Task.ChangeStatus)
	tasks.POST("/:id/complete", h.Task.Complete)

	properties := NewDomainGroup("property", "/properties")
	properties.GET("", h.Property.List)
	properties.POST("", h.Property.Create)
	properties.GET("/:id", h.Property.GetByID)
	properties.PUT("/:id", h.Property.Update)
	properties.DELETE("/:id", h.Property.Delete)
	properties.POST("/:id/publish", h.Property.Publish)
	properties.POST("/:id/archive", h.Property.Archive)
	properties.POST("/:id/reserve", h.Property.MarkReserved)
	properties.POST("/:id/sold", h.Property.MarkSold)
	properties.POST("/:id/images", h.Property.UploadImage)
	properties.DELETE("/:id/images/:imageId", h.Property.DeleteImage)

	marketplace := NewDomainGroup("marketplace", "/marketplace")
	marketplace.GET("/properties", h.Marketplace.Search)
	marketplace.GET("/properties/:id", h.Marketplace.GetByID)
	marketplace.GET("/properties/:id/valuation", h.Marketplace.ListingValuation)
	marketplace.GET("/properties/:id/walkability", h.Marketplace.ListingWalkability)
	marketplace.POST("/valuation", h.Marketplace.Valuation)
	marketplace.GET("/walkability", h.Marketplace.Walkability)

	notifications := NewDomainGroup("notification", "/notifications")
	notifications.GET("", h.Notification.List)
	notifications.GET("/unread-count", h.Notification.UnreadCount)
	notifications.POST("/read-all", h.Notification.MarkAllRead)
	notifications.POST("/:id/read", h.Notification.MarkRead)

	pois := NewDomainGroup("poi", "/pois")
	pois.GET("", h.POI.List)
	pois.POST("", h.POI.Create)
	pois.DELETE("/:id", h.POI.Delete)

	return []*DomainGroup{
		system, authGroup, agencies, leads, deals, commissions,
		tasks, properties, marketplace, notifications, pois,
	}
}
