package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/interfaces/http/handler"
	"github.com/sitestock/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler the API mounts. Documents and System
// are optional.
type Handlers struct {
	Auth            *handler.AuthHandler
	Users           *handler.UserHandler
	Partners        *handler.PartnerHandler
	Items           *handler.ItemHandler
	Inventory       *handler.InventoryHandler
	MaterialRequest *handler.MaterialRequestHandler
	MaterialIssue   *handler.MaterialIssueHandler
	PurchaseOrder   *handler.PurchaseOrderHandler
	GoodsReceipt    *handler.GoodsReceiptHandler
	Documents       *handler.DocumentHandler
	System          *handler.SystemHandler
}

var (
	storeRoles = []identity.Role{
		identity.RoleCenterStoreIncharge,
		identity.RoleSiteStoreIncharge,
	}
	purchaseRoles = []identity.Role{
		identity.RolePurchaseManager,
		identity.RolePurchaseVP,
	}
	receivingRoles = []identity.Role{
		identity.RoleSiteStoreIncharge,
		identity.RoleCenterStoreIncharge,
		identity.RoleSecurityGuard,
	}
	catalogRoles = []identity.Role{
		identity.RoleCenterStoreIncharge,
		identity.RolePurchaseManager,
	}
	transferRoles = []identity.Role{
		identity.RoleCenterStoreIncharge,
		identity.RolePurchaseManager,
	}
)

// Groups builds the domain route groups. Role gates here are coarse; the
// services enforce the per-document rules such as approval hierarchy.
func (h Handlers) Groups() []*DomainGroup {
	admin := middleware.RequireRoles()
	groups := []*DomainGroup{}

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", h.Auth.Login)
	auth.GET("/me", h.Auth.Me)
	groups = append(groups, auth)

	users := NewDomainGroup("identity", "/users")
	users.POST("", admin, h.Users.Create)
	users.GET("", h.Users.List)
	users.GET("/:id", h.Users.Get)
	groups = append(groups, users)

	partner := NewDomainGroup("partner", "/partner")
	partner.POST("/sites", admin, h.Partners.CreateSite)
	partner.GET("/sites", h.Partners.ListSites)
	partner.GET("/sites/:id", h.Partners.GetSite)
	partner.POST("/suppliers", middleware.RequireRoles(purchaseRoles...), h.Partners.CreateSupplier)
	partner.GET("/suppliers", h.Partners.ListSuppliers)
	partner.GET("/suppliers/:id", h.Partners.GetSupplier)
	groups = append(groups, partner)

	items := NewDomainGroup("catalog", "/items")
	items.POST("", middleware.RequireRoles(catalogRoles...), h.Items.Create)
	items.PUT("/:id", middleware.RequireRoles(catalogRoles...), h.Items.Update)
	items.GET("", h.Items.List)
	items.GET("/:id", h.Items.Get)
	items.GET("/code/:code", h.Items.GetByCode)
	groups = append(groups, items)

	inventory := NewDomainGroup("inventory", "/inventory")
	inventory.POST("/opening", middleware.RequireRoles(storeRoles...), h.Inventory.AddOpeningStock)
	inventory.GET("/records", h.Inventory.ListRecords)
	inventory.GET("/items/:id/history", h.Inventory.History)
	inventory.GET("/items/:id", h.Inventory.GetRecord)
	inventory.GET("/items/:id/balances", h.Inventory.ItemBalances)
	inventory.GET("/report", h.Inventory.Report)
	inventory.GET("/report/export", h.Inventory.Export)
	groups = append(groups, inventory)

	mr := NewDomainGroup("requisition", "/material-requests")
	mr.POST("", h.MaterialRequest.Create)
	mr.GET("/review", h.MaterialRequest.ListForReview)
	mr.GET("/approved", h.MaterialRequest.ListApproved)
	mr.GET("/mine", h.MaterialRequest.ListMine)
	mr.GET("/without-po", middleware.RequireRoles(purchaseRoles...), h.MaterialRequest.ApprovedWithoutPO)
	mr.GET("/issue-status", h.MaterialRequest.IssueStatus)
	mr.GET("/number/:number", h.MaterialRequest.GetByNumber)
	mr.GET("/:id", h.MaterialRequest.Get)
	mr.POST("/:id/approve", h.MaterialRequest.Approve)
	mr.DELETE("/:id", h.MaterialRequest.Delete)
	groups = append(groups, mr)

	mi := NewDomainGroup("logistics", "/material-issues")
	mi.POST("", middleware.RequireRoles(storeRoles...), h.MaterialIssue.Create)
	mi.PUT("/:id", middleware.RequireRoles(storeRoles...), h.MaterialIssue.Update)
	mi.GET("", h.MaterialIssue.List)
	mi.GET("/mine", h.MaterialIssue.ListMine)
	mi.GET("/number/:number", h.MaterialIssue.GetByNumber)
	mi.GET("/:id", h.MaterialIssue.Get)
	groups = append(groups, mi)

	to := NewDomainGroup("transfers", "/transfer-orders")
	to.GET("", h.MaterialIssue.ListTransfers)
	to.GET("/reference/:number", h.MaterialIssue.GetTransferByReference)
	to.GET("/:id", h.MaterialIssue.GetTransfer)
	to.POST("/:id/approve", middleware.RequireRoles(transferRoles...), h.MaterialIssue.ApproveTransfer)
	to.DELETE("/:id", middleware.RequireRoles(transferRoles...), h.MaterialIssue.DeleteTransfer)
	groups = append(groups, to)

	po := NewDomainGroup("procurement", "/purchase-orders")
	po.POST("", middleware.RequireRoles(identity.RolePurchaseManager), h.PurchaseOrder.Create)
	po.PUT("/:id", middleware.RequireRoles(identity.RolePurchaseManager), h.PurchaseOrder.Update)
	po.POST("/delete", middleware.RequireRoles(identity.RolePurchaseManager), h.PurchaseOrder.Delete)
	po.POST("/:id/approve", middleware.RequireRoles(purchaseRoles...), h.PurchaseOrder.Approve)
	po.POST("/:id/close", admin, h.PurchaseOrder.Close)
	po.GET("", h.PurchaseOrder.List)
	po.GET("/items-status", h.PurchaseOrder.ItemsStatus)
	po.GET("/number/:number", h.PurchaseOrder.GetByNumber)
	po.GET("/:id", h.PurchaseOrder.Get)
	groups = append(groups, po)

	grn := NewDomainGroup("receiving", "/goods-receipts")
	grn.POST("", middleware.RequireRoles(receivingRoles...), h.GoodsReceipt.Create)
	grn.PUT("/:id", middleware.RequireRoles(receivingRoles...), h.GoodsReceipt.Update)
	grn.DELETE("/:id", middleware.RequireRoles(receivingRoles...), h.GoodsReceipt.Delete)
	grn.GET("", h.GoodsReceipt.List)
	grn.GET("/number/:number", h.GoodsReceipt.GetByNumber)
	grn.GET("/:id", h.GoodsReceipt.Get)
	groups = append(groups, grn)

	if h.Documents != nil {
		docs := NewDomainGroup("documents", "/documents")
		docs.GET("/:kind/:number", h.Documents.Download)
		groups = append(groups, docs)
	}

	if h.System != nil {
		system := NewDomainGroup("system", "/system")
		system.GET("/info", h.System.Info)
		system.GET("/jobs", admin, h.System.Jobs)
		system.POST("/jobs/:name/run", admin, h.System.RunJob)
		groups = append(groups, system)
	}
	return groups
}

// Mount registers the groups on r and the unversioned health endpoint on
// engine.
func (h Handlers) Mount(engine *gin.Engine, r *Router) {
	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}
	for _, g := range h.Groups() {
		r.Register(g)
	}
	r.Setup()
}
