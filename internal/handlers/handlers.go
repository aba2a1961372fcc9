package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/luisale89/storage-manager-sub000/internal/cache"
	"github.com/luisale89/storage-manager-sub000/internal/config"
	"github.com/luisale89/storage-manager-sub000/internal/mail"
	"github.com/luisale89/storage-manager-sub000/internal/middleware"
	"github.com/luisale89/storage-manager-sub000/internal/models"
	"github.com/luisale89/storage-manager-sub000/internal/repository"
	"github.com/luisale89/storage-manager-sub000/internal/security"
	"github.com/luisale89/storage-manager-sub000/internal/service"
	"github.com/luisale89/storage-manager-sub000/internal/storage"
)

type HandlerSet struct {
	log   zerolog.Logger
	cfg   *config.AppConfig
	guard *middleware.Guard

	authService      *service.AuthService
	companyService   *service.CompanyService
	inventoryService *service.InventoryService
	labelService     *service.LabelService

	db    *pgxpool.Pool
	cache *redis.Client
	store *storage.ObjectStore

	users        *repository.UserRepository
	companies    *repository.CompanyRepository
	roles        *repository.RoleRepository
	storages     *repository.StorageRepository
	containers   *repository.ContainerRepository
	categories   *repository.CategoryRepository
	items        *repository.ItemRepository
	attributes   *repository.AttributeRepository
	providers    *repository.ProviderRepository
	acquisitions *repository.AcquisitionRepository
	stock        *repository.StockRepository
	tx           *repository.TxStore
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	redisClient *redis.Client,
	store *storage.ObjectStore,
	mailer *mail.Mailer,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	storageRepo := repository.NewStorageRepository(db)
	containerRepo := repository.NewContainerRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	itemRepo := repository.NewItemRepository(db)
	attributeRepo := repository.NewAttributeRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	acquisitionRepo := repository.NewAcquisitionRepository(db)
	stockRepo := repository.NewStockRepository(db)
	txStore := repository.NewTxStore(db)

	tokens := security.NewTokenIssuer(cfg.Security.JWTSecret)
	revocations := cache.NewRevocationStore(redisClient)
	guard := middleware.NewGuard(tokens, revocations, userRepo, roleRepo)

	auth := service.NewAuthService(userRepo, roleRepo, revocations, mailer, tokens, cfg.Security, log)
	company := service.NewCompanyService(companyRepo, roleRepo, userRepo, txStore, mailer, log)
	inventory := service.NewInventoryService(txStore, log)
	labels := service.NewLabelService(containerRepo, store, log)

	return HandlerSet{
		log:   log,
		cfg:   cfg,
		guard: guard,

		authService:      auth,
		companyService:   company,
		inventoryService: inventory,
		labelService:     labels,

		db:    db,
		cache: redisClient,
		store: store,

		users:        userRepo,
		companies:    companyRepo,
		roles:        roleRepo,
		storages:     storageRepo,
		containers:   containerRepo,
		categories:   categoryRepo,
		items:        itemRepo,
		attributes:   attributeRepo,
		providers:    providerRepo,
		acquisitions: acquisitionRepo,
		stock:        stockRepo,
		tx:           txStore,
	}
}

// Register wires the route table. Each group selects exactly one claim-type
// gate; role-gated groups additionally declare their minimum level.
func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/password/forgot", h.ForgotPassword)

		verification := auth.Group("")
		verification.Use(h.guard.VerificationGate())
		verification.PUT("/verification", h.CheckVerificationCode)

		verified := auth.Group("")
		verified.Use(h.guard.VerifiedGate())
		verified.POST("/signup/complete", h.CompleteSignup)
		verified.PUT("/password", h.ResetPassword)

		user := auth.Group("")
		user.Use(h.guard.UserGate())
		user.POST("/logout", h.Logout)
		user.GET("/profile", h.GetProfile)
		user.PATCH("/profile", h.UpdateProfile)
	}

	userScope := v1.Group("/user")
	userScope.Use(h.guard.UserGate())
	{
		userScope.GET("/companies", h.ListMyCompanies)
		userScope.POST("/companies", h.CreateCompany)
		userScope.POST("/companies/:companyID/token", h.SelectCompany)
	}

	// Tenant-scoped routes. Viewer may read, operator may move stock, admin
	// may reshape the catalog, owner manages the company itself.
	viewer := v1.Group("/company")
	viewer.Use(h.guard.RoleGate(models.LevelViewer))
	{
		viewer.GET("", h.GetCompany)
		viewer.GET("/storages", h.ListStorages)
		viewer.GET("/storages/:storageID", h.GetStorage)
		viewer.GET("/storages/:storageID/containers", h.ListContainers)
		viewer.GET("/containers/:containerID", h.GetContainer)
		viewer.GET("/containers/:containerID/qr", h.GetContainerLabel)
		viewer.GET("/categories", h.ListCategories)
		viewer.GET("/categories/:categoryID", h.GetCategory)
		viewer.GET("/items", h.ListItems)
		viewer.GET("/items/:itemID", h.GetItem)
		viewer.GET("/attributes", h.ListAttributes)
		viewer.GET("/providers", h.ListProviders)
		viewer.GET("/providers/:providerID", h.GetProvider)
		viewer.GET("/acquisitions", h.ListAcquisitions)
		viewer.GET("/acquisitions/:acquisitionID", h.GetAcquisition)
		viewer.GET("/inventory/movements", h.ListMovements)
		viewer.GET("/inventory/stock", h.ListStock)
	}

	operator := v1.Group("/company")
	operator.Use(h.guard.RoleGate(models.LevelOperator))
	{
		operator.POST("/acquisitions", h.CreateAcquisition)
		operator.POST("/inventory/movements", h.RecordMovement)
	}

	admin := v1.Group("/company")
	admin.Use(h.guard.RoleGate(models.LevelAdmin))
	{
		admin.GET("/members", h.ListMembers)
		admin.POST("/storages", h.CreateStorage)
		admin.PUT("/storages/:storageID", h.UpdateStorage)
		admin.DELETE("/storages/:storageID", h.DeleteStorage)
		admin.POST("/storages/:storageID/containers", h.CreateContainer)
		admin.PUT("/containers/:containerID", h.UpdateContainer)
		admin.DELETE("/containers/:containerID", h.DeleteContainer)
		admin.POST("/categories", h.CreateCategory)
		admin.PUT("/categories/:categoryID", h.UpdateCategory)
		admin.DELETE("/categories/:categoryID", h.DeleteCategory)
		admin.POST("/items", h.CreateItem)
		admin.PUT("/items/:itemID", h.UpdateItem)
		admin.DELETE("/items/:itemID", h.DeleteItem)
		admin.PUT("/items/:itemID/attributes", h.SetItemAttributes)
		admin.POST("/attributes", h.CreateAttribute)
		admin.PUT("/attributes/:attributeID", h.UpdateAttribute)
		admin.DELETE("/attributes/:attributeID", h.DeleteAttribute)
		admin.POST("/providers", h.CreateProvider)
		admin.PUT("/providers/:providerID", h.UpdateProvider)
		admin.DELETE("/providers/:providerID", h.DeleteProvider)
	}

	owner := v1.Group("/company")
	owner.Use(h.guard.RoleGate(models.LevelOwner))
	{
		owner.PATCH("", h.UpdateCompany)
		owner.POST("/members", h.InviteMember)
		owner.PATCH("/members/:roleID", h.UpdateMember)
		owner.DELETE("/members/:roleID", h.RemoveMember)
	}

	super := v1.Group("/admin")
	super.Use(h.guard.SuperUserGate())
	{
		super.GET("/companies", h.AdminListCompanies)
		super.GET("/users", h.AdminListUsers)
		super.PATCH("/users/:userID/status", h.AdminUpdateUserStatus)
	}
}
