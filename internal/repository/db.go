package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("repository: not found")

// OrganizationRepository defines the interface for organization operations
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	List(ctx context.Context) ([]domain.Organization, error)
}

// BotRepository defines the interface for bot configuration operations
type BotRepository interface {
	Create(ctx context.Context, bot *domain.Bot) error
	GetByID(ctx context.Context, id string) (*domain.Bot, error)
	GetByOrganizationID(ctx context.Context, orgID string) (*domain.Bot, error)
	GetByGatewayAddress(ctx context.Context, address string) (*domain.Bot, error)
}

// ClientRepository defines the interface for client operations
type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	// GetOrCreate finds the client of (org, canonical address) or creates an
	// empty one. The returned bool is true when a new row was created.
	GetOrCreate(ctx context.Context, orgID, address string) (*domain.Client, bool, error)
	ListByOrganization(ctx context.Context, orgID string) ([]domain.Client, error)
	SetThreadID(ctx context.Context, clientID, threadID string) error
	Save(ctx context.Context, client *domain.Client) error
}

// TableRepository defines the interface for table operations
type TableRepository interface {
	Create(ctx context.Context, table *domain.Table) error
	GetByID(ctx context.Context, id string) (*domain.Table, error)
	// ListAvailableByMinCapacity returns AVAILABLE tables with capacity >=
	// guests, smallest capacity first.
	ListAvailableByMinCapacity(ctx context.Context, orgID string, guests int) ([]domain.Table, error)
}

// MenuItemRepository defines the interface for menu operations
type MenuItemRepository interface {
	Create(ctx context.Context, item *domain.MenuItem) error
	GetByID(ctx context.Context, id string) (*domain.MenuItem, error)
	GetByNameInsensitive(ctx context.Context, orgID, name string) (*domain.MenuItem, error)
	ListActive(ctx context.Context, orgID, category string, classification domain.MenuClassification) ([]domain.MenuItem, error)
	ListUpselling(ctx context.Context, orgID string) ([]domain.MenuItem, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.MenuItem, error)
	// AddCombination adds a directed recommended-combination edge, enforcing
	// the per-item out-edge cap.
	AddCombination(ctx context.Context, itemAID, itemBID string) error
	CombinationNames(ctx context.Context, itemID string) ([]string, error)
}

// ReservationRepository defines the interface for reservation operations
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	Save(ctx context.Context, res *domain.Reservation) error
	// Transition moves the reservation along the state machine, rejecting
	// moves outside the allowed graph.
	Transition(ctx context.Context, res *domain.Reservation, next domain.ReservationStatus) error
	ListOpenForTableOnDate(ctx context.Context, tableID, date string) ([]domain.Reservation, error)
	ListByClientAndDate(ctx context.Context, clientID, date string) ([]domain.Reservation, error)
	ListByClientDateStatus(ctx context.Context, clientID, date string, status domain.ReservationStatus) ([]domain.Reservation, error)
	ListDueReminders(ctx context.Context, now time.Time) ([]domain.Reservation, error)
	CountByClientAndStatus(ctx context.Context, clientID string, status domain.ReservationStatus) (int64, error)
	AttachMenuItem(ctx context.Context, item *domain.ReservationMenuItem) error
	// ListMenuItemIDsByClient returns the menu item id of every item attached
	// to any reservation of the client, one entry per attachment.
	ListMenuItemIDsByClient(ctx context.Context, clientID string) ([]string, error)
}

// PromotionRepository defines the interface for promotion and reward operations
type PromotionRepository interface {
	CreatePromotion(ctx context.Context, p *domain.Promotion) error
	CreateReward(ctx context.Context, r *domain.Reward) error
	GetByRewardCode(ctx context.Context, orgID, promoCode string) (*domain.Promotion, error)
	ListEnabledInWindow(ctx context.Context, orgID, date string) ([]domain.Promotion, error)
	ListEnabled(ctx context.Context, orgID string) ([]domain.Promotion, error)
	GetSalesLevelReward(ctx context.Context, orgID string) (*domain.Reward, error)
	GetSentLog(ctx context.Context, promotionID, clientID string) (*domain.PromotionSentLog, error)
	UpsertSentLog(ctx context.Context, promotionID, clientID string, status domain.PromotionSentStatus) error
	// MarkLogUsed flips the (promotion, client) log entry to USED. USED is
	// terminal; a row already USED is left untouched and reported.
	MarkLogUsed(ctx context.Context, promotionID, clientID string) error
}

// RepositoryManager combines all repositories
type RepositoryManager interface {
	Organizations() OrganizationRepository
	Bots() BotRepository
	Clients() ClientRepository
	Tables() TableRepository
	MenuItems() MenuItemRepository
	Reservations() ReservationRepository
	Promotions() PromotionRepository

	// Transaction support
	WithTx(ctx context.Context, fn func(ctx context.Context, repos RepositoryManager) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connection
	Close() error
}

// GormRepositoryManager implements RepositoryManager using GORM
type GormRepositoryManager struct {
	db              *gorm.DB
	orgRepo         *GormOrganizationRepository
	botRepo         *GormBotRepository
	clientRepo      *GormClientRepository
	tableRepo       *GormTableRepository
	menuRepo        *GormMenuItemRepository
	reservationRepo *GormReservationRepository
	promotionRepo   *GormPromotionRepository
}

// NewGormRepositoryManager creates a new GORM repository manager
func NewGormRepositoryManager(db *gorm.DB) *GormRepositoryManager {
	return &GormRepositoryManager{
		db:              db,
		orgRepo:         NewGormOrganizationRepository(db),
		botRepo:         NewGormBotRepository(db),
		clientRepo:      NewGormClientRepository(db),
		tableRepo:       NewGormTableRepository(db),
		menuRepo:        NewGormMenuItemRepository(db),
		reservationRepo: NewGormReservationRepository(db),
		promotionRepo:   NewGormPromotionRepository(db),
	}
}

// Organizations returns the organization repository
func (m *GormRepositoryManager) Organizations() OrganizationRepository { return m.orgRepo }

// Bots returns the bot repository
func (m *GormRepositoryManager) Bots() BotRepository { return m.botRepo }

// Clients returns the client repository
func (m *GormRepositoryManager) Clients() ClientRepository { return m.clientRepo }

// Tables returns the table repository
func (m *GormRepositoryManager) Tables() TableRepository { return m.tableRepo }

// MenuItems returns the menu item repository
func (m *GormRepositoryManager) MenuItems() MenuItemRepository { return m.menuRepo }

// Reservations returns the reservation repository
func (m *GormRepositoryManager) Reservations() ReservationRepository { return m.reservationRepo }

// Promotions returns the promotion repository
func (m *GormRepositoryManager) Promotions() PromotionRepository { return m.promotionRepo }

// WithTx executes a function within a database transaction
func (m *GormRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos RepositoryManager) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewGormRepositoryManager(tx))
	})
}

// Ping checks the database connection
func (m *GormRepositoryManager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (m *GormRepositoryManager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// notFound maps gorm.ErrRecordNotFound to the package sentinel.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
