package app

import (
	"errors"
	"log/slog"
	"time"

	"github.com/agrolink/agrolink/internal/storage"
)

var (
	ErrValidation = errors.New("app: validation failed")
	ErrEmailTaken = errors.New("app: email already registered")
)

type RegisterRequest struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

type CreateEquipmentRequest struct {
	OwnerID     int64
	Title       string
	Description string
	Price       float64
	SellerName  string
	SellerPhone string
	ImageURL    string
	Images      []string
}

type CreateServiceRequest struct {
	OwnerID       int64
	ServiceName   string
	ToolType      string
	Description   string
	Price         float64
	PriceUnit     storage.PriceUnit
	ProviderName  string
	ProviderPhone string
	ImageURL      string
}

type CreateEventRequest struct {
	Title       string
	Description string
	EventDate   time.Time
	EventType   string
}

type CreateNewsRequest struct {
	Title   string
	Content string
}

// Services bundles the app-layer services over one store.
type Services struct {
	Accounts  *AccountService
	Equipment *EquipmentService
	Listings  *ServiceListingService
	Calendar  *CalendarService
	News      *NewsService
}

func NewServices(store *storage.Store, logger *slog.Logger) *Services {
	return &Services{
		Accounts:  NewAccountService(store.Users, logger),
		Equipment: NewEquipmentService(store.Equipment, logger),
		Listings:  NewServiceListingService(store.Services, logger),
		Calendar:  NewCalendarService(store.Calendar, logger),
		News:      NewNewsService(store.News, logger),
	}
}

func serviceLogger(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("service", name)
}
