package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("storage: not found")
	ErrDuplicateEmail = errors.New("storage: email already registered")
	ErrSchemaInit     = errors.New("storage: schema initialization failed")
)

// PriceUnit qualifies a service price.
type PriceUnit string

const (
	PriceUnitHectare   PriceUnit = "ha"
	PriceUnitHour      PriceUnit = "h"
	PriceUnitKilometer PriceUnit = "km"
	PriceUnitTonne     PriceUnit = "t"
	PriceUnitPiece     PriceUnit = "unit"
)

var knownPriceUnits = []PriceUnit{
	PriceUnitHectare,
	PriceUnitHour,
	PriceUnitKilometer,
	PriceUnitTonne,
	PriceUnitPiece,
}

func KnownPriceUnits() []PriceUnit {
	out := make([]PriceUnit, len(knownPriceUnits))
	copy(out, knownPriceUnits)
	return out
}

func (u PriceUnit) Valid() bool {
	for _, known := range knownPriceUnits {
		if u == known {
			return true
		}
	}
	return false
}

type User struct {
	ID    int64
	Email string
	// Password is stored and compared verbatim.
	// TODO: hash on register once existing plaintext rows are migrated.
	Password  string
	Name      string
	Phone     string
	CreatedAt time.Time
}

type Equipment struct {
	ID          int64
	Title       string
	Description string
	Price       float64
	SellerName  string
	SellerPhone string
	ImageURL    string
	Images      []string
	OwnerID     *int64
	CreatedAt   time.Time
}

type Service struct {
	ID            int64
	ServiceName   string
	ToolType      string
	Description   string
	Price         float64
	PriceUnit     PriceUnit
	ProviderName  string
	ProviderPhone string
	ImageURL      string
	OwnerID       *int64
	CreatedAt     time.Time
}

type CalendarEvent struct {
	ID          int64
	Title       string
	Description string
	EventDate   time.Time
	EventType   string
}

type NewsItem struct {
	ID        int64
	Title     string
	Content   string
	Timestamp time.Time
}

// BackfillResult reports the outcome of the ownership backfill.
type BackfillResult struct {
	AdminID    int64
	Created    bool
	Reassigned int64
}

type UserRepository interface {
	Register(ctx context.Context, user *User) (int64, error)
	FindByCredentials(ctx context.Context, email, password string) (*User, error)
	Get(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type EquipmentRepository interface {
	Create(ctx context.Context, item *Equipment) error
	List(ctx context.Context) ([]Equipment, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Equipment, error)
	Get(ctx context.Context, id int64) (*Equipment, error)
	// Delete removes the row only when both id and owner match. A mismatch
	// is reported as (false, nil), indistinguishable from a missing row.
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
}

type ServiceRepository interface {
	Create(ctx context.Context, service *Service) error
	List(ctx context.Context) ([]Service, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Service, error)
	Get(ctx context.Context, id int64) (*Service, error)
	// Delete does not check ownership.
	Delete(ctx context.Context, id int64) (bool, error)
}

type CalendarRepository interface {
	Create(ctx context.Context, event *CalendarEvent) error
	List(ctx context.Context) ([]CalendarEvent, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]CalendarEvent, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type NewsRepository interface {
	Create(ctx context.Context, item *NewsItem) error
	List(ctx context.Context) ([]NewsItem, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
