package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Rows mirror the on-disk columns one to one; toDomain expands nullable
// columns, epoch milliseconds and the packed image list.

type userRow struct {
	ID        int64          `db:"id"`
	Email     string         `db:"email"`
	Password  string         `db:"password"`
	Name      string         `db:"name"`
	Phone     sql.NullString `db:"phone"`
	CreatedAt sql.NullInt64  `db:"createdAt"`
}

func (r userRow) toDomain() *User {
	return &User{
		ID:        r.ID,
		Email:     r.Email,
		Password:  r.Password,
		Name:      r.Name,
		Phone:     r.Phone.String,
		CreatedAt: fromMillis(r.CreatedAt),
	}
}

type equipmentRow struct {
	ID          int64           `db:"id"`
	Title       string          `db:"title"`
	Description sql.NullString  `db:"description"`
	Price       sql.NullFloat64 `db:"price"`
	SellerName  sql.NullString  `db:"sellerName"`
	SellerPhone sql.NullString  `db:"sellerPhone"`
	ImageURL    sql.NullString  `db:"imageUrl"`
	Images      sql.NullString  `db:"images"`
	OwnerID     sql.NullInt64   `db:"userId"`
	CreatedAt   sql.NullInt64   `db:"createdAt"`
}

func (r equipmentRow) toDomain() (*Equipment, error) {
	images, err := unpackImages(r.Images)
	if err != nil {
		return nil, fmt.Errorf("equipment %d: %w", r.ID, err)
	}
	return &Equipment{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description.String,
		Price:       r.Price.Float64,
		SellerName:  r.SellerName.String,
		SellerPhone: r.SellerPhone.String,
		ImageURL:    r.ImageURL.String,
		Images:      images,
		OwnerID:     nullableID(r.OwnerID),
		CreatedAt:   fromMillis(r.CreatedAt),
	}, nil
}

type serviceRow struct {
	ID            int64           `db:"id"`
	ServiceName   string          `db:"serviceName"`
	ToolType      sql.NullString  `db:"toolType"`
	Description   sql.NullString  `db:"description"`
	Price         sql.NullFloat64 `db:"price"`
	PriceUnit     sql.NullString  `db:"priceUnit"`
	ProviderName  sql.NullString  `db:"providerName"`
	ProviderPhone sql.NullString  `db:"providerPhone"`
	ImageURL      sql.NullString  `db:"imageUrl"`
	OwnerID       sql.NullInt64   `db:"userId"`
	CreatedAt     sql.NullInt64   `db:"createdAt"`
}

func (r serviceRow) toDomain() *Service {
	unit := PriceUnit(r.PriceUnit.String)
	if unit == "" {
		unit = PriceUnitHectare
	}
	return &Service{
		ID:            r.ID,
		ServiceName:   r.ServiceName,
		ToolType:      r.ToolType.String,
		Description:   r.Description.String,
		Price:         r.Price.Float64,
		PriceUnit:     unit,
		ProviderName:  r.ProviderName.String,
		ProviderPhone: r.ProviderPhone.String,
		ImageURL:      r.ImageURL.String,
		OwnerID:       nullableID(r.OwnerID),
		CreatedAt:     fromMillis(r.CreatedAt),
	}
}

type calendarEventRow struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	EventDate   sql.NullInt64  `db:"eventDate"`
	EventType   sql.NullString `db:"eventType"`
}

func (r calendarEventRow) toDomain() *CalendarEvent {
	return &CalendarEvent{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description.String,
		EventDate:   fromMillis(r.EventDate),
		EventType:   r.EventType.String,
	}
}

type newsRow struct {
	ID        int64          `db:"id"`
	Title     string         `db:"title"`
	Content   sql.NullString `db:"content"`
	Timestamp sql.NullInt64  `db:"timestamp"`
}

func (r newsRow) toDomain() *NewsItem {
	return &NewsItem{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content.String,
		Timestamp: fromMillis(r.Timestamp),
	}
}

// packImages encodes an ordered image list as a JSON array. A nil list is
// stored as NULL; an empty, non-nil list is stored as "[]".
func packImages(images []string) (sql.NullString, error) {
	if images == nil {
		return sql.NullString{}, nil
	}
	payload, err := json.Marshal(images)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("pack images: %w", err)
	}
	return sql.NullString{String: string(payload), Valid: true}, nil
}

// unpackImages always returns a non-nil slice.
func unpackImages(raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" {
		return []string{}, nil
	}
	out := []string{}
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return nil, fmt.Errorf("unpack images: %w", err)
	}
	if out == nil {
		// "null" literal
		out = []string{}
	}
	return out, nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(raw sql.NullInt64) time.Time {
	if !raw.Valid {
		return time.Time{}
	}
	return time.UnixMilli(raw.Int64).UTC()
}

func nullableID(raw sql.NullInt64) *int64 {
	if !raw.Valid {
		return nil
	}
	id := raw.Int64
	return &id
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
