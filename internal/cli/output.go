package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/agrolink/agrolink/internal/storage"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const dateLayout = "2006-01-02"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("(none)"))
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func renderDetails(w io.Writer, pairs [][2]string) error {
	rows := make([][]string, 0, len(pairs))
	for _, pair := range pairs {
		rows = append(rows, []string{pair[0], pair[1]})
	}
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Rows(rows...).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 0 {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

type userView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserView(user *storage.User) userView {
	return userView{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
	}
}

type equipmentView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	SellerName  string    `json:"seller_name,omitempty"`
	SellerPhone string    `json:"seller_phone,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Images      []string  `json:"images"`
	OwnerID     *int64    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func newEquipmentView(item storage.Equipment) equipmentView {
	return equipmentView{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Price:       item.Price,
		SellerName:  item.SellerName,
		SellerPhone: item.SellerPhone,
		ImageURL:    item.ImageURL,
		Images:      item.Images,
		OwnerID:     item.OwnerID,
		CreatedAt:   item.CreatedAt,
	}
}

type serviceView struct {
	ID            int64     `json:"id"`
	ServiceName   string    `json:"service_name"`
	ToolType      string    `json:"tool_type,omitempty"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	PriceUnit     string    `json:"price_unit"`
	ProviderName  string    `json:"provider_name,omitempty"`
	ProviderPhone string    `json:"provider_phone,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	OwnerID       *int64    `json:"owner_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func newServiceView(service storage.Service) serviceView {
	return serviceView{
		ID:            service.ID,
		ServiceName:   service.ServiceName,
		ToolType:      service.ToolType,
		Description:   service.Description,
		Price:         service.Price,
		PriceUnit:     string(service.PriceUnit),
		ProviderName:  service.ProviderName,
		ProviderPhone: service.ProviderPhone,
		ImageURL:      service.ImageURL,
		OwnerID:       service.OwnerID,
		CreatedAt:     service.CreatedAt,
	}
}

type eventView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	EventDate   time.Time `json:"event_date"`
	EventType   string    `json:"event_type,omitempty"`
}

func newEventView(event storage.CalendarEvent) eventView {
	return eventView{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		EventDate:   event.EventDate,
		EventType:   event.EventType,
	}
}

type newsView struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func newNewsView(item storage.NewsItem) newsView {
	return newsView{
		ID:        item.ID,
		Title:     item.Title,
		Content:   item.Content,
		Timestamp: item.Timestamp,
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatOwner(id *int64) string {
	if id == nil {
		return "-"
	}
	return formatID(*id)
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64) + " EUR"
}

func formatServicePrice(price float64, unit storage.PriceUnit) string {
	return formatPrice(price) + "/" + string(unit)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(dateLayout)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation(dateLayout, raw, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, usageErrorf("invalid date %q: use YYYY-MM-DD or RFC 3339", raw)
	}
	return t.UTC(), nil
}
