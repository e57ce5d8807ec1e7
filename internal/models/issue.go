// internal/models/issue.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IssueCategory string

type IssueStatus string

// Location - GeoJSON точка с адресом. Координаты в порядке [долгота, широта].
type Location struct {
	Type        string    `bson:"type" json:"type"` // "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates" validate:"required,len=2"`
	Address     string    `bson:"address" json:"address" validate:"required,max=300"`
}

type Photo struct {
	URL     string `bson:"url" json:"url" validate:"required"`
	Caption string `bson:"caption,omitempty" json:"caption,omitempty"`
}

// StatusEntry - запись журнала смены статусов. Записи только добавляются.
type StatusEntry struct {
	Status    IssueStatus `bson:"status" json:"status"`
	Notes     string      `bson:"notes" json:"notes"`
	UpdatedBy string      `bson:"updatedBy" json:"updatedBy"`
	UpdatedAt time.Time   `bson:"updatedAt" json:"updatedAt"`
}

type Issue struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Основная информация
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Category    IssueCategory `bson:"category" json:"category"`

	// Местоположение и медиа
	Location Location `bson:"location" json:"location"`
	Photos   []Photo  `bson:"photos" json:"photos"`

	// Статус и обработка
	Status     IssueStatus `bson:"status" json:"status"`
	AssignedTo string      `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`

	// Рейтинг: priority и upvoteCount вычисляются, клиент их не задаёт
	Priority    float64   `bson:"priority" json:"priority"`
	UpvoteCount int       `bson:"upvoteCount" json:"upvoteCount"`
	Upvotes     UpvoteSet `bson:"upvotes" json:"upvotes"`

	CreatedBy     string        `bson:"createdBy" json:"createdBy"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
	StatusHistory []StatusEntry `bson:"statusHistory" json:"statusHistory"`

	// Версия документа для оптимистичной блокировки
	Version int64 `bson:"version" json:"-"`
}

// Категории проблем
const (
	CategoryRoads           IssueCategory = "Roads"
	CategoryStreetLights    IssueCategory = "Street Lights"
	CategoryWaterSupply     IssueCategory = "Water Supply"
	CategoryGarbage         IssueCategory = "Garbage"
	CategorySewage          IssueCategory = "Sewage"
	CategoryPublicTransport IssueCategory = "Public Transport"
	CategoryElectricity     IssueCategory = "Electricity"
	CategoryParks           IssueCategory = "Parks"
	CategoryOther           IssueCategory = "Other"
)

// Статусы проблем
const (
	StatusReported    IssueStatus = "reported"
	StatusUnderReview IssueStatus = "under review"
	StatusInProgress  IssueStatus = "in progress"
	StatusResolved    IssueStatus = "resolved"
	StatusClosed      IssueStatus = "closed"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	InitialStatusNotes   = "Issue reported by citizen"
)

func AllCategories() []IssueCategory {
	return []IssueCategory{
		CategoryRoads,
		CategoryStreetLights,
		CategoryWaterSupply,
		CategoryGarbage,
		CategorySewage,
		CategoryPublicTransport,
		CategoryElectricity,
		CategoryParks,
		CategoryOther,
	}
}

func AllStatuses() []IssueStatus {
	return []IssueStatus{
		StatusReported,
		StatusUnderReview,
		StatusInProgress,
		StatusResolved,
		StatusClosed,
	}
}

func (c IssueCategory) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

func (s IssueStatus) IsValid() bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// NewPoint строит GeoJSON точку из долготы и широты.
func NewPoint(lng, lat float64, address string) Location {
	return Location{
		Type:        "Point",
		Coordinates: []float64{lng, lat},
		Address:     address,
	}
}

func (l Location) Longitude() float64 { return l.Coordinates[0] }
func (l Location) Latitude() float64  { return l.Coordinates[1] }

// Методы для работы с проблемами

func (i *Issue) IsResolved() bool {
	return i.Status == StatusResolved || i.Status == StatusClosed
}

func (i *Issue) HasUserUpvoted(userID string) bool {
	return i.Upvotes.Has(userID)
}

func (i *Issue) GetUpvoteCount() int {
	return i.Upvotes.Len()
}

// ToggleUpvote снимает голос пользователя, если он есть, иначе добавляет.
// Возвращает true, если после вызова голос учтён.
func (i *Issue) ToggleUpvote(userID string, at time.Time) bool {
	if i.Upvotes == nil {
		i.Upvotes = UpvoteSet{}
	}
	return i.Upvotes.Toggle(userID, at)
}

// RecordStatus добавляет запись в журнал и переключает текущий статус.
func (i *Issue) RecordStatus(status IssueStatus, notes, updatedBy string, at time.Time) {
	i.StatusHistory = append(i.StatusHistory, StatusEntry{
		Status:    status,
		Notes:     notes,
		UpdatedBy: updatedBy,
		UpdatedAt: at,
	})
	i.Status = status
}

func (i *Issue) LastStatusEntry() *StatusEntry {
	if len(i.StatusHistory) == 0 {
		return nil
	}
	return &i.StatusHistory[len(i.StatusHistory)-1]
}

// Clone возвращает глубокую копию, чтобы хранилище в памяти не делило срезы и карты с вызывающим.
func (i *Issue) Clone() *Issue {
	out := *i
	out.Location.Coordinates = append([]float64(nil), i.Location.Coordinates...)
	if i.Photos != nil {
		out.Photos = append(make([]Photo, 0, len(i.Photos)), i.Photos...)
	}
	out.StatusHistory = append([]StatusEntry(nil), i.StatusHistory...)
	out.Upvotes = i.Upvotes.Clone()
	return &out
}
