package services

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fix-my-city/internal/errs"
	"fix-my-city/internal/models"
	"fix-my-city/internal/utils"
)

// LocationInput - точка из запроса. Адрес можно передать и на верхнем уровне тела.
type LocationInput struct {
	Coordinates []float64 `json:"coordinates" validate:"required,len=2"`
	Address     string    `json:"address" validate:"max=300"`
}

type CreateIssueInput struct {
	Title       string               `json:"title" validate:"required,max=100"`
	Description string               `json:"description" validate:"required,max=1000"`
	Category    models.IssueCategory `json:"category" validate:"required,issue_category"`
	Location    LocationInput        `json:"location"`
	Address     string               `json:"address" validate:"max=300"`
	Photos      []models.Photo       `json:"photos" validate:"dive"`
}

func (in *CreateIssueInput) normalize() {
	in.Title = cleanText(in.Title)
	in.Description = cleanText(in.Description)
	in.Address = cleanText(in.Address)
	in.Location.Address = cleanText(in.Location.Address)
	if in.Location.Address == "" {
		in.Location.Address = in.Address
	}
}

// UpdateIssueInput - частичное обновление: nil означает "не менять".
// priority, upvotes, createdBy и createdAt сюда не входят и клиентом не задаются.
type UpdateIssueInput struct {
	Title       *string               `json:"title" validate:"omitempty,max=100"`
	Description *string               `json:"description" validate:"omitempty,max=1000"`
	Category    *models.IssueCategory `json:"category" validate:"omitempty,issue_category"`
	Location    *LocationInput        `json:"location"`
	Photos      []models.Photo        `json:"photos" validate:"dive"`
	Status      *models.IssueStatus   `json:"status" validate:"omitempty,issue_status"`
	StatusNotes string                `json:"statusNotes" validate:"max=500"`
	AssignedTo  *string               `json:"assignedTo"`
}

func (in *UpdateIssueInput) normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = cleanText(*s)
		}
	}
	trim(in.Title)
	trim(in.Description)
	trim(in.AssignedTo)
	if in.Location != nil {
		in.Location.Address = cleanText(in.Location.Address)
	}
	in.StatusNotes = cleanText(in.StatusNotes)
}

type AddCommentInput struct {
	Text string `json:"text" validate:"required,max=500"`
}

var principalIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// requirePrincipal: идентификатор становится ключом вложенного документа upvotes,
// поэтому точки и "$" в нём недопустимы.
func requirePrincipal(p *models.Principal) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: no principal", errs.ErrUnauthenticated)
	}
	if !principalIDPattern.MatchString(p.ID) {
		return fmt.Errorf("%w: malformed principal id", errs.ErrUnauthenticated)
	}
	if !p.Role.IsValid() {
		return fmt.Errorf("%w: unknown role %q", errs.ErrUnauthenticated, p.Role)
	}
	return nil
}

// parseID: некорректный идентификатор неотличим от отсутствующей проблемы.
func parseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: issue %q", errs.ErrNotFound, hex)
	}
	return id, nil
}

func checkCoordinates(coords []float64) error {
	if !utils.ValidCoordinates(coords) {
		return fmt.Errorf("%w: location.coordinates must be [lng, lat] within [-180,180] and [-90,90]", errs.ErrValidation)
	}
	return nil
}
