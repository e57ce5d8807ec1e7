// Package memory - хранилище в памяти процесса. Используется в тестах и при STORAGE=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fix-my-city/internal/errs"
	"fix-my-city/internal/models"
	"fix-my-city/internal/query"
	"fix-my-city/internal/repository"
	"fix-my-city/internal/utils"
)

var (
	_ repository.IssueRepository   = (*IssueRepo)(nil)
	_ repository.CommentRepository = (*CommentRepo)(nil)
)

type IssueRepo struct {
	mutex  sync.RWMutex
	issues map[primitive.ObjectID]*models.Issue
}

func NewIssueRepo() *IssueRepo {
	return &IssueRepo{issues: make(map[primitive.ObjectID]*models.Issue)}
}

func (r *IssueRepo) Insert(_ context.Context, issue *models.Issue) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	r.issues[issue.ID] = issue.Clone()
	return nil
}

func (r *IssueRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	issue, ok := r.issues[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return issue.Clone(), nil
}

func (r *IssueRepo) Find(_ context.Context, req query.Request) ([]models.Issue, error) {
	r.mutex.RLock()
	matched := r.match(req)
	r.mutex.RUnlock()

	sortIssues(matched, req.Sort)

	skip := int(req.Skip())
	if skip >= len(matched) {
		return []models.Issue{}, nil
	}
	end := len(matched)
	if req.Limit > 0 && skip+req.Limit < end {
		end = skip + req.Limit
	}

	out := make([]models.Issue, 0, end-skip)
	for _, issue := range matched[skip:end] {
		out = append(out, *issue)
	}
	return out, nil
}

func (r *IssueRepo) Count(_ context.Context, req query.Request) (int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return int64(len(r.match(req))), nil
}

func (r *IssueRepo) Replace(_ context.Context, issue *models.Issue, expectedVersion int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	current, ok := r.issues[issue.ID]
	if !ok {
		return errs.ErrNotFound
	}
	if current.Version != expectedVersion {
		return errs.ErrVersionConflict
	}
	r.issues[issue.ID] = issue.Clone()
	return nil
}

func (r *IssueRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.issues[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.issues, id)
	return nil
}

func (r *IssueRepo) IDs(_ context.Context) ([]primitive.ObjectID, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ids := make([]primitive.ObjectID, 0, len(r.issues))
	for id := range r.issues {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a].Hex() < ids[b].Hex() })
	return ids, nil
}

func (r *IssueRepo) Ping(context.Context) error { return nil }

// match вызывается под блокировкой и возвращает копии.
func (r *IssueRepo) match(req query.Request) []*models.Issue {
	var out []*models.Issue
	for _, issue := range r.issues {
		if req.Near != nil {
			center := models.NewPoint(req.Near.Lng, req.Near.Lat, "")
			if !utils.ValidCoordinates(issue.Location.Coordinates) ||
				!utils.WithinRadius(center, issue.Location, req.Near.RadiusMeters) {
				continue
			}
		}
		if Matches(issue, req.Filter) {
			out = append(out, issue.Clone())
		}
	}
	return out
}

// Matches проверяет все условия фильтра. Отсутствующее поле не удовлетворяет ни одному условию.
// Для полей внутри массивов (photos.url) достаточно одного подходящего элемента, как в MongoDB.
func Matches(issue *models.Issue, filter query.Filter) bool {
	for _, cond := range filter {
		actual, ok := fieldValue(issue, cond.Field.Path)
		if !ok {
			return false
		}

		candidates, isArray := actual.([]any)
		if !isArray {
			candidates = []any{actual}
		}

		found := false
		for _, v := range candidates {
			if holds(cond, v) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func holds(cond query.Condition, actual any) bool {
	if cond.Op == query.OpIn {
		values, _ := cond.Value.([]any)
		for _, v := range values {
			if c, ok := compare(actual, v); ok && c == 0 {
				return true
			}
		}
		return false
	}
	c, ok := compare(actual, cond.Value)
	return ok && satisfies(cond.Op, c)
}

func satisfies(op query.Operator, c int) bool {
	switch op {
	case query.OpEq:
		return c == 0
	case query.OpGt:
		return c > 0
	case query.OpGte:
		return c >= 0
	case query.OpLt:
		return c < 0
	case query.OpLte:
		return c <= 0
	}
	return false
}

func fieldValue(issue *models.Issue, path string) (any, bool) {
	switch path {
	case "_id":
		return issue.ID.Hex(), true
	case "title":
		return issue.Title, true
	case "description":
		return issue.Description, true
	case "category":
		return string(issue.Category), true
	case "status":
		return string(issue.Status), true
	case "priority":
		return issue.Priority, true
	case "upvoteCount":
		return float64(issue.UpvoteCount), true
	case "createdBy":
		return issue.CreatedBy, true
	case "assignedTo":
		return issue.AssignedTo, issue.AssignedTo != ""
	case "createdAt":
		return issue.CreatedAt, true
	case "updatedAt":
		return issue.UpdatedAt, true
	case "location.address":
		return issue.Location.Address, true
	case "location.type":
		return issue.Location.Type, issue.Location.Type != ""
	case "photos.url":
		return photoValues(issue.Photos, func(p models.Photo) string { return p.URL })
	case "photos.caption":
		return photoValues(issue.Photos, func(p models.Photo) string { return p.Caption })
	}
	return nil, false
}

// photoValues собирает непустые значения поля фотографий.
func photoValues(photos []models.Photo, get func(models.Photo) string) (any, bool) {
	var out []any
	for _, p := range photos {
		if v := get(p); v != "" {
			out = append(out, v)
		}
	}
	return out, len(out) > 0
}

// compare сравнивает значения одного типа; числа приводятся к float64.
func compare(a, b any) (int, bool) {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

func sortIssues(issues []*models.Issue, fields []query.SortField) {
	sort.SliceStable(issues, func(a, b int) bool {
		for _, f := range fields {
			av, aok := fieldValue(issues[a], f.Field.Path)
			bv, bok := fieldValue(issues[b], f.Field.Path)

			var c int
			switch {
			case !aok && !bok:
				c = 0
			case !aok:
				c = -1 // отсутствующие значения меньше любых, как в MongoDB
			case !bok:
				c = 1
			default:
				c, _ = compare(av, bv)
			}

			if c == 0 {
				continue
			}
			if f.Desc {
				return c > 0
			}
			return c < 0
		}
		// последний ключ - _id по убыванию, чтобы страницы не перекрывались
		return issues[a].ID.Hex() > issues[b].ID.Hex()
	})
}
