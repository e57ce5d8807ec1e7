// Package query описывает типизированный фильтр для списка проблем:
// условия {поле, оператор, значение}, сортировку, выбор полей и пагинацию.
// Хранилища переводят его в свой родной вид, строки запросов не склеиваются.
package query

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"fix-my-city/internal/errs"
)

type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

// Kind определяет, как строковое значение из запроса приводится к типу поля.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindTime
	KindID
)

// Field - поле, доступное для фильтрации и сортировки. Path - имя в хранилище.
type Field struct {
	Name string
	Path string
	Kind Kind
}

var issueFields = map[string]Field{
	"id":               {Name: "id", Path: "_id", Kind: KindID},
	"_id":              {Name: "id", Path: "_id", Kind: KindID},
	"title":            {Name: "title", Path: "title", Kind: KindString},
	"description":      {Name: "description", Path: "description", Kind: KindString},
	"category":         {Name: "category", Path: "category", Kind: KindString},
	"status":           {Name: "status", Path: "status", Kind: KindString},
	"priority":         {Name: "priority", Path: "priority", Kind: KindNumber},
	"upvoteCount":      {Name: "upvoteCount", Path: "upvoteCount", Kind: KindNumber},
	"createdBy":        {Name: "createdBy", Path: "createdBy", Kind: KindString},
	"assignedTo":       {Name: "assignedTo", Path: "assignedTo", Kind: KindString},
	"createdAt":        {Name: "createdAt", Path: "createdAt", Kind: KindTime},
	"updatedAt":        {Name: "updatedAt", Path: "updatedAt", Kind: KindTime},
	"location.address": {Name: "location.address", Path: "location.address", Kind: KindString},
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)*$`)

// LookupField возвращает описание известного поля. Неизвестные, но синтаксически
// корректные имена сравниваются как строки по тому же пути.
func LookupField(name string) (Field, error) {
	if f, ok := issueFields[name]; ok {
		return f, nil
	}
	if !fieldNamePattern.MatchString(name) {
		return Field{}, fmt.Errorf("%w: invalid field name %q", errs.ErrValidation, name)
	}
	return Field{Name: name, Path: name, Kind: KindString}, nil
}

// Condition - один узел фильтра. Для OpIn Value имеет тип []any.
type Condition struct {
	Field Field
	Op    Operator
	Value any
}

// Filter - конъюнкция условий.
type Filter []Condition

func Eq(field string, value any) Condition {
	return newCondition(field, OpEq, value)
}

func Gt(field string, value any) Condition  { return newCondition(field, OpGt, value) }
func Gte(field string, value any) Condition { return newCondition(field, OpGte, value) }
func Lt(field string, value any) Condition  { return newCondition(field, OpLt, value) }
func Lte(field string, value any) Condition { return newCondition(field, OpLte, value) }

func In(field string, values ...any) Condition {
	return newCondition(field, OpIn, values)
}

// newCondition используется в коде и тестах, где имя поля заведомо корректно.
func newCondition(field string, op Operator, value any) Condition {
	f, err := LookupField(field)
	if err != nil {
		panic(err)
	}
	return Condition{Field: f, Op: op, Value: value}
}

func parseOperator(token string) (Operator, error) {
	switch op := Operator(token); op {
	case OpEq, OpGt, OpGte, OpLt, OpLte, OpIn:
		return op, nil
	}
	return "", fmt.Errorf("%w: unknown operator %q", errs.ErrValidation, token)
}

// convert приводит строковое значение к типу поля.
func convert(f Field, raw string) (any, error) {
	switch f.Kind {
	case KindNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s must be a number", errs.ErrValidation, f.Name)
		}
		return v, nil
	case KindTime:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts, nil
			}
		}
		return nil, fmt.Errorf("%w: %s must be an RFC3339 timestamp or YYYY-MM-DD date", errs.ErrValidation, f.Name)
	default:
		return raw, nil
	}
}
