package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"fix-my-city/internal/errs"
)

const (
	DefaultPage   = 1
	DefaultLimit  = 10
	MaxLimit      = 100
	DefaultRadius = 1000.0 // метры
)

// Ключи, которые управляют выдачей и не попадают в фильтр.
var reservedKeys = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
	"near":   true,
	"radius": true,
}

type SortField struct {
	Field Field
	Desc  bool
}

// Near ограничивает выборку кругом радиусом RadiusMeters вокруг точки.
type Near struct {
	Lng          float64
	Lat          float64
	RadiusMeters float64
}

type Request struct {
	Filter Filter
	Sort   []SortField
	Select []string
	Near   *Near
	Page   int
	Limit  int
}

// DefaultSort - сначала высокий рейтинг, при равенстве новые.
func DefaultSort() []SortField {
	return []SortField{
		{Field: issueFields["priority"], Desc: true},
		{Field: issueFields["createdAt"], Desc: true},
	}
}

func NewRequest() Request {
	return Request{Sort: DefaultSort(), Page: DefaultPage, Limit: DefaultLimit}
}

func (r Request) Skip() int64 {
	return int64(r.Page-1) * int64(r.Limit)
}

// Parse переводит параметры строки запроса в типизированный Request.
// Формы ключей: field=value (равенство) и field[op]=value.
// Повторённое равенство одного поля трактуется как in.
func Parse(values url.Values) (Request, error) {
	req := NewRequest()

	var err error
	if req.Page, err = positiveInt(values, "page", DefaultPage); err != nil {
		return Request{}, err
	}
	if req.Limit, err = positiveInt(values, "limit", DefaultLimit); err != nil {
		return Request{}, err
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}

	if raw := values.Get("sort"); raw != "" {
		if req.Sort, err = parseSort(raw); err != nil {
			return Request{}, err
		}
	}
	if raw := values.Get("select"); raw != "" {
		if req.Select, err = parseSelect(raw); err != nil {
			return Request{}, err
		}
	}
	if raw := values.Get("near"); raw != "" {
		if req.Near, err = parseNear(raw, values.Get("radius")); err != nil {
			return Request{}, err
		}
	}

	// детерминированный порядок условий упрощает тесты и логи
	keys := make([]string, 0, len(values))
	for key := range values {
		if !reservedKeys[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		cond, err := parseCondition(key, values[key])
		if err != nil {
			return Request{}, err
		}
		req.Filter = append(req.Filter, cond)
	}

	return req, nil
}

func parseCondition(key string, raw []string) (Condition, error) {
	name, op := key, OpEq
	if open := strings.IndexByte(key, '['); open >= 0 {
		if !strings.HasSuffix(key, "]") || open == 0 {
			return Condition{}, fmt.Errorf("%w: malformed filter key %q", errs.ErrValidation, key)
		}
		parsed, err := parseOperator(key[open+1 : len(key)-1])
		if err != nil {
			return Condition{}, err
		}
		name, op = key[:open], parsed
	}

	field, err := LookupField(name)
	if err != nil {
		return Condition{}, err
	}
	if len(raw) == 0 {
		return Condition{}, fmt.Errorf("%w: empty value for %q", errs.ErrValidation, key)
	}

	if op == OpEq && len(raw) > 1 {
		op = OpIn
	}

	if op == OpIn {
		var parts []string
		for _, r := range raw {
			parts = append(parts, strings.Split(r, ",")...)
		}
		list := make([]any, 0, len(parts))
		for _, p := range parts {
			v, err := convert(field, strings.TrimSpace(p))
			if err != nil {
				return Condition{}, err
			}
			list = append(list, v)
		}
		return Condition{Field: field, Op: OpIn, Value: list}, nil
	}

	v, err := convert(field, raw[0])
	if err != nil {
		return Condition{}, err
	}
	return Condition{Field: field, Op: op, Value: v}, nil
}

// parseSort принимает список через запятую, "-" перед именем - по убыванию.
func parseSort(raw string) ([]SortField, error) {
	var out []SortField
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		desc := strings.HasPrefix(token, "-")
		token = strings.TrimPrefix(strings.TrimPrefix(token, "-"), "+")
		field, err := LookupField(token)
		if err != nil {
			return nil, err
		}
		out = append(out, SortField{Field: field, Desc: desc})
	}
	if len(out) == 0 {
		return DefaultSort(), nil
	}
	return out, nil
}

func parseSelect(raw string) ([]string, error) {
	var out []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !fieldNamePattern.MatchString(name) {
			return nil, fmt.Errorf("%w: invalid select field %q", errs.ErrValidation, name)
		}
		out = append(out, name)
	}
	return out, nil
}

func parseNear(raw, radius string) (*Near, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: near must be \"lng,lat\"", errs.ErrValidation)
	}
	lng, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lat, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("%w: near coordinates out of range", errs.ErrValidation)
	}

	near := &Near{Lng: lng, Lat: lat, RadiusMeters: DefaultRadius}
	if radius != "" {
		r, err := strconv.ParseFloat(radius, 64)
		if err != nil || r <= 0 {
			return nil, fmt.Errorf("%w: radius must be a positive number of meters", errs.ErrValidation)
		}
		near.RadiusMeters = r
	}
	return near, nil
}

func positiveInt(values url.Values, key string, def int) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errs.ErrValidation, key)
	}
	return n, nil
}
