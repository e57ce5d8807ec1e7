package query

import (
	"encoding/json"
	"strings"
)

type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination содержит ссылки только в ту сторону, где ещё есть результаты.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// Paginate считает ссылки по общему числу отфильтрованных записей.
func Paginate(page, limit int, total int64) Pagination {
	var p Pagination
	startIndex := int64(page-1) * int64(limit)
	endIndex := int64(page) * int64(limit)

	if endIndex < total {
		p.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	if startIndex > 0 {
		p.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	return p
}

// Project оставляет в JSON-представлении item только выбранные поля верхнего
// уровня и id. Для "location.address" сохраняется весь "location".
func Project(item any, fields []string) (map[string]any, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	var full map[string]any
	if err := json.Unmarshal(data, &full); err != nil {
		return nil, err
	}

	out := map[string]any{}
	if id, ok := full["id"]; ok {
		out["id"] = id
	}
	for _, name := range fields {
		top, _, _ := strings.Cut(name, ".")
		if v, ok := full[top]; ok {
			out[top] = v
		}
	}
	return out, nil
}
