package models

import (
	"encoding/json"
	"sort"
	"time"
)

// UpvoteSet хранит голоса по идентификатору пользователя: один голос на пользователя.
// В MongoDB сохраняется как вложенный документ {userId: createdAt}.
type UpvoteSet map[string]time.Time

// Upvote - внешнее представление одного голоса.
type Upvote struct {
	User      string    `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s UpvoteSet) Has(userID string) bool {
	_, ok := s[userID]
	return ok
}

func (s UpvoteSet) Len() int {
	return len(s)
}

// Toggle требует инициализированной карты.
func (s UpvoteSet) Toggle(userID string, at time.Time) bool {
	if _, ok := s[userID]; ok {
		delete(s, userID)
		return false
	}
	s[userID] = at
	return true
}

func (s UpvoteSet) Clone() UpvoteSet {
	if s == nil {
		return nil
	}
	out := make(UpvoteSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// List возвращает голоса по времени, при равенстве - по пользователю.
func (s UpvoteSet) List() []Upvote {
	out := make([]Upvote, 0, len(s))
	for user, at := range s {
		out = append(out, Upvote{User: user, CreatedAt: at})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].User < out[b].User
		}
		return out[a].CreatedAt.Before(out[b].CreatedAt)
	})
	return out
}

func (s UpvoteSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *UpvoteSet) UnmarshalJSON(data []byte) error {
	var list []Upvote
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	out := make(UpvoteSet, len(list))
	for _, v := range list {
		out[v.User] = v.CreatedAt
	}
	*s = out
	return nil
}
