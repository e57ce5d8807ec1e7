// Package priority вычисляет рейтинг проблемы: голоса минус возраст в часах, делённый на 10.
// Рейтинг падает на 1 каждые 10 часов и растёт на 1 за каждый голос.
package priority

import "time"

const (
	msPerHour   = 3_600_000
	decayFactor = 10.0
)

// Compute - чистая функция, вызывается сервисом непосредственно перед записью.
func Compute(upvotes int, createdAt, now time.Time) float64 {
	return float64(upvotes) - AgeInHours(createdAt, now)/decayFactor
}

// AgeInHours считает возраст с точностью до миллисекунды.
func AgeInHours(createdAt, now time.Time) float64 {
	return float64(now.Sub(createdAt).Milliseconds()) / msPerHour
}
