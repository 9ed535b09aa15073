// Package daterange содержит вспомогательные функции для работы с границами
// суток при запросах доступности экзаменов.
package daterange

import "time"

// StartOfDay возвращает начало суток для переданного момента в UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay возвращает последнюю миллисекунду суток для переданного момента в UTC.
func EndOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
}
