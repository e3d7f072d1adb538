// Package common — dates.go содержит календарную арифметику для чек-инов.
// Для стриков важна дата, а не время суток, поэтому все сравнения
// выполняются по компонентам год/месяц/день в заданном часовом поясе.
package common

import "time"

// SameDay проверяет, приходятся ли два момента на один календарный день
// в часовом поясе loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return TruncateToDay(a, loc).Equal(TruncateToDay(b, loc))
}

// IsYesterday проверяет, приходится ли момент t на календарный день,
// ровно предшествующий дню now. Переходы через месяц, год и смену
// летнего времени учитываются за счёт AddDate.
func IsYesterday(t, now time.Time, loc *time.Location) bool {
	yesterday := now.In(loc).AddDate(0, 0, -1)
	return SameDay(t, yesterday, loc)
}

// TruncateToDay обрезает момент до начала календарного дня в поясе loc.
func TruncateToDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
