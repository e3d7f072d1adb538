// Package common — pluralize.go содержит склонение русских числительных
// для текстов деталей журнала наград.
package common

// pluralize выбирает форму слова для числительного n:
// «1 слот», «2 слота», «5 слотов», «11 слотов».
func pluralize(n int64, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	if n%100 >= 11 && n%100 <= 14 {
		return many
	}
	switch n % 10 {
	case 1:
		return one
	case 2, 3, 4:
		return few
	default:
		return many
	}
}

// PluralizeSlots склоняет «бонусный слот» под числительное n.
//
// Примеры:
//
//	PluralizeSlots(1) → "бонусный слот"
//	PluralizeSlots(3) → "бонусных слота"
//	PluralizeSlots(5) → "бонусных слотов"
func PluralizeSlots(n int64) string {
	return pluralize(n, "бонусный слот", "бонусных слота", "бонусных слотов")
}

// PluralizeCoins склоняет «монета» под числительное n.
func PluralizeCoins(n int64) string {
	return pluralize(n, "монета", "монеты", "монет")
}
