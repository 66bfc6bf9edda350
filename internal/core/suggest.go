package core

import "sort"

// Порог близости для подсказок "did you mean": кандидаты на
// расстоянии больше двух правок не предлагаются. Два, а не три,
// потому что при коротких именах команд (ls, rm, md) третья правка
// уже превращает одну команду в совершенно другую.
const suggestDistance = 2

// Максимум подсказок в одном сообщении об ошибке.
const suggestLimit = 3

// Suggest возвращает имена команд, близкие к неизвестному токену,
// от наиболее похожих к менее похожим.
func (r *Registry) Suggest(token string) []string {
	type scored struct {
		name     string
		distance int
	}
	var found []scored
	for name := range r.commands {
		if d := levenshtein(token, name); d <= suggestDistance {
			found = append(found, scored{name: name, distance: d})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].distance != found[j].distance {
			return found[i].distance < found[j].distance
		}
		return found[i].name < found[j].name
	})
	if len(found) > suggestLimit {
		found = found[:suggestLimit]
	}
	names := make([]string, len(found))
	for i, s := range found {
		names[i] = s.name
	}
	return names
}

// levenshtein считает редакционное расстояние между строками,
// храня одну строку матрицы.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	previous := make([]int, len(a)+1)
	for i := range previous {
		previous[i] = i
	}
	for j := 1; j <= len(b); j++ {
		current := make([]int, len(a)+1)
		current[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			deletion := previous[i] + 1
			insertion := current[i-1] + 1
			substitution := previous[i-1] + cost
			current[i] = min(deletion, min(insertion, substitution))
		}
		previous = current
	}
	return previous[len(a)]
}
