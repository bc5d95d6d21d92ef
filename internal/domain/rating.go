package domain

import "math"

// ComputeDisplayRating объединяет внешнюю оценку и оценки пользователей
// в одну отображаемую. Чистая функция без побочных эффектов; хранилище
// обязано вызывать её при каждом изменении набора отзывов фильма.
//
// Нулевая внешняя оценка трактуется как «оценки нет» — отличить
// «нет оценки» от «оценено в 0» модель не позволяет.
func ComputeDisplayRating(externalRating float64, userRatings []float64) float64 {
	if len(userRatings) == 0 {
		return round1(externalRating)
	}

	var sum float64
	for _, r := range userRatings {
		sum += r
	}
	avgUser := sum / float64(len(userRatings))

	if externalRating == 0 {
		return round1(avgUser)
	}
	return round1((avgUser + externalRating) / 2)
}

// round1 округляет до одного знака после запятой перед сохранением.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
