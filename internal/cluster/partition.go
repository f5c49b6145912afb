package cluster

import "crypto/md5"

// ownershipBuckets — число bucket'ов партиционирования.
//
// 10 bucket'ов дают грубое разбиение: каждый worker попадает ровно
// в один bucket, schedule обслуживают все worker'ы его bucket'а.
// При флоте меньше 10 часть schedules может остаться без владельца —
// это допустимо, владение advisory, корректность обеспечивает lock.
const ownershipBuckets = 10

// Owns сообщает, отвечает ли worker за оценку schedule.
//
// Чистая функция: каждый worker вычисляет ответ независимо, без
// membership-протокола. При входе/выходе worker'а перераспределяются
// только schedules его bucket'а, полного reshuffle нет.
func Owns(scheduleName, hostname string) bool {
	return bucket(scheduleName) == bucket(hostname)
}

// bucket — md5 строки как большое число по модулю ownershipBuckets.
// Считается по байтам схемой Горнера, что эквивалентно взятию всего
// 128-битного дайджеста по модулю. Формат совместим с существующими
// развёртываниями — менять нельзя.
func bucket(s string) int {
	sum := md5.Sum([]byte(s))

	r := 0
	for _, b := range sum {
		r = (r*256 + int(b)) % ownershipBuckets
	}
	return r
}
