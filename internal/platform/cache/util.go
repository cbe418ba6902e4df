package cache

import "time"

// TTLUntilNextHour は次の正時までの期間を返します。max を超える場合は max を返します。
// 更新一覧の問い合わせは時間単位で切り捨てられるため、正時を越えたキャッシュは再利用されません。
func TTLUntilNextHour(now time.Time, max time.Duration) time.Duration {
	next := now.Truncate(time.Hour).Add(time.Hour)
	d := next.Sub(now)
	if max > 0 && d > max {
		return max
	}
	return d
}
