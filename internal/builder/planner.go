package builder

import (
	"time"
)

// HourWindow は1時間分のビルド対象窓を表す
type HourWindow struct {
	Hour    int  // 時 (0-23)
	Current bool // 対象日が今日で、かつ進行中の時かどうか

	// 当日ディレクトリに適用する窓 [Start, End)
	Start time.Time
	End   time.Time

	// 時0のみ: 前日ディレクトリに適用する窓 [PrevStart, PrevEnd)
	// （前日の末尾overlap分。Hour != 0 の場合はゼロ値）
	PrevStart time.Time
	PrevEnd   time.Time
}

// HasPrevWindow は前日窓を持つかを返す
func (w HourWindow) HasPrevWindow() bool {
	return !w.PrevEnd.IsZero()
}

// PlanHours は対象日 day（ローカル0時）について処理すべき時間窓の列を
// 昇順で返す
// 対象日が今日の場合は 0..現在の時 まで、それ以外は 0..23 まで
func PlanHours(day, now time.Time, overlap time.Duration) []HourWindow {
	isToday := sameDate(day, now)

	lastHour := 23
	if isToday {
		lastHour = now.Hour()
	}

	windows := make([]HourWindow, 0, lastHour+1)
	for hour := 0; hour <= lastHour; hour++ {
		start := day.Add(time.Duration(hour) * time.Hour)
		end := start.Add(time.Hour + overlap)

		current := isToday && hour == lastHour
		if current {
			// 進行中の時: 未来のフレームを含めないよう現在時刻で打ち切る
			end = now
		}

		w := HourWindow{
			Hour:    hour,
			Current: current,
			Start:   start,
			End:     end,
		}

		if hour == 0 {
			// 前日の末尾overlap分 [前日23:(60-overlap):00, 当日00:00:00)
			w.PrevStart = day.Add(-overlap)
			w.PrevEnd = day
		}

		windows = append(windows, w)
	}

	return windows
}

// sameDate は2つの時刻が同じ暦日（ローカル）かを返す
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
