package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeFrame はテスト用のフレームファイルを指定mtimeで作成する
func writeFrame(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("jpeg-data"), 0644); err != nil {
		t.Fatalf("テストファイルの作成に失敗しました: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("mtimeの設定に失敗しました: %v", err)
	}
	return path
}

// TestSelectFramesWindow は時間窓によるフレーム選択をテストする
func TestSelectFramesWindow(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 1, 15, 14, 0, 0, 0, time.Local)

	// 窓は [14:00:00, 15:05:00)
	start := base
	end := base.Add(time.Hour + 5*time.Minute)

	inStart := writeFrame(t, dir, "a.jpg", start)                        // 開始境界（含む）
	inLate := writeFrame(t, dir, "b.jpg", base.Add(59*time.Minute+59*time.Second)) // 59:59
	inOverlap := writeFrame(t, dir, "c.jpg", base.Add(time.Hour+4*time.Minute+59*time.Second)) // 15:04:59
	writeFrame(t, dir, "d.jpg", end) // 終了境界（含まない）
	writeFrame(t, dir, "e.jpg", base.Add(time.Hour+5*time.Minute+time.Second)) // 15:05:01

	frames := SelectFrames(dir, start, end)
	if len(frames) != 3 {
		t.Fatalf("選択されたフレーム数が一致しません: got %d, want 3", len(frames))
	}

	want := []string{inStart, inLate, inOverlap}
	for i, f := range frames {
		if f.Path != want[i] {
			t.Errorf("フレーム順序が一致しません: got %s, want %s", f.Path, want[i])
		}
	}
}

// TestSelectFramesOrder はmtime昇順のソートをテストする
func TestSelectFramesOrder(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 1, 15, 8, 0, 0, 0, time.Local)

	// 作成順とmtime順を意図的にずらす
	writeFrame(t, dir, "late.jpg", base.Add(30*time.Minute))
	writeFrame(t, dir, "early.jpg", base.Add(5*time.Minute))
	writeFrame(t, dir, "middle.jpg", base.Add(15*time.Minute))

	frames := SelectFrames(dir, base, base.Add(time.Hour))
	if len(frames) != 3 {
		t.Fatalf("選択されたフレーム数が一致しません: got %d, want 3", len(frames))
	}

	for i := 1; i < len(frames); i++ {
		if frames[i].ModTime.Before(frames[i-1].ModTime) {
			t.Errorf("フレームがmtime昇順になっていません: %v の後に %v",
				frames[i-1].ModTime, frames[i].ModTime)
		}
	}
}

// TestSelectFramesIgnoresNonJPEG はJPEG以外のファイルを無視することをテストする
func TestSelectFramesIgnoresNonJPEG(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 1, 15, 8, 0, 0, 0, time.Local)

	writeFrame(t, dir, "frame.jpg", base.Add(time.Minute))
	writeFrame(t, dir, "frame2.JPEG", base.Add(2*time.Minute)) // 大文字拡張子も対象
	writeFrame(t, dir, "movie.mp4", base.Add(3*time.Minute))
	writeFrame(t, dir, "notes.txt", base.Add(4*time.Minute))

	// サブディレクトリは無視される
	if err := os.Mkdir(filepath.Join(dir, "sub.jpg"), 0755); err != nil {
		t.Fatalf("サブディレクトリの作成に失敗しました: %v", err)
	}

	frames := SelectFrames(dir, base, base.Add(time.Hour))
	if len(frames) != 2 {
		t.Fatalf("選択されたフレーム数が一致しません: got %d, want 2", len(frames))
	}
}

// TestSelectFramesMissingDir は存在しないディレクトリの扱いをテストする
func TestSelectFramesMissingDir(t *testing.T) {
	frames := SelectFrames(filepath.Join(t.TempDir(), "no-such-dir"),
		time.Now().Add(-time.Hour), time.Now())
	if len(frames) != 0 {
		t.Errorf("存在しないディレクトリで空以外が返りました: %d フレーム", len(frames))
	}
}

// TestNewestModTime は最新mtimeの取得をテストする
func TestNewestModTime(t *testing.T) {
	if _, ok := NewestModTime(nil); ok {
		t.Error("空のリストでokが返りました")
	}

	base := time.Date(2026, 1, 15, 8, 0, 0, 0, time.Local)
	frames := []Frame{
		{Path: "a.jpg", ModTime: base},
		{Path: "b.jpg", ModTime: base.Add(time.Minute)},
	}
	newest, ok := NewestModTime(frames)
	if !ok {
		t.Fatal("最新mtimeが取得できませんでした")
	}
	if !newest.Equal(base.Add(time.Minute)) {
		t.Errorf("最新mtimeが一致しません: got %v", newest)
	}
}

// TestListDaysAndLatestDay は日付ディレクトリの列挙をテストする
func TestListDaysAndLatestDay(t *testing.T) {
	root := t.TempDir()

	for _, name := range []string{"20260114", "20260115", "20260113", "notaday", "2026011"} {
		if err := os.Mkdir(filepath.Join(root, name), 0755); err != nil {
			t.Fatalf("ディレクトリの作成に失敗しました: %v", err)
		}
	}
	// ファイルは日付ディレクトリとして扱わない
	if err := os.WriteFile(filepath.Join(root, "20260116"), []byte("x"), 0644); err != nil {
		t.Fatalf("ファイルの作成に失敗しました: %v", err)
	}

	days := ListDays(root)
	want := []string{"20260113", "20260114", "20260115"}
	if len(days) != len(want) {
		t.Fatalf("日付ディレクトリ数が一致しません: got %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("日付ディレクトリが一致しません: got %s, want %s", days[i], want[i])
		}
	}

	latest, err := LatestDay(root)
	if err != nil {
		t.Fatalf("最新日の取得に失敗しました: %v", err)
	}
	if latest != "20260115" {
		t.Errorf("最新日が一致しません: got %s, want 20260115", latest)
	}
}

// TestLatestDayEmpty は日付ディレクトリがない場合のエラーをテストする
func TestLatestDayEmpty(t *testing.T) {
	if _, err := LatestDay(t.TempDir()); err == nil {
		t.Error("日付ディレクトリなしでエラーが返りませんでした")
	}
}

// TestParseDay は日付文字列の解釈をテストする
func TestParseDay(t *testing.T) {
	d, err := ParseDay("20260115")
	if err != nil {
		t.Fatalf("日付の解釈に失敗しました: %v", err)
	}
	want := time.Date(2026, 1, 15, 0, 0, 0, 0, time.Local)
	if !d.Equal(want) {
		t.Errorf("日付が一致しません: got %v, want %v", d, want)
	}

	if _, err := ParseDay("2026-01-15"); err == nil {
		t.Error("無効な日付形式でエラーが返りませんでした")
	}
}

// TestOutputPath は出力パスの生成をテストする
func TestOutputPath(t *testing.T) {
	got := OutputPath("/archive", "20260115", "driveway", 14)
	want := filepath.Join("/archive", "20260115", "driveway", "driveway-1400.mp4")
	if got != want {
		t.Errorf("出力パスが一致しません: got %s, want %s", got, want)
	}

	// 1桁の時は0詰めされる
	got = OutputPath("/archive", "20260115", "driveway", 0)
	want = filepath.Join("/archive", "20260115", "driveway", "driveway-0000.mp4")
	if got != want {
		t.Errorf("出力パスが一致しません: got %s, want %s", got, want)
	}
}
