package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Frame はアーカイブ内の1枚のJPEGスナップショットを表す
type Frame struct {
	Path    string    // ファイルパス
	ModTime time.Time // ファイルシステム上の更新時刻
}

// jpegExts は認識するJPEG拡張子（小文字で比較する）
var jpegExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
}

// DayFormat は日付ディレクトリ名のフォーマット
const DayFormat = "20060102"

// IsJPEG はファイル名が認識対象のJPEG拡張子を持つかを返す
func IsJPEG(name string) bool {
	return jpegExts[strings.ToLower(filepath.Ext(name))]
}

// SelectFrames は dir 内のJPEGで mtime が [start, end) に入るものを
// mtime昇順で返す
// 返り値の順序はそのまま動画の再生順として使われる
// 存在しないディレクトリは空のリストを返す（エラーにしない）
func SelectFrames(dir string, start, end time.Time) []Frame {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// ディレクトリがない・読めない場合は空扱い
		return nil
	}

	var frames []Frame
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !IsJPEG(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// 個別ファイルのstat失敗は読み飛ばす
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		mt := info.ModTime()
		if mt.Before(start) || !mt.Before(end) {
			continue
		}

		frames = append(frames, Frame{
			Path:    filepath.Join(dir, entry.Name()),
			ModTime: mt,
		})
	}

	// mtime昇順でソート（同時刻の順序は列挙順のまま）
	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].ModTime.Before(frames[j].ModTime)
	})

	return frames
}

// NewestModTime はフレームリストの最新mtimeを返す
// 空のリストの場合は false を返す
func NewestModTime(frames []Frame) (time.Time, bool) {
	if len(frames) == 0 {
		return time.Time{}, false
	}
	// SelectFrames の結果はmtime昇順
	return frames[len(frames)-1].ModTime, true
}

// ListDays はアーカイブルート直下の8桁日付ディレクトリ名をソート順で返す
func ListDays(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var days []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if isDayName(name) {
			days = append(days, name)
		}
	}

	sort.Strings(days)
	return days
}

// LatestDay はアーカイブルート直下の最新日付ディレクトリ名を返す
func LatestDay(root string) (string, error) {
	days := ListDays(root)
	if len(days) == 0 {
		return "", fmt.Errorf("日付ディレクトリが見つかりません: %s", root)
	}
	return days[len(days)-1], nil
}

// ParseDay は YYYYMMDD 形式の日付文字列をローカル時刻の0時として解釈する
func ParseDay(day string) (time.Time, error) {
	t, err := time.ParseInLocation(DayFormat, day, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("無効な日付 %q: %w", day, err)
	}
	return t, nil
}

// CameraDir は指定日・カメラのディレクトリパスを返す
func CameraDir(root, day, camera string) string {
	return filepath.Join(root, day, camera)
}

// OutputPath は指定日・カメラ・時のMP4出力パスを返す
// 例: <root>/20260115/driveway/driveway-1400.mp4
func OutputPath(root, day, camera string, hour int) string {
	name := fmt.Sprintf("%s-%02d00.mp4", camera, hour)
	return filepath.Join(CameraDir(root, day, camera), name)
}

// isDayName は名前が8桁の数字（YYYYMMDD）かを返す
func isDayName(name string) bool {
	if len(name) != 8 {
		return false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
