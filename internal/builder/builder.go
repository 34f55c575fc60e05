package builder

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"teiten/internal/archive"
	"teiten/internal/config"
	"teiten/internal/encoder"
)

// Builder はカメラ・日・時間窓ごとのMP4ビルドを実行する
type Builder struct {
	archiveCfg config.ArchiveConfig
	enc        encoder.Encoder
	verbose    bool

	// Now は現在時刻を返す関数
	// 窓計算とリビルド判定をテスト可能にするため注入できる
	Now func() time.Time
}

// Summary は1回のビルド実行の結果集計
type Summary struct {
	Built  int // ビルドした成果物数
	Failed int // エンコードに失敗した時間窓数
}

// NewBuilder は新しいBuilderを作成する
func NewBuilder(cfg config.ArchiveConfig, enc encoder.Encoder, verbose bool) *Builder {
	return &Builder{
		archiveCfg: cfg,
		enc:        enc,
		verbose:    verbose,
		Now:        time.Now,
	}
}

// BuildDay は指定日について、指定されたカメラディレクトリ群のMP4を
// 順次ビルドする
// カメラは1台ずつ、時は昇順で処理する。時間窓単位の失敗は隔離され、
// 集計に記録された上で処理は続行する
func (b *Builder) BuildDay(ctx context.Context, day string, cameras []string) (Summary, error) {
	dayDate, err := archive.ParseDay(day)
	if err != nil {
		return Summary{}, err
	}

	var total Summary
	for _, camera := range cameras {
		log.Printf("=== カメラ: %s  日付: %s ===", camera, day)
		s := b.buildCameraDay(ctx, dayDate, day, camera)
		total.Built += s.Built
		total.Failed += s.Failed
	}

	return total, nil
}

// buildCameraDay は1カメラ・1日分のビルドを実行する
func (b *Builder) buildCameraDay(ctx context.Context, dayDate time.Time, day, camera string) Summary {
	dayDir := archive.CameraDir(b.archiveCfg.Root, day, camera)
	if _, err := os.Stat(dayDir); err != nil {
		// カメラディレクトリがない日はそのカメラをスキップ
		log.Printf("カメラディレクトリがありません: %s", dayDir)
		return Summary{}
	}

	now := b.Now()
	windows := PlanHours(dayDate, now, b.archiveCfg.Overlap)

	// 時0の前日窓用ディレクトリ
	prevDay := dayDate.AddDate(0, 0, -1).Format(archive.DayFormat)
	prevDir := archive.CameraDir(b.archiveCfg.Root, prevDay, camera)

	var s Summary
	for _, w := range windows {
		frames := b.selectWindowFrames(w, dayDir, prevDir)
		outPath := archive.OutputPath(b.archiveCfg.Root, day, camera, w.Hour)

		switch b.decide(w, frames, outPath) {
		case decisionSkipNoFrames:
			if b.verbose {
				log.Printf("SKIP: %02d00 窓内にフレームがありません [%v .. %v)", w.Hour, w.Start, w.End)
			}
			continue
		case decisionSkipTooFew:
			log.Printf("SKIP: %02d00 フレーム数不足 %d (最小 %d)", w.Hour, len(frames), b.archiveCfg.MinFrames)
			continue
		case decisionSkipUpToDate:
			if b.verbose {
				log.Printf("SKIP: %02d00 成果物は最新です", w.Hour)
			}
			continue
		}

		if w.Current && b.verbose {
			log.Printf("BUILD: %02d00 進行中の時のためリビルド (窓末尾=%v)", w.Hour, w.End)
		}

		if err := b.enc.Encode(ctx, frames, outPath); err != nil {
			// 1時間分の失敗はその時間窓に閉じる
			log.Printf("ERROR: %s %02d00 のビルドに失敗: %v", camera, w.Hour, err)
			s.Failed++
			continue
		}

		log.Printf("OK: %s (フレーム数=%d)", outPath, len(frames))
		s.Built++
	}

	return s
}

// selectWindowFrames は時間窓に対応するフレームを選択する
// 時0の場合は前日窓のフレームを先頭に連結する（両窓は重ならず、
// それぞれmtime昇順なので連結結果も時系列順になる）
func (b *Builder) selectWindowFrames(w HourWindow, dayDir, prevDir string) []archive.Frame {
	if !w.HasPrevWindow() {
		return archive.SelectFrames(dayDir, w.Start, w.End)
	}

	frames := archive.SelectFrames(prevDir, w.PrevStart, w.PrevEnd)
	return append(frames, archive.SelectFrames(dayDir, w.Start, w.End)...)
}

// decision はリビルド判定の結果
type decision int

const (
	decisionBuild        decision = iota // エンコードを実行する
	decisionSkipNoFrames                 // 窓内にフレームがない
	decisionSkipTooFew                   // フレーム数が最小値未満
	decisionSkipUpToDate                 // 過去の時で成果物が最新
)

// decide は1時間窓のリビルド判定を行う
//   - フレームなし・不足は常にスキップ（既存の成果物には触れない）
//   - 過去の時は成果物のmtimeが最新フレーム以上ならスキップ
//   - 進行中の時は常にビルド（時間が不完全なため、実行のたびに
//     最新フレームを反映させる）
func (b *Builder) decide(w HourWindow, frames []archive.Frame, outPath string) decision {
	if len(frames) == 0 {
		return decisionSkipNoFrames
	}
	if len(frames) < b.archiveCfg.MinFrames {
		return decisionSkipTooFew
	}

	if !w.Current && upToDate(outPath, frames) {
		return decisionSkipUpToDate
	}

	return decisionBuild
}

// upToDate は成果物が存在し、最新フレームより新しいかを返す
func upToDate(outPath string, frames []archive.Frame) bool {
	info, err := os.Stat(outPath)
	if err != nil {
		return false
	}

	newest, ok := archive.NewestModTime(frames)
	if !ok {
		return true // ビルドするものがない
	}

	return !info.ModTime().Before(newest)
}

// ResolveCameras はCLIのカメラ選択をカメラディレクトリ名の列に解決する
// all が真ならすべてのカメラ、そうでなければ selected のキーのみ
// 1台も選択されていない場合はエラーを返す
func ResolveCameras(cfg config.ArchiveConfig, all bool, selected []string) ([]string, error) {
	if all {
		cameras := make([]string, 0, len(cfg.Cameras))
		for _, key := range cfg.CameraKeys() {
			cameras = append(cameras, cfg.Cameras[key])
		}
		return cameras, nil
	}

	var cameras []string
	for _, key := range selected {
		dir, ok := cfg.Cameras[key]
		if !ok {
			return nil, fmt.Errorf("未知のカメラキー: %s", key)
		}
		cameras = append(cameras, dir)
	}

	if len(cameras) == 0 {
		return nil, fmt.Errorf("カメラが選択されていません")
	}

	return cameras, nil
}
