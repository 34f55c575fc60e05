// Package main はタイムラプスMP4ビルダーコマンドの実装です
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"teiten/internal/archive"
	"teiten/internal/builder"
	"teiten/internal/config"
	"teiten/internal/encoder"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Printf("設定の読み込みに失敗しました: %v", err)
		return 1
	}

	// コマンドラインオプション
	var (
		all           = flag.Bool("all", false, "すべてのカメラを処理する")
		day           = flag.String("day", "", "処理する日付 (YYYYMMDD、デフォルト: 最新日)")
		archiveRoot   = flag.String("archive-root", "", "アーカイブルートディレクトリ")
		outputFPS     = flag.Float64("output-fps", cfg.Encode.OutputFPS, "出力動画のフレームレート")
		scaleMaxWidth = flag.Int("scale-max-width", cfg.Encode.ScaleMaxWidth, "スケーリング時の最大幅")
		crf           = flag.Int("crf", cfg.Encode.CRF, "x264 CRF 品質値")
		preset        = flag.String("preset", cfg.Encode.Preset, "x264 プリセット")
		minFrames     = flag.Int("min-frames", cfg.Archive.MinFrames, "1時間あたりの最小フレーム数")
		verbose       = flag.Bool("v", false, "詳細ログを表示")
		help          = flag.Bool("help", false, "ヘルプを表示")
	)

	// カメラ選択フラグ (camera1...camera6)
	cameraFlags := make(map[string]*bool)
	for _, key := range cfg.Archive.CameraKeys() {
		cameraFlags[key] = flag.Bool(key, false,
			fmt.Sprintf("%s (%s) を処理する", key, cfg.Archive.Cameras[key]))
	}

	flag.Parse()

	// ヘルプ表示
	if *help {
		fmt.Println("Teiten Builder - 時間ごとのタイムラプスMP4を生成します")
		fmt.Println()
		fmt.Println("使用方法:")
		fmt.Println("  builder [オプション]")
		fmt.Println()
		fmt.Println("オプション:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Print(cfg.Archive.CameraMappingText())
		return 0
	}

	// コマンドラインオプションで設定を上書き
	if *archiveRoot != "" {
		cfg.Archive.Root = *archiveRoot
	}
	cfg.Archive.MinFrames = *minFrames
	cfg.Encode.OutputFPS = *outputFPS
	cfg.Encode.ScaleMaxWidth = *scaleMaxWidth
	cfg.Encode.CRF = *crf
	cfg.Encode.Preset = *preset

	if err := cfg.Validate(); err != nil {
		log.Printf("設定の検証に失敗しました: %v", err)
		return 1
	}

	// カメラを解決する（処理順を安定させるためキー順に集める）
	var selected []string
	for _, key := range cfg.Archive.CameraKeys() {
		if *cameraFlags[key] {
			selected = append(selected, key)
		}
	}
	cameras, err := builder.ResolveCameras(cfg.Archive, *all, selected)
	if err != nil {
		log.Printf("カメラの指定に誤りがあります: %v", err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprint(os.Stderr, cfg.Archive.CameraMappingText())
		return 2
	}

	// アーカイブルートの存在確認
	if info, err := os.Stat(cfg.Archive.Root); err != nil || !info.IsDir() {
		log.Printf("アーカイブルートが存在しません: %s", cfg.Archive.Root)
		return 2
	}

	// 処理対象の日を決める
	targetDay := *day
	if targetDay == "" {
		latest, err := archive.LatestDay(cfg.Archive.Root)
		if err != nil {
			log.Printf("処理対象の日が見つかりません: %v", err)
			return 1
		}
		targetDay = latest
	}

	ctx := context.Background()

	// ffmpegの存在確認
	enc := encoder.NewFFmpegEncoder(cfg.Encode, *verbose)
	if err := enc.ValidateFFmpeg(ctx); err != nil {
		log.Printf("ffmpegが利用できません: %v", err)
		return 1
	}

	// ビルドを実行する
	start := time.Now()
	b := builder.NewBuilder(cfg.Archive, enc, *verbose)
	summary, err := b.BuildDay(ctx, targetDay, cameras)
	if err != nil {
		log.Printf("ビルドに失敗しました: %v", err)
		return 1
	}

	log.Printf("完了: 生成 %d 件 / 失敗 %d 件 (所要時間: %v)",
		summary.Built, summary.Failed, time.Since(start).Round(time.Second))

	// 個別の失敗はログ済み。部分的な成功も正常終了とする
	return 0
}
