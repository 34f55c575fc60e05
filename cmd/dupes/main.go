// Package main は重複スナップショット検索コマンドの実装です
//
// リストファイルに列挙されたパスを基準に、検索ルート以下から
// 同名ファイルを探して報告する。報告のみでファイルの変更や削除は行わない。
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"teiten/internal/dupes"
)

const version = "1.4"

func main() {
	os.Exit(run())
}

func run() int {
	// コマンドラインオプション
	var (
		listPath    = flag.String("list", "", "基準となるファイルパスのリスト (必須)")
		showVersion = flag.Bool("version", false, "バージョンを表示")
		help        = flag.Bool("help", false, "ヘルプを表示")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("dupes v%s\n", version)
		return 0
	}

	if *help || *listPath == "" || flag.NArg() != 1 {
		fmt.Println("Teiten Dupes - リストに基づく重複ファイル検索")
		fmt.Println()
		fmt.Println("使用方法:")
		fmt.Println("  dupes -list <リストファイル> <検索ルート>")
		fmt.Println()
		fmt.Println("オプション:")
		flag.PrintDefaults()
		if *help {
			return 0
		}
		return 2
	}
	root := flag.Arg(0)

	// リストを読み込み、重複しているベースネームだけを対象にする
	loaded, err := dupes.LoadList(*listPath)
	if err != nil {
		log.Printf("リストの読み込みに失敗しました: %v", err)
		return 1
	}
	listed := loaded.Duplicated()
	log.Printf("リストを読み込みました: %d 件中 %d 件が重複 (%s)", len(loaded), len(listed), *listPath)

	// 検索ルートを走査する
	found, err := dupes.Scan(root, listed, os.Stderr)
	if err != nil {
		log.Printf("検索に失敗しました: %v", err)
		return 1
	}

	// 結果を標準出力とログファイルの両方に書き出す
	logName := fmt.Sprintf("dupes-%s.log", time.Now().Format("20060102-150405"))
	logFile, err := os.Create(logName)
	if err != nil {
		log.Printf("ログファイルの作成に失敗しました: %v", err)
		return 1
	}
	defer logFile.Close()

	out := io.MultiWriter(os.Stdout, logFile)
	if err := dupes.Report(out, listed, found); err != nil {
		log.Printf("結果の出力に失敗しました: %v", err)
		return 1
	}

	log.Printf("結果をログファイルに保存しました: %s", logName)
	return 0
}
