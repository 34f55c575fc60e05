// Package dupes 写真ツリーの重複ファイル名の一覧出力を担う
//
// # 責務
// - duplicates.txt の読み込みとベースネームによるグループ化
// - 検索ルート配下の一致ファイルの列挙
// - 一覧レポートの出力（端末とログファイルの両方）
//
// # 仕様
// - 一覧出力のみ。移動・リネーム・削除・ディレクトリ作成は一切行わない
// - ファイルシステムへの変更は絶対にしない（読み取り専用）
// - slideshow_exclude ディレクトリは走査から除外する
// - リスト内に2回以上現れるベースネームのみを対象とする
package dupes

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// excludeDirName は走査から除外するディレクトリ名
const excludeDirName = "slideshow_exclude"

// Groups はベースネーム → リスト内パスの対応
type Groups map[string][]string

// LoadList は重複リストファイルを読み込み、ベースネームでグループ化する
// 絶対パスでない行はログを出して読み飛ばす
func LoadList(path string) (Groups, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("重複リストの読み込みに失敗: %w", err)
	}
	defer f.Close()

	groups := make(Groups)
	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !filepath.IsAbs(line) {
			log.Printf("絶対パスでない行を読み飛ばします (行 %d): %s", lineno, line)
			continue
		}
		base := filepath.Base(line)
		groups[base] = append(groups[base], line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("重複リストの読み取りエラー: %w", err)
	}

	return groups, nil
}

// Duplicated はリスト内に2回以上現れるベースネームのみを返す
func (g Groups) Duplicated() Groups {
	out := make(Groups)
	for base, paths := range g {
		if len(paths) > 1 {
			out[base] = paths
		}
	}
	return out
}

// Scan は検索ルートを1回走査し、wanted に含まれるベースネームに一致する
// ファイルのパスをベースネームごとに集める
// slideshow_exclude ディレクトリ配下は除外する
// 個別エントリのエラーは読み飛ばして走査を続行する
func Scan(root string, wanted Groups, progress io.Writer) (map[string][]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("検索ルートにアクセスできません: %w", err)
	}

	found := make(map[string][]string, len(wanted))
	for base := range wanted {
		found[base] = nil
	}

	// 走査対象数は事前に分からないのでスピナー表示
	var bar *progressbar.ProgressBar
	if progress != nil {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("走査中"),
			progressbar.OptionSpinnerType(14),
		)
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// 読めないエントリは読み飛ばす
			return nil
		}
		if d.IsDir() {
			if d.Name() == excludeDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if bar != nil {
			_ = bar.Add(1)
		}
		if paths, ok := found[d.Name()]; ok {
			found[d.Name()] = append(paths, path)
		}
		return nil
	})
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(progress)
	}
	if err != nil {
		return nil, fmt.Errorf("走査に失敗: %w", err)
	}

	return found, nil
}

// Report は一覧レポートを w に書き出す
// 形式:
//
//	IMG_1234.jpg
//	    /リスト内のパス/IMG_1234.jpg
//	    /検索で見つかったパス/IMG_1234.jpg
//
// ベースネームはソート順、リスト内パスが先、検索結果が後
func Report(w io.Writer, listed Groups, found map[string][]string) error {
	bases := make([]string, 0, len(listed))
	for base := range listed {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	for _, base := range bases {
		if _, err := fmt.Fprintln(w, base); err != nil {
			return err
		}

		seen := make(map[string]bool)
		for _, p := range listed[base] {
			if seen[p] {
				continue
			}
			seen[p] = true
			if _, err := fmt.Fprintf(w, "    %s\n", p); err != nil {
				return err
			}
		}
		for _, p := range found[base] {
			if seen[p] {
				continue
			}
			seen[p] = true
			if _, err := fmt.Fprintf(w, "    %s\n", p); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	return nil
}
