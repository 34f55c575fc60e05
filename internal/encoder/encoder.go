// Package encoder ffmpegによる動画エンコードと成果物の公開を担う
//
// # 責務
// - フレームリストのconcatマニフェスト生成
// - ffmpegの起動と終了待ち（1時間窓につき1回）
// - 一時作業ディレクトリの管理（全経路で削除）
// - エンコード結果の最終パスへの公開（リネーム優先・コピーfallback）
//
// # 仕様
// - concat demuxer（-f concat -safe 0）でマニフェストを入力にする
// - libx264 / yuv420p / +faststart（HTTPプログレッシブ再生用）
// - 幅は最大幅にキャップしアスペクト比維持、高さは偶数に丸める
//   （scale='min(W,iw)':-2、コーデックの必須条件）
// - 最終パスへの変更はリネームのみ。エンコード中にプロセスが落ちても
//   公開済みの成果物が壊れることはない
package encoder

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"teiten/internal/archive"
	"teiten/internal/config"
)

// Encoder はフレームリストから動画ファイルを生成するインターフェース
type Encoder interface {
	// Encode はフレームリストを outPath の動画にエンコードする
	Encode(ctx context.Context, frames []archive.Frame, outPath string) error
}

// FFmpegEncoder はffmpegを使用するEncoderの本番実装
type FFmpegEncoder struct {
	ffmpegPath string
	encode     config.EncodeConfig
	verbose    bool
}

// NewFFmpegEncoder は新しいFFmpegEncoderを作成する
func NewFFmpegEncoder(cfg config.EncodeConfig, verbose bool) *FFmpegEncoder {
	return &FFmpegEncoder{
		ffmpegPath: "ffmpeg",
		encode:     cfg,
		verbose:    verbose,
	}
}

// ValidateFFmpeg はffmpegが利用可能かチェックする
func (e *FFmpegEncoder) ValidateFFmpeg(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.ffmpegPath, "-version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpegが見つかりません。インストールしてください: %w", err)
	}

	return nil
}

// Encode はフレームリストをffmpegでエンコードし、成功時に outPath へ公開する
func (e *FFmpegEncoder) Encode(ctx context.Context, frames []archive.Frame, outPath string) error {
	if len(frames) == 0 {
		return fmt.Errorf("エンコードするフレームがありません")
	}

	// セッションごとの一時作業ディレクトリを作成
	workDir := filepath.Join(os.TempDir(), "teiten-encode-"+uuid.New().String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("一時ディレクトリの作成に失敗: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(workDir) // cleanup中のエラーは無視
	}()

	// concatマニフェストを作成
	listFile := filepath.Join(workDir, "frames.txt")
	if err := writeConcatList(listFile, frames); err != nil {
		return fmt.Errorf("フレームリストの作成に失敗: %w", err)
	}

	// ffmpegで一時作業ディレクトリ内にエンコード
	tmpOut := filepath.Join(workDir, "out.mp4")
	if err := e.runFFmpeg(ctx, listFile, tmpOut); err != nil {
		return err
	}

	// 出力先ディレクトリを確保してから公開
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗: %w", err)
	}

	return publish(tmpOut, outPath)
}

// runFFmpeg はconcatマニフェストを入力にffmpegを1回起動する
func (e *FFmpegEncoder) runFFmpeg(ctx context.Context, listFile, outPath string) error {
	logLevel := "error"
	if e.verbose {
		logLevel = "info"
	}

	// 幅を最大幅にキャップし、高さは偶数に丸める
	vf := fmt.Sprintf("scale='min(%d,iw)':-2", e.encode.ScaleMaxWidth)

	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-y",
		"-hide_banner",
		"-loglevel", logLevel,
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-vf", vf,
		"-r", strconv.FormatFloat(e.encode.OutputFPS, 'f', -1, 64),
		"-c:v", "libx264",
		"-preset", e.encode.Preset,
		"-crf", strconv.Itoa(e.encode.CRF),
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		outPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpegの実行に失敗: %w (output: %s)", err, strings.TrimSpace(string(output)))
	}

	return nil
}

// writeConcatList はffmpeg concat demuxer用のマニフェストを書き出す
// パスは絶対パスに解決し、シングルクォートをエスケープする
func writeConcatList(listFile string, frames []archive.Frame) error {
	var b strings.Builder
	for _, frame := range frames {
		abs, err := filepath.Abs(frame.Path)
		if err != nil {
			return fmt.Errorf("絶対パスの解決に失敗 (%s): %w", frame.Path, err)
		}
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}

	return os.WriteFile(listFile, []byte(b.String()), 0644)
}

// publish はエンコード結果を最終パスへ移動する
// まずリネームを試し、失敗した場合（別ファイルシステムなど）は
// 出力先と同じファイルシステム上の一時ファイルへコピーしてからリネームする
// 最終パスへの変更は常にリネームで行われるため、途中で落ちても
// 公開済みの成果物が中途半端な状態になることはない
func publish(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	// リネーム失敗（典型的にはEXDEV）: 出力先の隣にコピーしてリネーム
	sibling := dst + ".tmp"
	if err := copyFile(src, sibling); err != nil {
		return fmt.Errorf("一時ファイルへのコピーに失敗: %w", err)
	}

	if err := os.Rename(sibling, dst); err != nil {
		_ = os.Remove(sibling)
		return fmt.Errorf("ファイル置き換えに失敗: %w", err)
	}

	return nil
}

// copyFile はファイルをコピーし、書き込み完了をディスクに同期する
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}

	if err := out.Sync(); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}

	return out.Close()
}
