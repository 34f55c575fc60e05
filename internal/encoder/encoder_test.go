package encoder

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"teiten/internal/archive"
	"teiten/internal/config"
)

// testEncodeConfig はテスト用のエンコード設定を返す
func testEncodeConfig() config.EncodeConfig {
	return config.EncodeConfig{
		OutputFPS:     15.0,
		ScaleMaxWidth: 1920,
		CRF:           23,
		Preset:        "veryfast",
	}
}

// TestWriteConcatList はconcatマニフェストの生成をテストする
func TestWriteConcatList(t *testing.T) {
	dir := t.TempDir()
	listFile := filepath.Join(dir, "frames.txt")

	frames := []archive.Frame{
		{Path: filepath.Join(dir, "a.jpg"), ModTime: time.Now()},
		{Path: filepath.Join(dir, "it's.jpg"), ModTime: time.Now()},
	}

	if err := writeConcatList(listFile, frames); err != nil {
		t.Fatalf("マニフェストの作成に失敗しました: %v", err)
	}

	data, err := os.ReadFile(listFile)
	if err != nil {
		t.Fatalf("マニフェストの読み込みに失敗しました: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("マニフェストの行数が一致しません: got %d, want 2", len(lines))
	}

	// 各行は file '<絶対パス>' 形式
	for _, line := range lines {
		if !strings.HasPrefix(line, "file '") || !strings.HasSuffix(line, "'") {
			t.Errorf("マニフェストの行形式が不正です: %q", line)
		}
	}

	// シングルクォートがエスケープされること
	if !strings.Contains(lines[1], `'\''`) {
		t.Errorf("シングルクォートがエスケープされていません: %q", lines[1])
	}
}

// TestPublishRename は同一ファイルシステム上での公開をテストする
func TestPublishRename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "out.mp4")
	dst := filepath.Join(dir, "final.mp4")

	if err := os.WriteFile(src, []byte("video-bytes"), 0644); err != nil {
		t.Fatalf("テストファイルの作成に失敗しました: %v", err)
	}

	if err := publish(src, dst); err != nil {
		t.Fatalf("公開に失敗しました: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("公開結果の読み込みに失敗しました: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Errorf("公開結果の内容が一致しません: %q", data)
	}

	// 元ファイルは残らない
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("公開後に元ファイルが残っています")
	}
}

// TestPublishOverwrite は既存成果物の上書きをテストする
func TestPublishOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "out.mp4")
	dst := filepath.Join(dir, "final.mp4")

	if err := os.WriteFile(src, []byte("new-video"), 0644); err != nil {
		t.Fatalf("テストファイルの作成に失敗しました: %v", err)
	}
	if err := os.WriteFile(dst, []byte("old-video"), 0644); err != nil {
		t.Fatalf("既存ファイルの作成に失敗しました: %v", err)
	}

	if err := publish(src, dst); err != nil {
		t.Fatalf("公開に失敗しました: %v", err)
	}

	data, _ := os.ReadFile(dst)
	if string(data) != "new-video" {
		t.Errorf("上書きされていません: %q", data)
	}
}

// TestCopyFile はコピーfallback用のファイルコピーをテストする
func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mp4")
	dst := filepath.Join(dir, "dst.mp4")

	if err := os.WriteFile(src, []byte("content"), 0644); err != nil {
		t.Fatalf("テストファイルの作成に失敗しました: %v", err)
	}

	if err := copyFile(src, dst); err != nil {
		t.Fatalf("コピーに失敗しました: %v", err)
	}

	data, _ := os.ReadFile(dst)
	if string(data) != "content" {
		t.Errorf("コピー内容が一致しません: %q", data)
	}

	// コピー元は残る
	if _, err := os.Stat(src); err != nil {
		t.Errorf("コピー元が消えています: %v", err)
	}
}

// TestEncodeNoFrames はフレームなしでのエラーをテストする
func TestEncodeNoFrames(t *testing.T) {
	enc := NewFFmpegEncoder(testEncodeConfig(), false)
	if err := enc.Encode(context.Background(), nil, filepath.Join(t.TempDir(), "out.mp4")); err == nil {
		t.Error("フレームなしでエラーが返りませんでした")
	}
}

// TestMockEncoder はモックエンコーダーの記録をテストする
func TestMockEncoder(t *testing.T) {
	mock := NewMockEncoder()
	out := filepath.Join(t.TempDir(), "out.mp4")

	frames := []archive.Frame{{Path: "a.jpg", ModTime: time.Now()}}
	if err := mock.Encode(context.Background(), frames, out); err != nil {
		t.Fatalf("モックエンコードに失敗しました: %v", err)
	}

	if mock.CallCount() != 1 {
		t.Errorf("呼び出し回数が一致しません: got %d, want 1", mock.CallCount())
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("ダミー成果物が作成されていません: %v", err)
	}
}
