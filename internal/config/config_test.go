package config

import (
	"os"
	"testing"
	"time"
)

// TestConfigLoad は設定の読み込みをテストする
func TestConfigLoad(t *testing.T) {
	// 設定を読み込む
	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// 基本的な設定値を検証
	if cfg == nil {
		t.Fatal("設定がnilです")
	}

	// アーカイブ設定の検証
	if cfg.Archive.Root == "" {
		t.Error("アーカイブルートが設定されていません")
	}
	if len(cfg.Archive.Cameras) == 0 {
		t.Error("カメラマッピングが設定されていません")
	}
	if cfg.Archive.MinFrames <= 0 {
		t.Error("最小フレーム数が設定されていません")
	}
	if cfg.Archive.Overlap <= 0 || cfg.Archive.Overlap >= time.Hour {
		t.Errorf("無効なオーバーラップ: %v", cfg.Archive.Overlap)
	}

	// エンコード設定の検証
	if cfg.Encode.OutputFPS <= 0 {
		t.Error("出力FPSが設定されていません")
	}
	if cfg.Encode.ScaleMaxWidth <= 0 {
		t.Error("最大幅が設定されていません")
	}
	if cfg.Encode.Preset == "" {
		t.Error("プリセットが設定されていません")
	}

	// サーバー設定の検証
	if cfg.Server.Host == "" {
		t.Error("サーバーホストが設定されていません")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		t.Errorf("無効なポート番号: %d", cfg.Server.Port)
	}
	// WriteTimeout は 0（無効）でも正常
	if cfg.Server.WriteTimeout < 0 {
		t.Error("書き込みタイムアウトが負の値です")
	}
}

// TestConfigValidation は設定の検証をテストする
func TestConfigValidation(t *testing.T) {
	base := func() *Config {
		return &Config{
			Archive: ArchiveConfig{
				Root:      "/tmp/archive",
				Cameras:   DefaultCameras(),
				MinFrames: 30,
				Overlap:   5 * time.Minute,
			},
			Server: ServerConfig{
				Host: "localhost",
				Port: 8000,
			},
		}
	}

	testCases := []struct {
		name      string
		modify    func(*Config)
		expectErr bool
	}{
		{
			name:      "正常な設定",
			modify:    func(*Config) {},
			expectErr: false,
		},
		{
			name: "無効なポート番号",
			modify: func(c *Config) {
				c.Server.Port = 99999
			},
			expectErr: true,
		},
		{
			name: "オーバーラップが0",
			modify: func(c *Config) {
				c.Archive.Overlap = 0
			},
			expectErr: true,
		},
		{
			name: "オーバーラップが60分",
			modify: func(c *Config) {
				c.Archive.Overlap = time.Hour
			},
			expectErr: true,
		},
		{
			name: "オーバーラップが59分（上限ぎりぎり）",
			modify: func(c *Config) {
				c.Archive.Overlap = 59 * time.Minute
			},
			expectErr: false,
		},
		{
			name: "最小フレーム数が0",
			modify: func(c *Config) {
				c.Archive.MinFrames = 0
			},
			expectErr: true,
		},
		{
			name: "カメラマッピングなし",
			modify: func(c *Config) {
				c.Archive.Cameras = map[string]string{}
			},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.expectErr && err == nil {
				t.Error("エラーが期待されましたが、エラーが発生しませんでした")
			}
			if !tc.expectErr && err != nil {
				t.Errorf("予期しないエラーが発生しました: %v", err)
			}
		})
	}
}

// TestServerAddress はサーバーアドレスの生成をテストする
func TestServerAddress(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Host: "192.168.1.100",
			Port: 9090,
		},
	}

	expected := "192.168.1.100:9090"
	actual := cfg.ServerAddress()

	if actual != expected {
		t.Errorf("サーバーアドレスが一致しません: got %s, want %s", actual, expected)
	}
}

// TestCameraKeys はカメラキー一覧の取得をテストする
func TestCameraKeys(t *testing.T) {
	ac := &ArchiveConfig{Cameras: DefaultCameras()}

	keys := ac.CameraKeys()
	if len(keys) != 6 {
		t.Fatalf("カメラキー数が一致しません: got %d, want 6", len(keys))
	}

	// ソート順で返ること
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Errorf("カメラキーがソートされていません: %v", keys)
		}
	}
}

// TestEnvironmentVariables は環境変数の処理をテストする
// 注意: このテストは環境変数を変更するため、parallelは使わない
func TestEnvironmentVariables(t *testing.T) {
	originalRoot := os.Getenv("TEITEN_ARCHIVE_ROOT")
	originalMin := os.Getenv("TEITEN_MIN_FRAMES")

	defer func() {
		// テスト後に環境変数を復元
		_ = os.Setenv("TEITEN_ARCHIVE_ROOT", originalRoot)
		_ = os.Setenv("TEITEN_MIN_FRAMES", originalMin)
	}()

	// 環境変数を設定
	_ = os.Setenv("TEITEN_ARCHIVE_ROOT", "/data/snapshots")
	_ = os.Setenv("TEITEN_MIN_FRAMES", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg.Archive.Root != "/data/snapshots" {
		t.Errorf("環境変数のアーカイブルートが反映されていません: got %s, want /data/snapshots", cfg.Archive.Root)
	}
	if cfg.Archive.MinFrames != 15 {
		t.Errorf("環境変数の最小フレーム数が反映されていません: got %d, want 15", cfg.Archive.MinFrames)
	}
}
