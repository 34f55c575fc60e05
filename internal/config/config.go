package config

import (
	"fmt"
	"os"
	"sort"
	"time"
)

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Archive   ArchiveConfig
	Encode    EncodeConfig
	Server    ServerConfig
	Slideshow SlideshowConfig
	Weather   WeatherConfig
}

// ArchiveConfig はスナップショットアーカイブ関連の設定
type ArchiveConfig struct {
	Root      string            // YYYYMMDD ディレクトリを含むアーカイブルート
	Cameras   map[string]string // カメラキー (camera1...) → ディレクトリ名
	MinFrames int               // 1時間あたりの最小フレーム数（これ未満はスキップ）
	Overlap   time.Duration     // 時間窓末尾のオーバーラップ
}

// EncodeConfig はエンコード関連の設定
type EncodeConfig struct {
	OutputFPS     float64 // 出力動画のフレームレート
	ScaleMaxWidth int     // スケーリング時の最大幅
	CRF           int     // x264 CRF 品質値（小さいほど高品質）
	Preset        string  // x264 プリセット
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string // リッスンするホスト
	Port int    // リッスンするポート番号

	// タイムアウト設定
	ReadTimeout  time.Duration // 読み込みタイムアウト
	WriteTimeout time.Duration // 書き込みタイムアウト

	// TLS 設定（両方指定された場合のみ HTTPS で起動）
	CertFile string
	KeyFile  string
}

// SlideshowConfig はスライドショー表示の設定
type SlideshowConfig struct {
	Dir      string        // 表示する画像を含むディレクトリ
	Interval time.Duration // 画像切り替え間隔
}

// WeatherConfig は天気パネルの設定
type WeatherConfig struct {
	APIKey          string
	Latitude        float64
	Longitude       float64
	Units           string        // "imperial" または "metric"
	RefreshInterval time.Duration // APIの再取得間隔
}

// DefaultCameras はデフォルトのカメラマッピングを返す
func DefaultCameras() map[string]string {
	return map[string]string{
		"camera1": "backwindows",
		"camera2": "basementWoodRm",
		"camera3": "driveway",
		"camera4": "frontDoorInside",
		"camera5": "garagedoors",
		"camera6": "livingRoom",
	}
}

// Load は設定を読み込む
// デフォルト値を環境変数で上書きし、CLI フラグによる上書きは cmd 層で行う
func Load() (*Config, error) {
	cfg := &Config{
		Archive: ArchiveConfig{
			Root:      getEnvOrDefault("TEITEN_ARCHIVE_ROOT", "/media/CameraSnapshots/SecurityCameraSnapshots/archive"),
			Cameras:   DefaultCameras(),
			MinFrames: getEnvAsIntOrDefault("TEITEN_MIN_FRAMES", 30),
			Overlap:   time.Duration(getEnvAsIntOrDefault("TEITEN_OVERLAP_MINUTES", 5)) * time.Minute,
		},
		Encode: EncodeConfig{
			OutputFPS:     15.0,
			ScaleMaxWidth: getEnvAsIntOrDefault("TEITEN_SCALE_MAX_WIDTH", 1920),
			CRF:           getEnvAsIntOrDefault("TEITEN_CRF", 23),
			Preset:        getEnvOrDefault("TEITEN_PRESET", "veryfast"),
		},
		Server: ServerConfig{
			Host:         getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsIntOrDefault("PORT", 8000),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 0, // 動画配信用にタイムアウト無効化
			CertFile:     getEnvOrDefault("TEITEN_TLS_CERT", ""),
			KeyFile:      getEnvOrDefault("TEITEN_TLS_KEY", ""),
		},
		Slideshow: SlideshowConfig{
			Dir:      getEnvOrDefault("TEITEN_SLIDESHOW_DIR", ""),
			Interval: 10 * time.Second,
		},
		Weather: WeatherConfig{
			APIKey:          getEnvOrDefault("OPENWEATHER_API_KEY", ""),
			Latitude:        34.055667,
			Longitude:       -84.231000,
			Units:           getEnvOrDefault("TEITEN_WEATHER_UNITS", "imperial"),
			RefreshInterval: 10 * time.Minute,
		},
	}

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	// サーバー設定の検証
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("無効なポート番号: %d", c.Server.Port)
	}

	// 時0の前日窓は「23時(60-overlap)分」から始まるため、
	// オーバーラップは0分超60分未満でなければならない
	if c.Archive.Overlap <= 0 || c.Archive.Overlap >= time.Hour {
		return fmt.Errorf("無効なオーバーラップ: %v (0分超60分未満が必要)", c.Archive.Overlap)
	}

	if c.Archive.MinFrames < 1 {
		return fmt.Errorf("無効な最小フレーム数: %d", c.Archive.MinFrames)
	}

	if len(c.Archive.Cameras) == 0 {
		return fmt.Errorf("カメラマッピングが設定されていません")
	}

	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// UseTLS はTLSで起動すべきかを返す
func (c *Config) UseTLS() bool {
	return c.Server.CertFile != "" && c.Server.KeyFile != ""
}

// CameraKeys はカメラキーの一覧をソート順で返す
func (c *ArchiveConfig) CameraKeys() []string {
	keys := make([]string, 0, len(c.Cameras))
	for k := range c.Cameras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CameraMappingText はカメラマッピングの説明文を返す（ヘルプ表示用）
func (c *ArchiveConfig) CameraMappingText() string {
	text := "カメラマッピング:\n"
	for _, k := range c.CameraKeys() {
		text += fmt.Sprintf("  -%s  =>  %s\n", k, c.Cameras[k])
	}
	text += "  -all      =>  上記すべてのカメラ\n"
	return text
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}
