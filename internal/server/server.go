package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"teiten/internal/config"
	"teiten/internal/weather"
)

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	router     *gin.Engine
	httpServer *http.Server
	weather    *weather.Refresher

	// スライドショー対象の画像パス（起動時にソート順で読み込む）
	images []string
}

// New は新しいServerインスタンスを作成する
// weatherRefresher はnilでもよい（天気機能無効）
func New(cfg *config.Config, weatherRefresher *weather.Refresher) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		config:  cfg,
		router:  router,
		weather: weatherRefresher,
		images:  listSlideshowImages(cfg.Slideshow.Dir),
		httpServer: &http.Server{
			Addr:         cfg.ServerAddress(),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	s.setupRoutes()
	return s
}

// setupRoutes はHTTPルートを設定する
func (s *Server) setupRoutes() {
	// ヘルスチェックとステータス
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/api/status", s.handleStatus)

	// スライドショー
	s.router.GET("/", s.handleSlideshow)
	s.router.GET("/slideshow", s.handleSlideshow)
	s.router.GET("/slideshow/image", s.handleSlideshowImage)

	// タイムラプス動画ビューア
	s.router.GET("/api/videos", s.handleListVideos)
	s.router.GET("/videos/:day/:camera/:name", s.handleVideo)

	// 天気パネル
	s.router.GET("/weather", s.handleWeatherPage)
	s.router.GET("/weather/panel.png", s.handleWeatherPanel)
}

// Start はサーバーを起動する
func (s *Server) Start(ctx context.Context) error {
	// シャットダウン用のチャンネル
	shutdownCh := make(chan error, 1)

	// サーバーを別ゴルーチンで起動
	go func() {
		var err error
		if s.config.UseTLS() {
			log.Printf("HTTPSサーバーを起動しています: %s", s.config.ServerAddress())
			err = s.httpServer.ListenAndServeTLS(s.config.Server.CertFile, s.config.Server.KeyFile)
		} else {
			log.Printf("HTTPサーバーを起動しています: %s", s.config.ServerAddress())
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			shutdownCh <- fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		log.Println("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		log.Printf("シグナルを受信しました: %v", sig)
	case err := <-shutdownCh:
		return err
	}

	// グレースフルシャットダウン
	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	log.Println("サーバーをシャットダウンしています...")

	// 5秒のタイムアウトを設定
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
	}

	log.Println("サーバーが正常にシャットダウンされました")
	return nil
}

// listSlideshowImages はスライドショーディレクトリ内の画像を
// ファイル名のソート順で返す
func listSlideshowImages(dir string) []string {
	if dir == "" {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("スライドショーディレクトリが読めません: %v", err)
		return nil
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(images)
	log.Printf("スライドショー画像を %d 枚読み込みました: %s", len(images), dir)
	return images
}
