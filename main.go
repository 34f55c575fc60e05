package main

import (
	"context"
	"log"

	"teiten/internal/config"
	"teiten/internal/server"
	"teiten/internal/weather"
)

func main() {
	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// コンテキストを作成
	ctx := context.Background()

	// 天気パネル（APIキーが設定されている場合のみ有効）
	var refresher *weather.Refresher
	if cfg.Weather.APIKey != "" {
		client := weather.NewClient(cfg.Weather.APIKey, cfg.Weather.Latitude,
			cfg.Weather.Longitude, cfg.Weather.Units)
		refresher = weather.NewRefresher(client, cfg.Weather.RefreshInterval)
		refresher.Start(ctx)
		defer refresher.Stop(ctx)
	} else {
		log.Println("OPENWEATHER_API_KEY が未設定のため天気パネルは無効です")
	}

	// サーバーを作成
	srv := server.New(cfg, refresher)

	// サーバーを起動
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("サーバーの起動に失敗しました: %v", err)
	}
}
