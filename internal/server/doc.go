// Package server スライドショー・動画ビューア・天気パネルのHTTP配信を担う
//
// # 責務
// - HTTPサーバーの起動と管理（HTTP/HTTPS両対応）
// - スライドショーページと画像の配信
// - アーカイブ内のタイムラプスMP4の一覧と配信
// - 天気パネル（HTML/PNG）の配信
//
// # 仕様
// - ルーティングはgin-gonic/ginを使用
// - MP4はinline配信（ブラウザでのプログレッシブ再生用）
// - パスパラメータはアーカイブレイアウトに対して検証する
//   （ディレクトリトラバーサル対策）
// - TLS証明書が設定されている場合のみHTTPSで起動
// - グレースフルシャットダウンに対応
package server
