// Package builder 時間窓ごとのタイムラプスMP4ビルドを担う
//
// # 責務
// - 対象日の時間窓列の計算（オーバーラップ・深夜0時の特例・進行中の時のクランプ）
// - 時間窓ごとのリビルド判定（スキップ／ビルド）
// - カメラ・時間窓ごとの逐次ビルド実行とエラー隔離
//
// # 仕様
// - 時HHの窓は [HH:00:00, (HH+1):00:00+overlap) の半開区間
// - 対象日が今日の場合、進行中の時の窓末尾は現在時刻にクランプされる
// - 時0は前日ディレクトリの末尾overlap分を窓に含める（前日の映像と
//   切れ目なくつながるようにするため）。前日ディレクトリがなければ
//   単に空として扱う
// - 過去の時: 成果物が存在し最新フレームより新しければスキップ
//   （再実行してもエンコードが発生しない冪等性の保証）
// - 進行中の時: 常にリビルド（成果物が常に最新フレームを反映する）
// - カメラは1台ずつ、時は昇順で逐次処理する。並列化はしない
// - 1時間分のビルド失敗はその時間窓に閉じ、他の時間・カメラの処理は続行する
//
// # 前提要件
//   - ffmpeg: エンコードに使用（encoder パッケージ経由）
package builder
