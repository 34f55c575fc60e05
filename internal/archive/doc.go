// Package archive スナップショットアーカイブの読み取りを担う
//
// # 責務
// - YYYYMMDD 日付ディレクトリの列挙と最新日の決定
// - カメラディレクトリ内のJPEGフレームの時間窓による選択
// - フレームのmtime昇順ソート（動画の再生順そのもの）
//
// # 使い分け
// このパッケージは以下の場合に使用する：
// - アーカイブツリーからフレームを時間範囲で取り出したい
// - 処理対象の日付ディレクトリを決定したい
//
// # 仕様
// - アーカイブレイアウト: <root>/<YYYYMMDD>/<camera>/*.jpg|*.jpeg
// - 拡張子の大文字小文字は区別しない
// - フレームの生成はカメラ側の撮影プロセスが行う。このパッケージは
//   一切のファイル作成・移動・削除を行わない（読み取り専用）
// - 存在しないディレクトリは空扱い（エラーにしない）
// - 個別ファイルのstat失敗は黙って読み飛ばす（1ファイルの不良で
//   1時間分のビルドを中断させないため）
package archive
