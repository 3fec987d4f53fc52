// Package logging は、レベル付きログ出力とプロセス終了コードを管理します。
//
// 責務:
//   - debug / info / notice / warn / error / fatal の6レベルのログ出力
//   - レベルごとの色付きタグ表示
//   - 致命的エラーごとに固有の終了コードでプロセスを終了させる契約
//
// 仕様:
//   - 出力はミューテックスで直列化される
//   - 最小レベル未満のログは破棄される
//   - Fatalf の終了処理はテストのために差し替え可能
package logging
