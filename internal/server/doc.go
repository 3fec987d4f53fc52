// Package server は、配信ソケットと接続ごとのプロトコル処理を管理します。
//
// 責務:
//   - 設定されたバックログ長での配信ソケットの確立
//   - 接続の受け付けとワーカー（ゴルーチン）への振り分け
//   - 接続ごとの状態機械: 受信 → 解析 → 検索 → 応答 → 切断
//   - 接続スコープの失敗の分類とログ出力
//   - グレースフルシャットダウン
//
// 仕様:
//   - リクエストは解析しない。リテラル "GET " の照合とパストークンの
//     切り出しのみを行う
//   - 受信は 最長ルート長+5 バイトを上限、5バイト ("GET /") を下限とし、
//     受信・送信ともタイムアウトで制限される
//   - 応答は HTTP/1.1 のステータス行と Content-Length ヘッダのみ
//   - 1接続につき1リクエスト。keep-aliveもパイプライン処理もない
//   - 接続スコープの失敗はその接続だけを打ち切り、リスナーや他の接続には
//     決して波及しない
package server
