// Package webroot は、配信対象ディレクトリの取り込みとルート索引を担います。
//
// 責務:
//   - Webルートディレクトリの一回限りの安全な走査
//   - 全配信ファイルのメモリへの読み込み（Blob）
//   - ルートパス → Blob の凍結済み索引（Table）の構築
//   - 最長ルートパス長の算出（受信バッファのサイズ決定に使う）
//
// 仕様:
//   - 走査は物理走査（シンボリックリンクを辿らない）、単一デバイス、深さ優先
//   - ドットファイル・ドットディレクトリは配下ごと除外される
//   - シンボリックリンク・循環・特殊ファイルは検出した時点で走査全体が失敗する
//   - ディレクトリのindex.htmlはそのディレクトリのパスをルートとして登録される
//   - 走査完了後にTableは凍結され、配信中は一切変更されない
package webroot
