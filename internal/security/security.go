// Package security は、起動時の健全性チェックと権限の放棄を担当します。
//
// 責務:
//   - rootユーザーでの起動の拒否
//   - リスニングソケット確立後・最初のaccept前の一回限りの権限放棄
//
// 仕様:
//   - 権限放棄後は新たな特権の取得が禁止され、コアダンプも無効化される
//   - 放棄に失敗した場合は起動を中断すべき致命的エラーとして扱う
package security

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ErrRunningAsRoot はrootユーザーで起動された
var ErrRunningAsRoot = errors.New("HTTPサーバーをrootで起動しないでください")

// SanityCheck は起動時の基本的な健全性を確認する
func SanityCheck() error {
	if os.Geteuid() == 0 {
		return ErrRunningAsRoot
	}
	return nil
}

// EnterSandbox は可能な限りの権限を放棄する
// ルートテーブルの構築とリスニングソケットの確立が終わった後、
// 最初の接続を受け付ける前に一度だけ呼ぶこと
func EnterSandbox() error {
	// 以後、setuidバイナリ等による特権の昇格を禁止する
	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return fmt.Errorf("prctl(PR_SET_NO_NEW_PRIVS): %w", err)
	}

	// メモリ上の配信内容がコアダンプに書き出されないようにする
	if err := unix.Setrlimit(unix.RLIMIT_CORE, &unix.Rlimit{Cur: 0, Max: 0}); err != nil {
		return fmt.Errorf("setrlimit(RLIMIT_CORE): %w", err)
	}

	return nil
}
