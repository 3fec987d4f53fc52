package logging

// Code はプロセスの終了コード
// 致命的な状態ごとに固有のコードを割り当て、終了コードだけで原因を特定できるようにする
type Code int

const (
	// ExitOK は正常終了
	ExitOK Code = iota
	// ExitInvalidConfig は設定値が不正だった
	ExitInvalidConfig
	// ExitDontUseRoot はrootユーザーで起動しようとした
	ExitDontUseRoot
	// ExitSocketFailed はソケットの作成に失敗した
	ExitSocketFailed
	// ExitBindFailed はソケットのバインドに失敗した
	ExitBindFailed
	// ExitListenFailed はソケットのリッスン開始に失敗した
	ExitListenFailed
	// ExitSandboxFailed は権限の放棄に失敗した
	ExitSandboxFailed
	// ExitScanFailed はWebルートの走査自体に失敗した
	ExitScanFailed
	// ExitSymlinkInWebRoot はWebルート内にシンボリックリンクがあった
	ExitSymlinkInWebRoot
	// ExitCycleInWebRoot はWebルート内にファイルシステムの循環があった
	ExitCycleInWebRoot
	// ExitUnusualFile はWebルート内に通常ファイル・ディレクトリ以外のエントリがあった
	ExitUnusualFile
	// ExitCrossDevice はWebルートが複数デバイスにまたがっていた
	ExitCrossDevice
	// ExitDuplicateRoute は同じルートが二重に登録された
	ExitDuplicateRoute
	// ExitFileOpenFailed は配信対象ファイルを開けなかった
	ExitFileOpenFailed
	// ExitFileReadMismatch はファイルの読み込みサイズが一致しなかった
	ExitFileReadMismatch
	// ExitAdminFailed は管理サーバーの起動に失敗した
	ExitAdminFailed
)
