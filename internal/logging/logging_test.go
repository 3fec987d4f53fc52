package logging

import (
	"bytes"
	"strings"
	"testing"
)

// TestLevelFiltering は最小レベル未満のログが破棄されることをテストする
func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelWarn)

	logger.Debugf("デバッグメッセージ")
	logger.Infof("情報メッセージ")
	logger.Warnf("警告メッセージ")
	logger.Errorf("エラーメッセージ")

	output := buf.String()

	if strings.Contains(output, "デバッグメッセージ") {
		t.Error("warnレベルなのにdebugログが出力されています")
	}
	if strings.Contains(output, "情報メッセージ") {
		t.Error("warnレベルなのにinfoログが出力されています")
	}
	if !strings.Contains(output, "警告メッセージ") {
		t.Error("warnログが出力されていません")
	}
	if !strings.Contains(output, "エラーメッセージ") {
		t.Error("errorログが出力されていません")
	}
}

// TestParseLevel はレベル名の変換をテストする
func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name     string
		expected Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"notice", LevelNotice},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"unknown-level", LevelInfo}, // 不明な名前はinfoにフォールバック
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseLevel(tc.name); got != tc.expected {
				t.Errorf("レベルが一致しません: got %v, want %v", got, tc.expected)
			}
		})
	}
}

// TestFatalExitCode はFatalfが固有の終了コードで終了することをテストする
func TestFatalExitCode(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelDebug)

	// 終了処理を差し替えてコードを記録する
	var gotCode int
	originalExit := exitFunc
	exitFunc = func(code int) { gotCode = code }
	defer func() { exitFunc = originalExit }()

	logger.Fatalf(ExitSymlinkInWebRoot, "シンボリックリンクを検出しました")

	if gotCode != int(ExitSymlinkInWebRoot) {
		t.Errorf("終了コードが一致しません: got %d, want %d", gotCode, int(ExitSymlinkInWebRoot))
	}
	if !strings.Contains(buf.String(), "シンボリックリンクを検出しました") {
		t.Error("fatalログが出力されていません")
	}
}

// TestExitCodesAreDistinct は全ての終了コードが重複しないことをテストする
func TestExitCodesAreDistinct(t *testing.T) {
	codes := []Code{
		ExitOK, ExitInvalidConfig, ExitDontUseRoot,
		ExitSocketFailed, ExitBindFailed, ExitListenFailed,
		ExitSandboxFailed, ExitScanFailed, ExitSymlinkInWebRoot,
		ExitCycleInWebRoot, ExitUnusualFile, ExitCrossDevice,
		ExitDuplicateRoute, ExitFileOpenFailed, ExitFileReadMismatch,
		ExitAdminFailed,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("終了コードが重複しています: %d", code)
		}
		seen[code] = true
	}
}
