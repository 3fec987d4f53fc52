package webroot

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"

	"hokora/internal/logging"
)

// testLogger はテスト用の静かなLoggerを作成する
func testLogger() *logging.Logger {
	return logging.New(io.Discard, logging.LevelError)
}

// writeFile はテスト用ファイルを作成するヘルパー
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("ディレクトリの作成に失敗しました: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("ファイルの作成に失敗しました: %v", err)
	}
}

// TestScanBuildsRoutes は通常のツリーから正しいルートが構築されることをテストする
func TestScanBuildsRoutes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.html"), "<h1>top</h1>")
	writeFile(t, filepath.Join(root, "about.html"), "about page")
	writeFile(t, filepath.Join(root, "docs", "index.html"), "docs index")
	writeFile(t, filepath.Join(root, "docs", "guide.html"), "guide")
	writeFile(t, filepath.Join(root, "empty.txt"), "")

	table, err := Scan(root, testLogger())
	if err != nil {
		t.Fatalf("走査に失敗しました: %v", err)
	}

	testCases := []struct {
		route   string
		content string
	}{
		{"/", "<h1>top</h1>"},           // ルートのindex.htmlは "/" に畳み込まれる
		{"/about.html", "about page"},   // 通常ファイルは相対パスがそのままルートになる
		{"/docs/", "docs index"},        // ディレクトリのindex.htmlは末尾スラッシュ付き
		{"/docs/guide.html", "guide"},   // ネストした通常ファイル
		{"/empty.txt", ""},              // 空ファイルも配信できる
	}

	for _, tc := range testCases {
		t.Run(tc.route, func(t *testing.T) {
			blob, ok := table.Lookup(tc.route)
			if !ok {
				t.Fatalf("ルートが見つかりません: %s", tc.route)
			}
			if !bytes.Equal(blob.Data(), []byte(tc.content)) {
				t.Errorf("内容が一致しません: got %q, want %q", blob.Data(), tc.content)
			}
			if blob.Len() != len(tc.content) {
				t.Errorf("長さが一致しません: got %d, want %d", blob.Len(), len(tc.content))
			}
		})
	}

	if table.Len() != len(testCases) {
		t.Errorf("ルート数が一致しません: got %d, want %d", table.Len(), len(testCases))
	}

	want := len("/docs/guide.html")
	if table.MaxRouteLen() != want {
		t.Errorf("最長ルート長が一致しません: got %d, want %d", table.MaxRouteLen(), want)
	}
}

// TestScanExcludesDotEntries はドットファイル・ドットディレクトリが除外されることをテストする
func TestScanExcludesDotEntries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "visible.html"), "visible")
	writeFile(t, filepath.Join(root, ".hidden.html"), "hidden file")
	writeFile(t, filepath.Join(root, ".git", "config"), "repo config")
	// ドットでない祖先の下に隠れたドットエントリも除外される
	writeFile(t, filepath.Join(root, "sub", ".secret"), "secret")
	writeFile(t, filepath.Join(root, "sub", "page.html"), "page")

	table, err := Scan(root, testLogger())
	if err != nil {
		t.Fatalf("走査に失敗しました: %v", err)
	}

	for _, route := range []string{"/visible.html", "/sub/page.html"} {
		if _, ok := table.Lookup(route); !ok {
			t.Errorf("ルートが見つかりません: %s", route)
		}
	}

	excluded := []string{"/.hidden.html", "/.git/config", "/sub/.secret"}
	for _, route := range excluded {
		if _, ok := table.Lookup(route); ok {
			t.Errorf("ドットエントリのルートが生成されています: %s", route)
		}
	}

	if table.Len() != 2 {
		t.Errorf("ルート数が一致しません: got %d, want 2", table.Len())
	}
}

// TestScanRejectsSymlink はシンボリックリンクで走査全体が失敗することをテストする
func TestScanRejectsSymlink(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real.html"), "real")
	if err := os.Symlink(
		filepath.Join(root, "real.html"),
		filepath.Join(root, "link.html"),
	); err != nil {
		t.Fatalf("シンボリックリンクの作成に失敗しました: %v", err)
	}

	table, err := Scan(root, testLogger())
	if !errors.Is(err, ErrSymlink) {
		t.Errorf("シンボリックリンクエラーが期待されましたが: %v", err)
	}
	if table != nil {
		t.Error("失敗した走査が部分的なテーブルを返しました")
	}
}

// TestScanRejectsDotSymlink はドットという名前のシンボリックリンクも
// 除外されずに走査全体を失敗させることをテストする
func TestScanRejectsDotSymlink(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "page.html"), "page")
	if err := os.Symlink("/etc", filepath.Join(root, ".link")); err != nil {
		t.Fatalf("シンボリックリンクの作成に失敗しました: %v", err)
	}

	table, err := Scan(root, testLogger())
	if !errors.Is(err, ErrSymlink) {
		t.Errorf("シンボリックリンクエラーが期待されましたが: %v", err)
	}
	if table != nil {
		t.Error("失敗した走査が部分的なテーブルを返しました")
	}
}

// TestScanRejectsDotFifo はドットという名前の特殊ファイルも致命的であることをテストする
func TestScanRejectsDotFifo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "page.html"), "page")

	if err := unix.Mkfifo(filepath.Join(root, ".pipe"), 0o644); err != nil {
		t.Skipf("FIFOを作成できない環境のためスキップします: %v", err)
	}

	if _, err := Scan(root, testLogger()); !errors.Is(err, ErrUnusualFile) {
		t.Errorf("特殊ファイルエラーが期待されましたが: %v", err)
	}
}

// TestScanRejectsSymlinkRoot はルート自身がシンボリックリンクの場合に失敗することをテストする
func TestScanRejectsSymlinkRoot(t *testing.T) {
	base := t.TempDir()
	realRoot := filepath.Join(base, "real")
	writeFile(t, filepath.Join(realRoot, "page.html"), "page")

	linkRoot := filepath.Join(base, "link")
	if err := os.Symlink(realRoot, linkRoot); err != nil {
		t.Fatalf("シンボリックリンクの作成に失敗しました: %v", err)
	}

	if _, err := Scan(linkRoot, testLogger()); !errors.Is(err, ErrSymlink) {
		t.Errorf("シンボリックリンクエラーが期待されましたが: %v", err)
	}
}

// TestScanRejectsUnusualFile はFIFOなどの特殊ファイルで失敗することをテストする
func TestScanRejectsUnusualFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "page.html"), "page")

	if err := unix.Mkfifo(filepath.Join(root, "pipe"), 0o644); err != nil {
		t.Skipf("FIFOを作成できない環境のためスキップします: %v", err)
	}

	table, err := Scan(root, testLogger())
	if !errors.Is(err, ErrUnusualFile) {
		t.Errorf("特殊ファイルエラーが期待されましたが: %v", err)
	}
	if table != nil {
		t.Error("失敗した走査が部分的なテーブルを返しました")
	}
}

// TestScanRejectsMissingRoot は存在しないルートで失敗することをテストする
func TestScanRejectsMissingRoot(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "no-such-dir"), testLogger()); err == nil {
		t.Error("存在しないルートでエラーが発生しませんでした")
	}
}

// TestScanRejectsFileRoot はルートがディレクトリでない場合に失敗することをテストする
func TestScanRejectsFileRoot(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "file.html")
	writeFile(t, path, "not a directory")

	if _, err := Scan(path, testLogger()); !errors.Is(err, ErrUnusualFile) {
		t.Errorf("特殊ファイルエラーが期待されましたが: %v", err)
	}
}

// TestFatalCode は走査エラーと終了コードの対応をテストする
func TestFatalCode(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		code logging.Code
	}{
		{"シンボリックリンク", ErrSymlink, logging.ExitSymlinkInWebRoot},
		{"循環", ErrCycle, logging.ExitCycleInWebRoot},
		{"特殊ファイル", ErrUnusualFile, logging.ExitUnusualFile},
		{"デバイスまたぎ", ErrCrossDevice, logging.ExitCrossDevice},
		{"重複ルート", ErrDuplicateRoute, logging.ExitDuplicateRoute},
		{"オープン失敗", ErrFileOpen, logging.ExitFileOpenFailed},
		{"読み込みサイズ不一致", ErrReadMismatch, logging.ExitFileReadMismatch},
		{"その他", errors.New("なにか"), logging.ExitScanFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FatalCode(tc.err); got != tc.code {
				t.Errorf("終了コードが一致しません: got %d, want %d", got, tc.code)
			}
		})
	}
}
