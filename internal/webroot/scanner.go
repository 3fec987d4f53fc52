package webroot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"hokora/internal/logging"
)

// 走査の安全性違反を表すエラー
// いずれもプロセス全体を終了させるべき回復不能なエラーとして扱う
var (
	ErrSymlink        = errors.New("webルート内にシンボリックリンクがあります")
	ErrCycle          = errors.New("webルート内にファイルシステムの循環があります")
	ErrUnusualFile    = errors.New("webルート内に通常ファイル・ディレクトリ以外のエントリがあります")
	ErrCrossDevice    = errors.New("webルートが複数のデバイスにまたがっています")
	ErrDuplicateRoute = errors.New("ルートが重複しています")
	ErrFileOpen       = errors.New("ファイルを開けません")
	ErrReadMismatch   = errors.New("ファイルの読み込みサイズが一致しません")
)

// ディレクトリのindex.htmlをディレクトリ自身のルートに畳み込むための接尾辞
const indexSuffix = "/index.html"

// FatalCode は走査エラーに対応するプロセス終了コードを返す
func FatalCode(err error) logging.Code {
	switch {
	case errors.Is(err, ErrSymlink):
		return logging.ExitSymlinkInWebRoot
	case errors.Is(err, ErrCycle):
		return logging.ExitCycleInWebRoot
	case errors.Is(err, ErrUnusualFile):
		return logging.ExitUnusualFile
	case errors.Is(err, ErrCrossDevice):
		return logging.ExitCrossDevice
	case errors.Is(err, ErrDuplicateRoute):
		return logging.ExitDuplicateRoute
	case errors.Is(err, ErrFileOpen):
		return logging.ExitFileOpenFailed
	case errors.Is(err, ErrReadMismatch):
		return logging.ExitFileReadMismatch
	default:
		return logging.ExitScanFailed
	}
}

// dirIdentity はディレクトリの同一性（循環検出用）
type dirIdentity struct {
	dev uint64
	ino uint64
}

// scanner は一回限りの走査の状態を保持する
type scanner struct {
	table   *Table
	log     *logging.Logger
	rootDev uint64
	visited map[dirIdentity]bool
}

// Scan はWebルートを一度だけ走査し、凍結済みのTableを構築する
//
// シンボリックリンクは辿らない物理走査で、ルートと同じデバイス上の
// 通常ファイルとディレクトリだけを受け付ける。ドットファイル・
// ドットディレクトリは配下ごと静かに除外される。
// それ以外の安全性違反を検出した場合はエラーを返し、部分的なテーブルは
// 決して返さない。
func Scan(root string, log *logging.Logger) (*Table, error) {
	var st unix.Stat_t
	if err := unix.Lstat(root, &st); err != nil {
		return nil, fmt.Errorf("webルートの確認に失敗: %s: %w", root, err)
	}

	switch st.Mode & unix.S_IFMT {
	case unix.S_IFLNK:
		return nil, fmt.Errorf("%w: %s", ErrSymlink, root)
	case unix.S_IFDIR:
		// OK
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnusualFile, root)
	}

	s := &scanner{
		table:   NewTable(0),
		log:     log,
		rootDev: uint64(st.Dev),
		visited: map[dirIdentity]bool{{dev: uint64(st.Dev), ino: st.Ino}: true},
	}

	if err := s.walkDir(root, ""); err != nil {
		return nil, err
	}

	s.table.Freeze()
	log.Infof("webルートの走査が完了: %dルート, 最長ルート長 %dバイト",
		s.table.Len(), s.table.MaxRouteLen())
	return s.table, nil
}

// walkDir は1つのディレクトリを深さ優先で処理する
// routePrefixはこのディレクトリに対応するルートの接頭辞（ルートディレクトリは空文字列）
func (s *scanner) walkDir(dir, routePrefix string) error {
	s.log.Debugf("ディレクトリを走査中: %s", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("ディレクトリを読めません: %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)

		// 種別の判定はドットエントリの除外より先に行う
		// ドットという名前のシンボリックリンクや特殊ファイルも致命的にするため
		var st unix.Stat_t
		if err := unix.Lstat(path, &st); err != nil {
			return fmt.Errorf("エントリの確認に失敗: %s: %w", path, err)
		}

		switch st.Mode & unix.S_IFMT {
		case unix.S_IFLNK:
			return fmt.Errorf("%w: %s", ErrSymlink, path)

		case unix.S_IFDIR:
			// ドットディレクトリは配下ごと除外
			if strings.HasPrefix(name, ".") {
				s.log.Debugf("ドットディレクトリを除外: %s", path)
				continue
			}
			if uint64(st.Dev) != s.rootDev {
				return fmt.Errorf("%w: %s", ErrCrossDevice, path)
			}
			id := dirIdentity{dev: uint64(st.Dev), ino: st.Ino}
			if s.visited[id] {
				return fmt.Errorf("%w: %s", ErrCycle, path)
			}
			s.visited[id] = true
			if err := s.walkDir(path, routePrefix+"/"+name); err != nil {
				return err
			}

		case unix.S_IFREG:
			// ドットファイルは除外
			if strings.HasPrefix(name, ".") {
				s.log.Debugf("ドットファイルを除外: %s", path)
				continue
			}
			if err := s.addFile(path, routePrefix+"/"+name, st.Size); err != nil {
				return err
			}

		default:
			return fmt.Errorf("%w: %s", ErrUnusualFile, path)
		}
	}

	return nil
}

// addFile は1つの通常ファイルを読み込んでテーブルに登録する
func (s *scanner) addFile(path, route string, size int64) error {
	// index.htmlはディレクトリ自身のルートに畳み込む
	// 末尾のスラッシュは残す（ルートディレクトリ直下なら "/" になる）
	if strings.HasSuffix(route, indexSuffix) {
		route = route[:len(route)-len("index.html")]
	}

	s.log.Debugf("ルートを登録: %s -> %s", route, path)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFileOpen, path, err)
	}
	defer f.Close()

	// 走査時のメタデータで観測したサイズちょうどを読み切る
	// サイズが一致しない場合は、走査と読み込みの間にファイルが変更された
	// 可能性があるため、中途半端な内容を配信するより走査全体を失敗させる
	blob := NewBlob(size)
	if n, err := io.ReadFull(f, blob.Data()); err != nil {
		return fmt.Errorf("%w: %s: 期待 %dバイト, 実際 %dバイト (%v)",
			ErrReadMismatch, path, size, n, err)
	}

	if err := s.table.Insert(route, blob); err != nil {
		return err
	}
	return nil
}
