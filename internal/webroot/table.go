package webroot

import "fmt"

// Table はルートパス → Blob の索引
// 走査中にのみ追加され、Freeze後は読み取り専用になる
// 凍結後は複数のゴルーチンから同期なしで参照してよい
type Table struct {
	routes      map[string]*Blob
	maxRouteLen int
	frozen      bool
}

// NewTable は空のTableを作成する
// sizeHintには走査で発見済みのファイル数を渡す（0でもよい）
func NewTable(sizeHint int) *Table {
	return &Table{routes: make(map[string]*Blob, sizeHint)}
}

// Insert はルートを登録する
// 重複したルート、または凍結後の登録はエラーになる
func (t *Table) Insert(path string, blob *Blob) error {
	if t.frozen {
		return fmt.Errorf("凍結済みのテーブルには登録できません: %s", path)
	}
	if _, exists := t.routes[path]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, path)
	}

	t.routes[path] = blob
	if len(path) > t.maxRouteLen {
		t.maxRouteLen = len(path)
	}
	return nil
}

// Lookup はルートを完全一致（大文字小文字区別）で検索する
func (t *Table) Lookup(path string) (*Blob, bool) {
	blob, ok := t.routes[path]
	return blob, ok
}

// Freeze はテーブルを凍結し、以後の登録を禁止する
// 最初の接続を受け付ける前に必ず呼ぶこと
func (t *Table) Freeze() {
	t.frozen = true
}

// Len は登録済みルート数を返す
func (t *Table) Len() int {
	return len(t.routes)
}

// MaxRouteLen は登録済みルートの最長バイト数を返す
func (t *Table) MaxRouteLen() int {
	return t.maxRouteLen
}
