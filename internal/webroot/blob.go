package webroot

// Blob は1つのファイルの内容を保持する固定長バッファ
// 作成時にゼロ初期化され、ファイル内容で一度だけ埋められる
// Tableに登録された後は不変として扱うこと
type Blob struct {
	data []byte
}

// NewBlob は指定サイズのゼロ初期化済みBlobを作成する
func NewBlob(size int64) *Blob {
	return &Blob{data: make([]byte, size)}
}

// Len はデータのバイト数を返す。Blobがnilの場合は0を返す
func (b *Blob) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Data はデータへの参照を返す。Blobがnilの場合はnilを返す
// 呼び出し側は内容を変更してはならない
func (b *Blob) Data() []byte {
	if b == nil {
		return nil
	}
	return b.data
}
