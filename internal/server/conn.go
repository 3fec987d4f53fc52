package server

import (
	"bytes"
	"errors"
	"fmt"
	"net"
)

const (
	// 受信バッファの固定オーバーヘッド: "GET " の4バイト + 区切り文字1バイト
	requestOverhead = 5
	// 意味のある最小のリクエスト "GET /"
	minRequestSize = 5

	statusOK       = "200 OK"
	statusNotFound = "404 NOT FOUND"

	// 404ルートすら見つからない場合に返す固定応答
	fallbackResponse = "HTTP/1.1 404 NOT FOUND\r\nContent-Length: 13\r\n\r\n404 NOT FOUND"
)

// 接続スコープのプロトコルエラー
var (
	// ErrNonGetRequest はリクエストがリテラル "GET " で始まらなかった
	ErrNonGetRequest = errors.New("GET以外のリクエストを受信しました")
	// ErrWeirdRequestPath はパスが空、または / で始まらなかった
	ErrWeirdRequestPath = errors.New("不正なリクエストパスです")
	// ErrNotFoundRouteMissing は設定された404ルート自体がテーブルに存在しない
	// 設定ミスとして明確にログに残すべき状態
	ErrNotFoundRouteMissing = errors.New("設定された404ルートが登録されていません")
)

// serveConn は1つの接続の全ライフサイクルを処理する
// 受信 → 解析 → 検索 → 応答 の順に進み、どの段階の失敗も
// この接続だけを打ち切るエラーとして呼び出し側に返す
func (s *Server) serveConn(connID string, conn net.Conn) error {
	// 受信上限は最長ルート長から決まる。それ以上の長さのパスは
	// どのみち一致しようがない
	maxSize := s.table.MaxRouteLen() + requestOverhead
	recvTimeout := s.config.Server.RecvTimeout
	sendTimeout := s.config.Server.SendTimeout

	buf, err := readBounded(conn, minRequestSize, maxSize, recvTimeout)
	if err != nil {
		return fmt.Errorf("リクエストの受信: %w", err)
	}

	// 解析はリテラル照合のみ。ヘッダは一切読まない
	if !bytes.HasPrefix(buf, []byte("GET ")) {
		return ErrNonGetRequest
	}

	path := requestToken(buf[len("GET "):])
	if len(path) == 0 || path[0] != '/' {
		return ErrWeirdRequestPath
	}

	status := statusOK
	blob, ok := s.table.Lookup(string(path))
	if !ok {
		s.log.Infof("[%s] NOT FOUND: %s", connID, path)
		status = statusNotFound
		blob, ok = s.table.Lookup(s.config.Content.NotFoundRoute)
		if !ok {
			// 404ルートも無い。固定の最小応答だけ返してこの接続を打ち切る
			_ = writeAll(conn, []byte(fallbackResponse), sendTimeout)
			return ErrNotFoundRouteMissing
		}
	}

	s.log.Infof("[%s] GET %s -> %s", connID, path, status)

	header := fmt.Sprintf("HTTP/1.1 %s\r\nContent-Length: %d\r\n\r\n", status, blob.Len())
	if err := writeAll(conn, []byte(header), sendTimeout); err != nil {
		return fmt.Errorf("ヘッダの送信: %w", err)
	}
	// 本文はBlobから借用したまま送る（コピーしない）
	if err := writeAll(conn, blob.Data(), sendTimeout); err != nil {
		return fmt.Errorf("本文の送信: %w", err)
	}
	return nil
}

// requestToken は空白・制御文字の手前までをトークンとして切り出す
func requestToken(buf []byte) []byte {
	for i, c := range buf {
		if c <= ' ' || c == 0x7f {
			return buf[:i]
		}
	}
	return buf
}
