package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"
)

// 接続スコープの入出力エラー
var (
	// ErrWeirdRecvLength は受信バイト数が想定範囲に収まらなかった
	// （ハードな入出力エラーとは区別される）
	ErrWeirdRecvLength = errors.New("受信バイト数が想定範囲外です")
	// ErrPeerClosed はピアが送信完了前に接続を閉じた
	ErrPeerClosed = errors.New("ピアが接続を早期に閉じました")
)

// readBounded はmaxバイトに達するかピアが閉じるまで受信を繰り返す
// 受信合計が [min, max] に収まらない場合はErrWeirdRecvLengthを返す
// タイムアウトを含む入出力の失敗は通常のエラーとして返す
func readBounded(conn net.Conn, min, max int, timeout time.Duration) ([]byte, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("受信デッドラインの設定に失敗: %w", err)
	}

	buf := make([]byte, max)
	received := 0
	for received < max {
		n, err := conn.Read(buf[received:])
		received += n
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("受信に失敗: %w", err)
		}
	}

	if received < min {
		return nil, fmt.Errorf("%w: %dバイト (有効範囲: %d〜%d)",
			ErrWeirdRecvLength, received, min, max)
	}
	return buf[:received], nil
}

// writeAll は全バイトを送信し切るまで送信を繰り返す
// ピアの早期切断（EPIPE / ECONNRESET）は他の入出力エラーと区別して返す
func writeAll(conn net.Conn, data []byte, timeout time.Duration) error {
	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("送信デッドラインの設定に失敗: %w", err)
	}

	sent := 0
	for sent < len(data) {
		n, err := conn.Write(data[sent:])
		sent += n
		if err != nil {
			if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
				return fmt.Errorf("%w: %v", ErrPeerClosed, err)
			}
			return fmt.Errorf("送信に失敗: %w", err)
		}
	}
	return nil
}
