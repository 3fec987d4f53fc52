package server

import (
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"hokora/internal/logging"
)

// listenError はソケット確立のどの段階で失敗したかを終了コード付きで保持する
type listenError struct {
	code logging.Code
	op   string
	err  error
}

func (e *listenError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *listenError) Unwrap() error {
	return e.err
}

// ListenFatalCode はソケット確立エラーに対応するプロセス終了コードを返す
func ListenFatalCode(err error) logging.Code {
	var le *listenError
	if errors.As(err, &le) {
		return le.code
	}
	return logging.ExitSocketFailed
}

// listen は設定されたバックログ長を正確に反映した配信ソケットを確立する
// net.Listenはバックログ長を指定できないため、socket/bind/listenを
// 明示的に呼んでからnet.Listenerに包み直す
func listen(host string, port, backlog int) (net.Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, &listenError{code: logging.ExitSocketFailed, op: "socket()", err: err}
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, &listenError{code: logging.ExitSocketFailed, op: "setsockopt()", err: err}
	}

	sa := &unix.SockaddrInet4{Port: port}
	if host != "" && host != "0.0.0.0" {
		// ホスト名も受け付けるが、IPv4アドレスに解決できなければ
		// 暗黙にINADDR_ANYへ落とさずバインド失敗として扱う
		addr, err := net.ResolveIPAddr("ip4", host)
		if err != nil {
			_ = unix.Close(fd)
			return nil, &listenError{code: logging.ExitBindFailed, op: "resolve " + host, err: err}
		}
		copy(sa.Addr[:], addr.IP.To4())
	}

	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, &listenError{code: logging.ExitBindFailed, op: "bind()", err: err}
	}

	if err := unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return nil, &listenError{code: logging.ExitListenFailed, op: "listen()", err: err}
	}

	f := os.NewFile(uintptr(fd), "listener")
	defer f.Close()

	l, err := net.FileListener(f)
	if err != nil {
		return nil, &listenError{code: logging.ExitListenFailed, op: "net.FileListener", err: err}
	}
	return l, nil
}
