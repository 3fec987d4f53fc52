package server

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"hokora/internal/config"
	"hokora/internal/logging"
	"hokora/internal/webroot"
)

// シャットダウン時に処理中のワーカーを待つ上限
const drainTimeout = 5 * time.Second

// Server は配信ソケットと接続ワーカーを管理する構造体
type Server struct {
	config   *config.Config
	table    *webroot.Table
	log      *logging.Logger
	listener net.Listener
	wg       sync.WaitGroup
}

// New は新しいServerインスタンスを作成する
// tableは凍結済みであること
func New(cfg *config.Config, table *webroot.Table, log *logging.Logger) *Server {
	return &Server{
		config: cfg,
		table:  table,
		log:    log,
	}
}

// Listen は設定されたバックログ長で配信ソケットを確立する
// 権限の放棄より前に呼ぶこと
func (s *Server) Listen() error {
	l, err := listen(s.config.Server.Host, s.config.Server.Port, s.config.Server.Backlog)
	if err != nil {
		return err
	}
	s.listener = l
	s.log.Infof("リッスン開始: %s", l.Addr())
	return nil
}

// Addr は確立済みのリッスンアドレスを返す
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve は接続の受け付けを開始し、コンテキストのキャンセルか
// SIGINT / SIGTERM を受けるまで処理を続ける
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	acceptDone := make(chan struct{})
	go s.acceptLoop(acceptDone)

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		s.log.Noticef("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		s.log.Noticef("シグナルを受信しました: %v", sig)
	case <-acceptDone:
		s.log.Noticef("リスナーが閉じられました")
	}

	return s.Shutdown()
}

// acceptLoop は単一の受け付けループ
// acceptの失敗はログに残してループを続け、リスナーが閉じられた時だけ終了する
func (s *Server) acceptLoop(done chan struct{}) {
	defer close(done)

	for {
		s.log.Debugf("次の接続を待っています")

		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Errorf("accept(): %v", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection は1接続分のワーカー
// 接続スコープの失敗を分類する唯一の境界で、どんな失敗も
// リスナーや他の接続には波及させない
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		// 送信方向を先に閉じて応答のFINを確実に届けてから解放する
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.CloseWrite()
		}
		_ = conn.Close()
	}()

	connID := uuid.NewString()[:8]

	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("[%s] ワーカーがパニックしました: %v", connID, r)
		}
	}()

	s.log.Infof("[%s] 新しいクライアント: %s", connID, conn.RemoteAddr())

	err := s.serveConn(connID, conn)
	switch {
	case err == nil:
		// 正常終了
	case errors.Is(err, ErrNotFoundRouteMissing):
		s.log.Errorf("[%s] 設定された404ルート %s がwebルートに存在しません。設定を確認してください",
			connID, s.config.Content.NotFoundRoute)
	case errors.Is(err, ErrNonGetRequest),
		errors.Is(err, ErrWeirdRequestPath),
		errors.Is(err, ErrWeirdRecvLength):
		s.log.Warnf("[%s] 不正なリクエスト: %v", connID, err)
	case errors.Is(err, ErrPeerClosed):
		s.log.Warnf("[%s] %v", connID, err)
	default:
		s.log.Errorf("[%s] 接続の処理に失敗: %v", connID, err)
	}
}

// Shutdown はリスナーを閉じ、処理中のワーカーの完了を待つ
func (s *Server) Shutdown() error {
	s.log.Noticef("サーバーをシャットダウンしています...")

	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.log.Errorf("リスナーのクローズに失敗: %v", err)
		}
	}

	// 処理中のワーカーの完了を待つ
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Noticef("サーバーが正常にシャットダウンされました")
	case <-time.After(drainTimeout):
		s.log.Warnf("ワーカーの完了待ちがタイムアウトしました")
	}

	return nil
}
