package main

import (
	"context"

	"hokora/internal/admin"
	"hokora/internal/config"
	"hokora/internal/logging"
	"hokora/internal/security"
	"hokora/internal/server"
	"hokora/internal/webroot"
)

func main() {
	log := logging.Default()

	// rootでの起動を拒否する
	if err := security.SanityCheck(); err != nil {
		log.Fatalf(logging.ExitDontUseRoot, "%v", err)
	}

	log.Noticef("hokora を起動します")

	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(logging.ExitInvalidConfig, "設定の読み込みに失敗しました: %v", err)
	}
	log.SetLevel(logging.ParseLevel(cfg.LogLevel))

	log.Infof("リッスンアドレス (SERVER_HOST / SERVER_PORT): %s", cfg.ServerAddress())
	log.Infof("バックログ長 (LISTEN_BACKLOG): %d", cfg.Server.Backlog)
	log.Infof("受信タイムアウト (RECV_TIMEOUT): %v", cfg.Server.RecvTimeout)
	log.Infof("送信タイムアウト (SEND_TIMEOUT): %v", cfg.Server.SendTimeout)
	log.Infof("webルート (WEB_ROOT): %s", cfg.Content.Root)
	log.Infof("404ルート (NOTFOUND_ROUTE): %s", cfg.Content.NotFoundRoute)

	// webルートを走査して配信内容を全てメモリに読み込む
	table, err := webroot.Scan(cfg.Content.Root, log)
	if err != nil {
		log.Fatalf(webroot.FatalCode(err), "webルートの走査に失敗しました: %v", err)
	}

	// サーバーを作成してソケットを確立する
	srv := server.New(cfg, table, log)
	if err := srv.Listen(); err != nil {
		log.Fatalf(server.ListenFatalCode(err), "ソケットの確立に失敗しました: %v", err)
	}

	// ソケット確立後・最初のaccept前に権限を放棄する
	if err := security.EnterSandbox(); err != nil {
		log.Fatalf(logging.ExitSandboxFailed, "権限の放棄に失敗しました: %v", err)
	}
	log.Infof("権限を放棄しました")

	// 管理サーバー（有効な場合のみ）
	if cfg.Admin.Enabled {
		adm := admin.New(cfg, table)
		go func() {
			if err := adm.Run(); err != nil {
				log.Fatalf(logging.ExitAdminFailed, "管理サーバーの起動に失敗しました: %v", err)
			}
		}()
		log.Infof("管理サーバー: %s", cfg.AdminAddress())
	}

	// 接続の受け付けを開始する
	if err := srv.Serve(context.Background()); err != nil {
		log.Fatalf(logging.ExitListenFailed, "サーバーの実行に失敗しました: %v", err)
	}
}
