// Package main はhokoraサーバーコマンドの実装です
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"hokora/internal/admin"
	"hokora/internal/config"
	"hokora/internal/logging"
	"hokora/internal/security"
	"hokora/internal/server"
	"hokora/internal/webroot"
)

func main() {
	// コマンドラインオプション
	var (
		host    = flag.String("host", "", "リッスンするホスト (デフォルト: 0.0.0.0)")
		port    = flag.Int("port", 0, "リッスンするポート (デフォルト: 8080)")
		root    = flag.String("root", "", "webルートディレクトリ (デフォルト: public_html)")
		enadmin = flag.Bool("admin", false, "管理サーバーを有効にする")
		help    = flag.Bool("help", false, "ヘルプを表示")
	)

	flag.Parse()

	// ヘルプ表示
	if *help {
		fmt.Println("hokora")
		fmt.Println()
		fmt.Println("使用方法:")
		fmt.Println("  server [オプション]")
		fmt.Println()
		fmt.Println("オプション:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	log := logging.Default()

	// rootでの起動を拒否する
	if err := security.SanityCheck(); err != nil {
		log.Fatalf(logging.ExitDontUseRoot, "%v", err)
	}

	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(logging.ExitInvalidConfig, "設定の読み込みに失敗しました: %v", err)
	}

	// コマンドラインオプションで設定を上書き
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *root != "" {
		cfg.Content.Root = *root
	}
	if *enadmin {
		cfg.Admin.Enabled = true
	}
	log.SetLevel(logging.ParseLevel(cfg.LogLevel))

	log.Noticef("hokora サーバーを起動します: %s", cfg.ServerAddress())

	// webルートを走査して配信内容を全てメモリに読み込む
	table, err := webroot.Scan(cfg.Content.Root, log)
	if err != nil {
		log.Fatalf(webroot.FatalCode(err), "webルートの走査に失敗しました: %v", err)
	}

	// ソケットを確立してから権限を放棄する
	srv := server.New(cfg, table, log)
	if err := srv.Listen(); err != nil {
		log.Fatalf(server.ListenFatalCode(err), "ソケットの確立に失敗しました: %v", err)
	}
	if err := security.EnterSandbox(); err != nil {
		log.Fatalf(logging.ExitSandboxFailed, "権限の放棄に失敗しました: %v", err)
	}

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
