package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/palemoky/paint-n-pass/internal/config"
	"github.com/palemoky/paint-n-pass/internal/logger"
	"github.com/palemoky/paint-n-pass/internal/server"
	"github.com/palemoky/paint-n-pass/internal/storage"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "paint-n-pass-server",
	Short: "Paint-n-Pass 中继服务器",
	Long:  `Paint-n-Pass 中继服务器：WebSocket 房间转发、对局快照持久化与 /games HTTP 接口`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置
		cfg, err := config.Load(configFile)
		if err != nil {
			cfg = config.Default()
			logger.Init("server", cfg.Log.Level)
			logger.Warn("加载配置文件失败，使用默认配置: %v", err)
		} else {
			logger.Init("server", cfg.Log.Level)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := storage.Open(ctx, cfg.Storage)
		cancel()
		if err != nil {
			return fmt.Errorf("打开存储失败: %w", err)
		}
		logger.Info("存储后端: %s", cfg.Storage.Driver)

		srv := server.NewServer(cfg, store)

		// 优雅关闭
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		done := make(chan error, 1)

		go func() {
			<-quit
			logger.Info("正在关闭服务器...")
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			done <- srv.Shutdown(ctx)
		}()

		logger.Info("🎨 Paint-n-Pass 服务器启动中...")
		if err := srv.Start(); err != nil {
			return fmt.Errorf("服务器启动失败: %w", err)
		}
		return <-done
	},
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "configs/config.yaml", "配置文件路径")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
