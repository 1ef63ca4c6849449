package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/palemoky/paint-n-pass/internal/config"
	"github.com/palemoky/paint-n-pass/internal/game/state"
	"github.com/palemoky/paint-n-pass/internal/logger"
	"github.com/palemoky/paint-n-pass/internal/session"
	"github.com/palemoky/paint-n-pass/internal/sound"
	"github.com/palemoky/paint-n-pass/internal/ui"
)

var (
	configFile string
	serverAddr string
	soundDir   string
	noSound    bool
)

var rootCmd = &cobra.Command{
	Use:   "paint-n-pass",
	Short: "Paint-n-Pass 终端客户端",
	Long:  `两人轮流作画：每回合墨水有限，用完自动交给对方。`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		// 界面占用 stdout，日志只写文件
		if err := logger.InitFile("client", cfg.Log.File, cfg.Log.Level); err != nil {
			return fmt.Errorf("初始化日志失败: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "单机模式，两人轮流使用同一终端",
	RunE: func(cmd *cobra.Command, args []string) error {
		return play(state.LocalGameID, state.Player1, false)
	},
}

var hostCmd = &cobra.Command{
	Use:   "host [GAME_ID]",
	Short: "创建对局并作为 Player 1 加入",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gameID := state.NewGameID()
		if len(args) == 1 {
			gameID = strings.ToUpper(args[0])
		}
		if !state.IsShareableID(gameID) {
			return fmt.Errorf("无效的对局 ID %q，应为 6 位大写字母或数字", gameID)
		}
		fmt.Printf("对局 ID: %s（把它发给对方，对方运行 `paint-n-pass join %s`）\n", gameID, gameID)
		return play(gameID, state.Player1, true)
	},
}

var joinCmd = &cobra.Command{
	Use:   "join GAME_ID",
	Short: "作为 Player 2 加入对局",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gameID := strings.ToUpper(args[0])
		if !state.IsShareableID(gameID) {
			return fmt.Errorf("无效的对局 ID %q，应为 6 位大写字母或数字", gameID)
		}
		return play(gameID, state.Player2, true)
	},
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Default()
	}
	return cfg
}

func play(gameID string, player state.Player, multiplayer bool) error {
	cfg := loadConfig()
	opts := session.Options{
		GameID:       gameID,
		Width:        cfg.Game.CanvasWidth,
		Height:       cfg.Game.CanvasHeight,
		Player:       player,
		AutoEndDelay: cfg.Game.AutoEndDelay(),
	}

	var (
		ctrl *session.Controller
		err  error
	)
	if multiplayer {
		serverURL := fmt.Sprintf("ws://%s/ws", serverAddr)
		ctrl, err = session.Dial(serverURL, opts)
		if err != nil {
			return fmt.Errorf("连接服务器失败: %w", err)
		}
	} else {
		ctrl = session.New(opts)
		if err := ctrl.Start(); err != nil {
			return err
		}
	}
	defer ctrl.Close()

	var sounder ui.Sounder
	if !noSound {
		sm := sound.NewSoundManager(soundDir)
		if err := sm.Init(); err != nil {
			logger.Warn("音效不可用: %v", err)
		}
		defer sm.Close()
		sounder = sm
	}

	logger.Info("开始对局 %s，座位 %d", gameID, player)
	return ui.Run(ctrl, sounder)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "configs/config.yaml", "配置文件路径")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:3001", "服务器地址")
	rootCmd.PersistentFlags().StringVar(&soundDir, "sound-dir", "", "自定义音效目录")
	rootCmd.PersistentFlags().BoolVar(&noSound, "no-sound", false, "关闭音效")
	rootCmd.AddCommand(localCmd, hostCmd, joinCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
