package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talentscout-go/internal/api/handler"
	"talentscout-go/internal/api/router"
	"talentscout-go/internal/config"
	"talentscout-go/internal/generator"
	appCoreLogger "talentscout-go/internal/logger"
	"talentscout-go/internal/notify"
	"talentscout-go/internal/storage"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

var (
	version     = "1.0.0"          //nolint:gochecknoglobals
	serviceName = "talentscout-go" //nolint:gochecknoglobals
)

func main() {
	// 先加载.env（如果存在），机密通过环境变量注入
	_ = godotenv.Load()

	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}

	initLogger(cfg)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	glog.Info("存储服务初始化成功")

	// 初始化Ollama聊天模型与问题生成器
	ollamaModel := generator.NewOllamaChatModel(
		cfg.Ollama.BaseURL,
		cfg.Ollama.Model,
		generator.WithTemperature(cfg.Ollama.Temperature),
		generator.WithMaxTokens(cfg.Ollama.MaxTokens),
		generator.WithTimeout(time.Duration(cfg.Ollama.TimeoutSeconds)*time.Second),
	)
	questionGenerator := generator.NewQuestionGenerator(ollamaModel)
	glog.Info("面试题生成器初始化成功")

	// 邮件通知（未配置时自动关闭）
	notifier := notify.NewNotifier(cfg.Email)
	if notifier.Enabled() {
		glog.Info("提交确认邮件通知已开启")
	} else {
		glog.Info("SMTP未配置，提交确认邮件通知关闭")
	}

	candidateHandler := handler.NewCandidateHandler(cfg, storageManager, questionGenerator, notifier)
	glog.Info("CandidateHandler初始化成功")

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, candidateHandler)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)

	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 初始化zerolog并把Hertz的日志桥接过去
func initLogger(cfg *config.Config) {
	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	appCoreLogger.Logger = appCoreLogger.Logger.With().
		Str("app", serviceName).
		Str("version", version).
		Logger()

	// 让Hertz框架日志走同一个zerolog实例
	glog.SetLogger(hertzadapter.From(appCoreLogger.Logger))
}
