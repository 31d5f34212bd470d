// Package main 提供 smartnode 命令行入口
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	smartnode "github.com/dep2p/go-smartnode"
	"github.com/dep2p/go-smartnode/pkg/lib/log"
)

var logger = log.Logger("smartnode/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//	命令行参数：运行时覆盖（「这次运行」想怎么跑）
//	配置文件：节点、协议与链路参数（JSON 或 YAML）
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile  = flag.String("config", "", "配置文件路径（.json / .yaml）")
	preset      = flag.String("preset", "", "预设配置 (simulation/network)")
	protocolDir = flag.String("protocols", "", "协议定义目录（覆盖配置文件）")
	preload     = flag.String("preload", "", "启动时加载的协议，逗号分隔")
	metricsAddr = flag.String("metrics", "", "Prometheus 指标监听地址，例如 :9100")
	fxLog       = flag.Bool("fx-log", false, "输出 fx 生命周期日志")
	listOnly    = flag.Bool("list-protocols", false, "加载协议后打印消息定义并退出")
	logFile     = flag.String("log", "", "日志文件路径（默认 stderr）")
	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(smartnode.VersionInfo())
		return nil
	}

	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("打开日志文件失败: %w", err)
		}
		defer func() { _ = f.Close() }()
		log.SetOutput(f)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts, err := buildOptions(reg)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	rt, err := smartnode.New(opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("启动 smartnode", "version", smartnode.Version, "commit", smartnode.GitCommit)
	if err := rt.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	if *listOnly {
		printProtocols(rt)
		return nil
	}

	if *metricsAddr != "" {
		srv := serveMetrics(*metricsAddr, reg)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	printNodes(rt)
	fmt.Println("运行中，按 Ctrl+C 退出")
	waitForSignal()

	fmt.Println("\n正在关闭...")
	return nil
}

// buildOptions 构建运行时选项
//
// 配置优先级（从高到低）：命令行参数 > 配置文件 > 默认值
func buildOptions(reg prometheus.Registerer) ([]smartnode.Option, error) {
	opts := []smartnode.Option{
		smartnode.WithRegisterer(reg),
		smartnode.WithFxLogging(*fxLog),
		smartnode.WithHandler(LogHandlerName, logHandler),
	}
	if *configFile != "" {
		opts = append(opts, smartnode.WithConfigFile(*configFile))
	}
	if *preset != "" {
		opts = append(opts, smartnode.WithPreset(*preset))
	}
	if *protocolDir != "" {
		opts = append(opts, smartnode.WithProtocolDir(*protocolDir))
	}
	if ids := splitList(*preload); len(ids) > 0 {
		opts = append(opts, smartnode.WithPreload(ids...))
	}
	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// serveMetrics 在后台提供 /metrics
func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("指标服务失败", "addr", addr, "err", err)
		}
	}()
	logger.Info("指标服务已启动", "addr", addr)
	return srv
}

// printNodes 以表格打印节点
func printNodes(rt *smartnode.Runtime) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tPROTOCOL\tADDRESS\tPEERS\tCONNECTED")
	for _, n := range rt.Manager().ListNodes() {
		addr := n.Address
		if addr == "" {
			addr = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", n.ID, n.Protocol, addr, n.Peers, n.Connected)
	}
	_ = w.Flush()
}

// printProtocols 打印已加载协议的消息定义
func printProtocols(rt *smartnode.Runtime) {
	for _, id := range rt.Protocols().List() {
		def, err := rt.Protocols().Get(id)
		if err != nil {
			continue
		}
		fmt.Printf("%s (%d messages)\n", id, def.Len())
		desc := def.Describe()
		for _, name := range def.MessageNames() {
			fmt.Printf("  %s %s\n", name, desc[name])
		}
	}
}

// waitForSignal 等待退出信号
func waitForSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
}
