package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	app "github.com/gocrud/hello"
	"github.com/gocrud/hello/config"
	"github.com/gocrud/hello/core"
)

const (
	appName  = "hello"
	appShort = "hello 是一个对所有请求返回 Hello World! 的 Web 服务"
	appLong  = `hello 对任意方法、任意路径的请求返回 Hello World!，
	并把每个请求的路径和时间写入日志文件。

	配置按以下顺序加载，后者覆盖前者：
	- appsettings.yaml / appsettings.json（可选）
	- --config 指定的文件
	- 前缀为 HELLO_ 的环境变量，例如 HELLO_LOG_PATH
	- --etcd-endpoints 指定的 etcd 前缀
	- 命令行参数`
	appExample = `# 在 8080 端口启动，日志写入 ./logger.txt
	hello

	# 指定端口和日志文件
	hello --port 9000 --log-file /var/log/hello.txt`

	envPrefix = "HELLO_"

	versionCmdName = "version"
	versionShort   = "显示 hello 的版本"
)

// rootFlags 命令行参数
type rootFlags struct {
	configPath    string
	port          int
	logFile       string
	logLevel      string
	etcdEndpoints []string
	etcdPrefix    string
}

// addFlags 注册命令行参数
func (f *rootFlags) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "配置文件路径（.yaml、.yml 或 .json）")
	flags.IntVarP(&f.port, "port", "p", 8080, "监听端口")
	flags.StringVar(&f.logFile, "log-file", "logger.txt", "请求日志文件，相对路径基于当前工作目录")
	flags.StringVarP(&f.logLevel, "log-level", "v", "info", "最低日志级别（trace、debug、info、warn、error、fatal）")
	flags.StringSliceVar(&f.etcdEndpoints, "etcd-endpoints", nil, "etcd 地址列表，设置后从 etcd 加载配置")
	flags.StringVar(&f.etcdPrefix, "etcd-prefix", "/hello", "etcd 配置键前缀")
}

// overrides 只收集显式设置的参数，未设置的参数不覆盖其他配置源
func (f *rootFlags) overrides(cmd *cobra.Command) map[string]any {
	values := make(map[string]any)
	flags := cmd.Flags()

	if flags.Changed("port") {
		values["port"] = f.port
	}
	if flags.Changed("log-file") {
		values["log:path"] = f.logFile
	}
	if flags.Changed("log-level") {
		values["log:level"] = f.logLevel
	}
	return values
}

// configure 按优先级注册配置源
func (f *rootFlags) configure(cmd *cobra.Command) (func(*config.ConfigurationBuilder), error) {
	var source config.ConfigurationSource
	if f.configPath != "" {
		switch strings.ToLower(filepath.Ext(f.configPath)) {
		case ".yaml", ".yml":
			source = &config.YamlFileSource{Path: f.configPath}
		case ".json":
			source = &config.JsonFileSource{Path: f.configPath}
		default:
			return nil, fmt.Errorf("unsupported config file %q", f.configPath)
		}
	}
	overrides := f.overrides(cmd)

	return func(b *config.ConfigurationBuilder) {
		b.AddYamlFile("appsettings.yaml", true).
			AddJsonFile("appsettings.json", true)
		if source != nil {
			b.Add(source)
		}
		b.AddEnvironmentVariables(envPrefix)
		if len(f.etcdEndpoints) > 0 {
			b.AddEtcd(config.EtcdOptions{
				Endpoints: f.etcdEndpoints,
				Prefix:    f.etcdPrefix,
			})
		}
		b.AddInMemory(overrides)
	}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitCode = 1
	}

	stop()
	os.Exit(exitCode)
}

// rootCmd 构建根命令
func rootCmd() *cobra.Command {
	flag := &rootFlags{}

	cmd := &cobra.Command{
		Use:     appName,
		Short:   heredoc.Doc(appShort),
		Long:    heredoc.Doc(appLong),
		Example: heredoc.Doc(appExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configure, err := flag.configure(cmd)
			if err != nil {
				return err
			}

			return app.RunContext(cmd.Context(),
				core.WithConfiguration(configure),
				app.HelloWorld(),
			)
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		c.PrintErrln(err)
		_ = c.Usage()
		return err
	})

	flag.addFlags(cmd)
	cmd.AddCommand(versionCmd())

	return cmd
}

// versionCmd 构建输出版本信息的命令
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   versionCmdName,
		Short: heredoc.Doc(versionShort),

		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString(app.Version, runtime.Version()))
		},
	}
}

// versionString 格式化版本信息
func versionString(version, runtimeVersion string) string {
	return version + ", Go Version: " + runtimeVersion
}
