package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"skyhook/internal/app"
	"skyhook/internal/config"
	"skyhook/internal/server"
	"skyhook/pkg/client"
	"skyhook/pkg/logger"
	"skyhook/pkg/protocol"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "skyhook",
		Short: "Сервер удаленного выполнения команд для хост-программ",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newExecCmd())
	root.AddCommand(newLsCmd())
	root.AddCommand(newShutdownCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var (
		configPath  string
		port        int
		hostProgram string
		noExecutor  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить standalone-сервер",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if hostProgram != "" {
				cfg.Server.HostProgram = hostProgram
			}
			if noExecutor {
				cfg.Server.UseMainThreadExecutor = false
			}

			lg := logger.NewWithLevel(cfg.Agent.LogLevel)

			listenPort := cfg.Server.Port
			if listenPort == 0 {
				listenPort = protocol.PortFor(cfg.Server.HostProgram)
			}
			if server.PortInUse(listenPort) {
				return fmt.Errorf("port %d is already in use, can't start server", listenPort)
			}

			a, err := app.New(cfg, lg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "путь к YAML-конфигу")
	cmd.Flags().IntVar(&port, "port", 0, "порт листенера (0 — порт хост-программы)")
	cmd.Flags().StringVar(&hostProgram, "host-program", "", "имя хост-программы для порта по умолчанию")
	cmd.Flags().BoolVar(&noExecutor, "no-executor", false, "выполнять команды в сетевой горутине")
	return cmd
}

func newExecCmd() *cobra.Command {
	var (
		addr       string
		port       int
		module     string
		paramsJSON string
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "exec <function>",
		Short: "Выполнить функцию на сервере",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]interface{}{}
			if paramsJSON != "" {
				if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
					return fmt.Errorf("parse --params: %w", err)
				}
			}
			c := client.New(addr, port, timeout)
			var (
				result protocol.Result
				err    error
			)
			if module != "" {
				result, err = c.ExecuteModule(module, args[0], params)
			} else {
				result, err = c.Execute(args[0], params)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1", "адрес сервера")
	cmd.Flags().IntVar(&port, "port", protocol.PortUndefined, "порт сервера")
	cmd.Flags().StringVar(&module, "module", "", "модуль, в котором искать функцию")
	cmd.Flags().StringVar(&paramsJSON, "params", "", "параметры функции, JSON-объект")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "таймаут запроса")
	return cmd
}

func newLsCmd() *cobra.Command {
	var (
		addr string
		port int
	)
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "Показать функции загруженных модулей",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := client.New(addr, port, 0).ListFunctions()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1", "адрес сервера")
	cmd.Flags().IntVar(&port, "port", protocol.PortUndefined, "порт сервера")
	return cmd
}

func newShutdownCmd() *cobra.Command {
	var (
		addr string
		port int
	)
	cmd := &cobra.Command{
		Use:   "shutdown",
		Short: "Остановить сервер",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.New(addr, port, 0).Shutdown()
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1", "адрес сервера")
	cmd.Flags().IntVar(&port, "port", protocol.PortUndefined, "порт сервера")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", buildVersion())
		},
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func buildVersion() string {
	v := version
	if commit != "" {
		v += " (" + commit + ")"
	}
	if date != "" {
		v += " " + date
	}
	return v
}
