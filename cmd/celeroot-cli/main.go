// Celeroot CLI — инструмент командной строки для управления
// конфигурацией кластера и наблюдения за флотом.
//
// Использование:
//
//	celeroot [--config PATH] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	config    Управление конфигурацией кластера (init, show, validate, push)
//	host      Управление хостами
//	role      Управление ролями
//	schedule  Управление schedules
//	worker    Наблюдение за живыми worker'ами
//	history   Журнал dispatch'ей
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/celeroot/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var configPath string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "celeroot",
		Short:         "Celeroot CLI — distributed cluster management tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", cli.DefaultConfigPath, "Cluster configuration file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	fileFn := func() *cli.ConfigFile { return cli.NewConfigFile(configPath) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewConfigCmd(fileFn, outputFn),
		cli.NewHostCmd(fileFn, outputFn),
		cli.NewRoleCmd(fileFn, outputFn),
		cli.NewScheduleCmd(fileFn, outputFn),
		cli.NewWorkerCmd(outputFn),
		cli.NewHistoryCmd(outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
