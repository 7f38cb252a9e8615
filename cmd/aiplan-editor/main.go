// Основной пакет сервиса редактора AIPlan. Отвечает за чтение конфигурации,
// настройку логирования и запуск HTTP-сервера редактора.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/aisa-it/aiplan-editor/internal/editor"
	"github.com/aisa-it/aiplan-editor/internal/editor/config"
)

var version string = "DEV"

// Пример запуска: go run main.go --trace
func main() {
	trace := flag.Bool("trace", false, "Verbose logs")
	flag.Parse()

	PrintBanner()

	cfg := config.ReadConfig()

	if *trace {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
	}

	slog.Info("AIPlan editor start.")

	editor.Server(cfg)
}

// PrintBanner выводит заголовок сервиса с версией и ссылкой на сайт.
func PrintBanner() {
	banner := `
          _____ _____  _                  ______    _ _ _
    /\   |_   _|  __ \| |                |  ____|  | (_) |
   /  \    | | | |__) | | __ _ _ __      | |__   __| |_| |_ ___  _ __
  / /\ \   | | |  ___/| |/ _  | '_ \     |  __| / _  | | __/ _ \| '__|
 / ____ \ _| |_| |    | | (_| | | | |    | |___| (_| | | || (_) | |
/_/    \_\_____|_|    |_|\__,_|_| |_|    |______\__,_|_|\__\___/|_| %s
Rich text document engine
%s
--------------------------------------------------------------------
`
	colorReset := "\033[0m"

	colorYellow := "\033[33m"
	colorBlue := "\033[34m"

	formattedVersion := version
	if version == "DEV" {
		formattedVersion = colorYellow + version + colorReset
	}

	fmt.Printf(banner, formattedVersion, colorBlue+"https://aisa.ru"+colorReset)
}
