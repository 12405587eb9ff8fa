package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"

	"crypto-trader/backend/internal/app"
)

func main() {
	cli := kingpin.New("crypto-trader-api", "Crypto Trader API backend server")
	envFile := cli.Flag("env-file", "Path to a .env configuration file").String()
	port := cli.Flag("port", "HTTP port exposed by the service (overrides SERVER_PORT)").Default("0").Int()
	logFile := cli.Flag("log-file", "Log file path; setting it enables rotating file logging").String()

	kingpin.MustParse(cli.Parse(os.Args[1:]))

	os.Exit(app.Run(app.Options{
		EnvFile: *envFile,
		Port:    *port,
		LogFile: *logFile,
	}))
}
