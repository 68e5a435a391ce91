package main

import (
	"github.com/IEvangelist/dotenv-aspire/cmd"
)

var (
	Version   string
	BuildTime string
)

func main() {
	cmd.SetVersion(Version)
	cmd.Execute()
}
