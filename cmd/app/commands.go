package main

import (
	"github.com/urfave/cli/v3"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getOutboxCommands(version)...)
	cmds = append(cmds, getKafkaCommands(version)...)
	return cmds
}
