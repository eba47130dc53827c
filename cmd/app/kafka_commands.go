package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/orderflow/cmd/app/commands"
	"github.com/allisson/orderflow/internal/app"
	"github.com/allisson/orderflow/internal/config"
)

func getKafkaCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "consumer",
			Usage: "Run the fulfillment consumer and worker pool",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunConsumer(ctx, version)
			},
		},
		{
			Name:  "provision-topics",
			Usage: "Create the Kafka topics listed in the topic definition file",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				provisioner, err := container.TopicProvisioner()
				if err != nil {
					return err
				}

				return commands.RunProvisionTopics(ctx, provisioner, container.Logger())
			},
		},
		{
			Name:  "register-schemas",
			Usage: "Register the Avro schemas with the schema registry",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				provisioner, err := container.SchemaProvisioner()
				if err != nil {
					return err
				}

				return commands.RunRegisterSchemas(ctx, provisioner, container.Logger())
			},
		},
	}
}
