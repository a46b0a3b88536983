package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/permguard/cmd/app/commands"
	"github.com/allisson/permguard/internal/app"
	"github.com/allisson/permguard/internal/config"
)

func roleFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "role",
		Aliases:  []string{"r"},
		Required: true,
		Usage:    "Role name",
	}
}

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-role",
			Usage: "Create a new role",
			Flags: []cli.Flag{roleFlag(), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				roleUseCase, err := container.RoleUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateRole(
					ctx,
					roleUseCase,
					container.Logger(),
					cmd.String("role"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "grant-permission",
			Usage: "Attach a permission claim to a role",
			Flags: []cli.Flag{
				roleFlag(),
				&cli.StringFlag{
					Name:     "permission",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Permission name (e.g., Permissions.Users.View)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				roleUseCase, err := container.RoleUseCase()
				if err != nil {
					return err
				}

				return commands.RunGrantPermission(
					ctx,
					roleUseCase,
					container.Logger(),
					cmd.String("role"),
					cmd.String("permission"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "assign-role",
			Usage: "Give a role to a user",
			Flags: []cli.Flag{emailFlag(), roleFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				userUseCase, err := container.UserUseCase()
				if err != nil {
					return err
				}
				userAccessUseCase, err := container.UserAccessUseCase()
				if err != nil {
					return err
				}

				return commands.RunAssignRole(
					ctx,
					userUseCase,
					userAccessUseCase,
					container.Logger(),
					cmd.String("email"),
					cmd.String("role"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "seed-admin",
			Usage: "Create the Administrator role with every permission and assign it to a user",
			Flags: []cli.Flag{emailFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				userUseCase, err := container.UserUseCase()
				if err != nil {
					return err
				}
				roleUseCase, err := container.RoleUseCase()
				if err != nil {
					return err
				}
				userAccessUseCase, err := container.UserAccessUseCase()
				if err != nil {
					return err
				}

				return commands.RunSeedAdmin(
					ctx,
					userUseCase,
					roleUseCase,
					userAccessUseCase,
					container.Logger(),
					cmd.String("email"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "clean-expired-tokens",
			Usage: "Delete tokens that expired more than the given number of days ago",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "days",
					Aliases: []string{"d"},
					Value:   0,
					Usage:   "Only delete tokens expired for at least this many days",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunCleanExpiredTokens(
					ctx,
					tokenUseCase,
					container.Logger(),
					commands.DefaultIO(),
					int(cmd.Int("days")),
					cmd.String("format"),
				)
			},
		},
	}
}
