package modules

import (
	"time"

	"github.com/codegangsta/k3/internal/commands"
)

// Misc holds commands that exercise argument parsing and subcommands
func Misc() commands.Module {
	const name = "misc"

	cg := commands.MustCommand("cg", func(ctx *commands.Context, args commands.Args) error {
		return ctx.Send(args.Strings(0))
	},
		commands.WithHelp("A test command that checks command group handling."),
		commands.WithParams(commands.Rest("args")),
		standardCooldown(),
		commands.WithModule(name),
	)
	sc := commands.MustCommand("sc", func(ctx *commands.Context, _ commands.Args) error {
		return ctx.Send("Meow?")
	},
		commands.WithHelp("A test command that checks command group handling."),
		commands.WithCooldown(1, 90*time.Second),
		commands.WithModule(name),
	)
	if err := cg.AddCommand(sc, commands.FailOnDuplicate); err != nil {
		panic(err)
	}

	return commands.Module{
		Name:        name,
		Description: "Test commands",
		Commands: []*commands.Command{
			commands.MustCommand("paramtest", paramTest,
				commands.WithHelp("A test command that checks argument parsing."),
				commands.WithParams(
					commands.TypedArg("integer", commands.Int),
					commands.TypedArg("floating_point", commands.Float),
					commands.Rest("rest"),
				),
				standardCooldown(),
				commands.WithModule(name),
			),
			cg,
		},
	}
}

func paramTest(ctx *commands.Context, args commands.Args) error {
	if err := ctx.Sendf("%v is a %T", args[0], args[0]); err != nil {
		return err
	}
	if err := ctx.Sendf("%v is a %T", args[1], args[1]); err != nil {
		return err
	}
	return ctx.Send(args.Strings(2))
}
