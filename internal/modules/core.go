package modules

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/codegangsta/k3/internal/commands"
)

// Core provides help, ping and info
func Core(opts Options) commands.Module {
	const name = "core"
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	return commands.Module{
		Name:        name,
		Description: "Basic bot commands",
		Commands: []*commands.Command{
			commands.MustCommand("help", help,
				commands.WithAliases("commands"),
				commands.WithHelp("Help command. Run help <command name> for more information on a specific command.\n\nExample usage:\nhelp\nhelp ping\nhelp info"),
				commands.WithParams(commands.Rest("command")),
				standardCooldown(),
				commands.WithModule(name),
			),
			commands.MustCommand("ping", ping,
				commands.WithHelp("Pings the bot to see if it's alive."),
				standardCooldown(),
				commands.WithModule(name),
			),
			commands.MustCommand("info", info(version),
				commands.WithAliases("about", "stats"),
				commands.WithHelp("Display some basic information about the bot, such as memory usage."),
				standardCooldown(),
				commands.WithModule(name),
			),
		},
	}
}

func help(ctx *commands.Context, args commands.Args) error {
	f := ctx.Formatter()

	if args.Len() > 0 {
		path := args.Strings(0)
		cmd, ok := ctx.Bot.Find(path...)
		if !ok {
			return ctx.Sendf("%s is not a valid command.", strings.Join(path, " "))
		}
		text := cmd.Usage()
		if cmd.Help() != "" {
			text += "\n\n" + cmd.Help()
		}
		if subs := cmd.Subcommands().Names(); len(subs) > 0 {
			text += "\n\nSubcommands: " + strings.Join(subs, ", ")
		}
		return ctx.Send(f.Codeblock(text, ""))
	}

	names := ctx.Bot.Registry().Names()
	msg := f.Bold("List of commands:\n") + f.Codeblock(strings.Join(names, ", ")+"\n", "")
	msg += "\nRun " + f.Bold("help command") + " for more details on a command."
	return ctx.Send(msg)
}

func ping(ctx *commands.Context, _ commands.Args) error {
	return ctx.Send(":3")
}

func info(version string) commands.HandlerFunc {
	return func(ctx *commands.Context, _ commands.Args) error {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		lines := []string{
			ctx.Bot.Name(),
			ctx.Bot.Description(),
			fmt.Sprintf("# of commands: %d", ctx.Bot.Registry().Len()),
			"Go: " + runtime.Version(),
			"k3: " + version,
			fmt.Sprintf("Uptime: %s", ctx.Bot.Uptime().Round(time.Second)),
			fmt.Sprintf("Memory: %.2f MB", float64(mem.Sys)/1e6),
		}
		out := lines[:0]
		for _, l := range lines {
			if l != "" {
				out = append(out, l)
			}
		}
		return ctx.Send(ctx.Formatter().Codeblock(strings.Join(out, "\n"), ""))
	}
}
