package modules

import (
	"strings"

	"github.com/codegangsta/k3/internal/commands"
)

// Owner provides module management and logout. Every command is owner-only.
func Owner(opts Options) commands.Module {
	const name = "owner"
	o := &owner{settings: opts.Settings}

	return commands.Module{
		Name:        name,
		Description: "Bot administration",
		Commands: []*commands.Command{
			commands.MustCommand("load", o.load,
				commands.WithHelp("Load a k3 module by name. Owner only.\n\nExample usage:\nload fun"),
				commands.WithParams(commands.Arg("module")),
				commands.OwnerOnly(),
				commands.WithModule(name),
			),
			commands.MustCommand("unload", o.unload,
				commands.WithHelp("Unload a k3 module by name. Owner only.\n\nExample usage:\nunload fun"),
				commands.WithParams(commands.Arg("module")),
				commands.OwnerOnly(),
				commands.WithModule(name),
			),
			commands.MustCommand("reload", o.reload,
				commands.WithHelp("Reload a k3 module by name. Owner only.\n\nExample usage:\nreload fun"),
				commands.WithParams(commands.Arg("module")),
				commands.OwnerOnly(),
				commands.WithModule(name),
			),
			commands.MustCommand("modules", o.list,
				commands.WithHelp("List known modules and whether they are loaded. Owner only."),
				commands.OwnerOnly(),
				commands.WithModule(name),
			),
			commands.MustCommand("logout", o.logout,
				commands.WithAliases("exit"),
				commands.WithHelp("Shut the bot down. Owner only."),
				commands.OwnerOnly(),
				commands.WithModule(name),
			),
		},
	}
}

type owner struct {
	settings Settings
}

func (o *owner) load(ctx *commands.Context, args commands.Args) error {
	name := args.String(0)
	if ctx.Bot.IsLoaded(name) {
		return ctx.Sendf("%s is already loaded.", name)
	}
	if err := ctx.Bot.LoadModuleByName(name); err != nil {
		return err
	}
	if o.settings != nil && o.settings.Unblacklist(name) {
		o.save(ctx)
	}
	return ctx.Sendf("Loaded module %s", name)
}

func (o *owner) unload(ctx *commands.Context, args commands.Args) error {
	name := args.String(0)
	if !ctx.Bot.IsLoaded(name) {
		return ctx.Sendf("%s is not currently loaded.", name)
	}
	if err := ctx.Bot.UnloadModule(name); err != nil {
		return err
	}
	if o.settings != nil && o.settings.Blacklist(name) {
		o.save(ctx)
	}
	return ctx.Sendf("Unloaded module %s", name)
}

func (o *owner) reload(ctx *commands.Context, args commands.Args) error {
	name := args.String(0)
	if err := ctx.Bot.ReloadModule(name); err != nil {
		return err
	}
	return ctx.Sendf("Reloaded module %s", name)
}

func (o *owner) list(ctx *commands.Context, _ commands.Args) error {
	var lines []string
	for _, name := range ctx.Bot.Modules() {
		state := "unloaded"
		if ctx.Bot.IsLoaded(name) {
			state = "loaded"
		}
		lines = append(lines, name+": "+state)
	}
	if len(lines) == 0 {
		return ctx.Send("No modules registered.")
	}
	return ctx.Send(ctx.Formatter().Codeblock(strings.Join(lines, "\n"), ""))
}

func (o *owner) logout(ctx *commands.Context, _ commands.Args) error {
	ctx.Bot.Logger().Info("logout requested", "invocation_id", ctx.InvocationID)
	err := ctx.Send("Logging out...")
	ctx.Bot.Logout()
	return err
}

// save persists the blacklist; failures are only logged
func (o *owner) save(ctx *commands.Context) {
	if err := o.settings.Save(""); err != nil {
		ctx.Bot.Logger().Warn("failed to save module blacklist", "error", err)
	}
}
