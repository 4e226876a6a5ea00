package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func funModule() Module {
	return Module{
		Name: "fun",
		Commands: []*Command{
			MustCommand("8ball", noop, WithAliases("eightball"), WithModule("fun")),
			MustCommand("ship", noop, WithModule("fun"), WithCooldown(2, time.Hour)),
		},
	}
}

func TestLoadModule(t *testing.T) {
	bot := newTestBot(t)
	mod := funModule()

	require.NoError(t, bot.LoadModule(mod, FailOnDuplicate))
	assert.Equal(t, []string{"8ball", "ship"}, bot.Registry().Names())
	assert.Equal(t, []string{"fun"}, bot.LoadedModules())
	assert.True(t, bot.IsLoaded("fun"))
	assert.Equal(t, []string{"fun"}, bot.Modules(), "loading also catalogs the module")

	name, ok := bot.ModuleOf("ship")
	assert.True(t, ok)
	assert.Equal(t, "fun", name)

	// Commands that already belong to a registry are skipped.
	require.NoError(t, bot.LoadModule(mod, FailOnDuplicate))
	assert.Equal(t, 2, bot.Registry().Len())
}

func TestLoadModule_RollsBackOnConflict(t *testing.T) {
	bot := newTestBot(t)
	require.NoError(t, bot.AddCommand(MustCommand("ship", noop), FailOnDuplicate))

	err := bot.LoadModule(funModule(), FailOnDuplicate)
	assert.ErrorIs(t, err, ErrCommandExists)
	assert.Equal(t, []string{"ship"}, bot.Registry().Names())
	assert.False(t, bot.IsLoaded("fun"))
}

func TestLoadModule_SkipDuplicate(t *testing.T) {
	bot := newTestBot(t)
	existing := MustCommand("ship", noop)
	require.NoError(t, bot.AddCommand(existing, FailOnDuplicate))

	require.NoError(t, bot.LoadModule(funModule(), SkipDuplicate))
	assert.Equal(t, []string{"8ball", "ship"}, bot.Registry().Names())

	got, _ := bot.Registry().Get("ship")
	assert.Same(t, existing, got)

	// Unloading leaves commands the module did not add.
	require.NoError(t, bot.UnloadModule("fun"))
	assert.Equal(t, []string{"ship"}, bot.Registry().Names())
}

func TestUnloadModule(t *testing.T) {
	bot := newTestBot(t)
	require.NoError(t, bot.LoadModule(funModule(), FailOnDuplicate))

	require.NoError(t, bot.UnloadModule("fun"))
	assert.Zero(t, bot.Registry().Len())
	assert.False(t, bot.IsLoaded("fun"))

	res := bot.Process(context.Background(), "!ship a b", Request{})
	assert.False(t, res.Matched)

	assert.ErrorIs(t, bot.UnloadModule("fun"), ErrModuleNotFound)
}

func TestLoadModuleByName(t *testing.T) {
	bot := newTestBot(t)
	bot.RegisterModule(funModule())
	assert.False(t, bot.IsLoaded("fun"))

	require.NoError(t, bot.LoadModuleByName("fun"))
	assert.True(t, bot.IsLoaded("fun"))

	assert.ErrorIs(t, bot.LoadModuleByName("nope"), ErrModuleNotFound)
}

func TestReloadModule(t *testing.T) {
	now := time.Now()
	bot := newTestBot(t)
	bot.now = func() time.Time { return now }

	mod := funModule()
	bot.RegisterModule(mod)
	require.NoError(t, bot.LoadModuleByName("fun"))

	for i := 0; i < 2; i++ {
		require.Nil(t, bot.Process(context.Background(), "!ship", Request{}).Err)
	}
	require.NotNil(t, bot.Process(context.Background(), "!ship", Request{}).Err)

	require.NoError(t, bot.ReloadModule("fun"))
	assert.True(t, bot.IsLoaded("fun"))
	assert.Nil(t, bot.Process(context.Background(), "!ship", Request{}).Err, "reload clears cooldowns")

	assert.ErrorIs(t, bot.ReloadModule("nope"), ErrModuleNotFound)
}

func TestReloadModule_ResetsSubcommandCooldowns(t *testing.T) {
	now := time.Now()
	bot := newTestBot(t)
	bot.now = func() time.Time { return now }

	leaf := MustCommand("leaf", noop, WithCooldown(2, time.Hour))
	sc := MustCommand("sc", noop, WithCooldown(2, time.Hour))
	require.NoError(t, sc.AddCommand(leaf, FailOnDuplicate))
	cg := MustCommand("cg", noop, WithModule("misc"))
	require.NoError(t, cg.AddCommand(sc, FailOnDuplicate))
	bot.RegisterModule(Module{Name: "misc", Commands: []*Command{cg}})
	require.NoError(t, bot.LoadModuleByName("misc"))

	tests := []struct {
		name string
		text string
	}{
		{"subcommand", "!cg sc"},
		{"nested subcommand", "!cg sc leaf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 2; i++ {
				require.Nil(t, bot.Process(context.Background(), tt.text, Request{}).Err)
			}
			res := bot.Process(context.Background(), tt.text, Request{})
			require.NotNil(t, res.Err)
			var cd *CooldownError
			require.ErrorAs(t, res.Err, &cd)

			require.NoError(t, bot.ReloadModule("misc"))
			assert.Nil(t, bot.Process(context.Background(), tt.text, Request{}).Err, "reload clears nested cooldowns")
		})
	}
}

func TestReloadModule_NotLoaded(t *testing.T) {
	bot := newTestBot(t)
	bot.RegisterModule(funModule())

	require.NoError(t, bot.ReloadModule("fun"))
	assert.True(t, bot.IsLoaded("fun"))
}

func TestModuleCommandsRunFromHandler(t *testing.T) {
	bot := newTestBot(t)
	bot.RegisterModule(funModule())
	require.NoError(t, bot.AddCommand(MustCommand("load", func(ctx *Context, args Args) error {
		return ctx.Bot.LoadModuleByName(args.String(0))
	}, WithParams(Arg("module"))), FailOnDuplicate))

	res := bot.Process(context.Background(), "!load fun", Request{})
	require.Nil(t, res.Err)
	assert.True(t, bot.IsLoaded("fun"))
}
