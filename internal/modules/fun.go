package modules

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"github.com/codegangsta/k3/internal/commands"
	"github.com/codegangsta/k3/internal/config"
)

var eightBallAnswers = []string{
	"It is certain.",
	"It is decidedly so.",
	"Without a doubt.",
	"Yes definitely.",
	"You may rely on it.",
	"As I see it, yes.",
	"Most likely.",
	"Outlook good.",
	"Yes.",
	"Signs point to yes.",

	"Reply hazy try again.",
	"Ask again later.",
	"Better not to tell you now.",
	"Cannot predict now.",
	"Concentrate and ask again.",

	"Don't count on it.",
	"My reply is no.",
	"My sources say no.",
	"Outlook not so good.",
	"Very doubtful.",

	"Yay!",
	":fox:",
	":sunny: :3",
	"Kon kon!",
	"+1",
	"Awau! :3",
	"Yes. :3",
	":3",

	"Awau? o.o",
	"Don't know? :<",
	"Kon kon kon.",

	"Awau. :<",
	"No. :<",
	"RIP",
}

var screams = []string{"a", "A", "\u3041", "\u3042", "\u30A1", "\u30A2"}

// splits a sue target from its reason at the first conjunction
var suitReason = regexp.MustCompile(`(?i) because | for | over `)

// Fun provides 8ball, ship, choose, sue, a and one command per configured
// reaction
func Fun(opts Options) commands.Module {
	const name = "fun"
	cmds := []*commands.Command{
		commands.MustCommand("8ball", eightBall,
			commands.WithAliases("eightball"),
			commands.WithHelp("Ask the Magic 8-Ball a question."),
			commands.WithParams(commands.Rest("question")),
			standardCooldown(),
			commands.WithModule(name),
		),
		commands.MustCommand("ship", ship,
			commands.WithHelp("Ship two things together.\n\nExample usage:\nship kit kat"),
			commands.WithParams(commands.Arg("first"), commands.Arg("second")),
			standardCooldown(),
			commands.WithModule(name),
		),
		commands.MustCommand("choose", choose,
			commands.WithHelp("Randomly choose between one of various supplied things.\n\nExample usage:\nchoose x y z\nchoose x \"y z\" \"a b\""),
			commands.WithParams(commands.Rest("choices")),
			standardCooldown(),
			commands.WithModule(name),
		),
		commands.MustCommand("sue", sue,
			commands.WithHelp("Sue somebody!\n\nExample usage:\nsue\nsue a person\nsue a person for being late"),
			commands.WithParams(commands.Rest("target")),
			standardCooldown(),
			commands.WithModule(name),
		),
		commands.MustCommand("a", scream,
			commands.WithAliases("aa", "aaa"),
			commands.WithHelp("Aaaaaaa!"),
			standardCooldown(),
			commands.WithModule(name),
		),
	}
	cmds = append(cmds, reactionCommands(name, opts, cmds)...)

	return commands.Module{
		Name:        name,
		Description: "Games and silliness",
		Commands:    cmds,
	}
}

func eightBall(ctx *commands.Context, _ commands.Args) error {
	return ctx.Send(eightBallAnswers[rand.IntN(len(eightBallAnswers))])
}

func ship(ctx *commands.Context, args commands.Args) error {
	return ctx.Sendf("I rate this ship a %d/100!", shipRating(args.String(0), args.String(1)))
}

// shipRating is stable across runs so the same pair always gets the same score
func shipRating(first, second string) uint64 {
	a, b := xxhash.Sum64String(first), xxhash.Sum64String(second)
	if a < b {
		a, b = b, a
	}
	return (a - b) % 101
}

func choose(ctx *commands.Context, args commands.Args) error {
	choices := args.Strings(0)
	if len(choices) <= 1 {
		return ctx.Send("Not enough choices given!")
	}
	same := true
	for _, c := range choices[1:] {
		if c != choices[0] {
			same = false
			break
		}
	}
	if same {
		return ctx.Send("They're all the same, I can't choose!")
	}
	return ctx.Send(choices[rand.IntN(len(choices))])
}

func sue(ctx *commands.Context, args commands.Args) error {
	f := ctx.Formatter()
	target := args.Join(0)

	var reason string
	if loc := suitReason.FindStringIndex(target); loc != nil {
		if why := strings.TrimSpace(target[loc[1]:]); why != "" {
			reason = target[loc[0]:loc[1]] + f.Bold(why)
			target = strings.TrimSpace(target[:loc[0]])
		}
	}
	if target != "" {
		target = f.Bold(" " + target)
	}
	amount := f.Bold(fmt.Sprintf("$%d", 100+rand.IntN(1000000-100+1)))
	return ctx.Sendf("I-I'm going to sue%s for %s%s! o.o", target, amount, reason)
}

func scream(ctx *commands.Context, _ commands.Args) error {
	return ctx.Send(strings.Repeat(screams[rand.IntN(len(screams))], 10+rand.IntN(191)))
}

// reactionCommands builds one command per reaction, sorted by name.
// Entries without images or with unusable or taken names are skipped.
func reactionCommands(module string, opts Options, builtin []*commands.Command) []*commands.Command {
	log := opts.logger()
	taken := make(map[string]bool)
	for _, c := range builtin {
		for _, inv := range c.Invocations() {
			taken[inv] = true
		}
	}

	names := make([]string, 0, len(opts.Reactions))
	for n := range opts.Reactions {
		names = append(names, n)
	}
	slices.Sort(names)

	var out []*commands.Command
	for _, n := range names {
		r := opts.Reactions[n]
		if len(r.Images) == 0 {
			log.Warn("skipping malformed reaction", "reaction", n, "reason", "no images")
			continue
		}
		cmd, err := commands.NewCommand(n, react(r),
			commands.WithAliases(r.Aliases...),
			commands.WithHelp(capitalize(n)+"!"),
			standardCooldown(),
			commands.WithModule(module),
		)
		if err != nil {
			log.Warn("skipping malformed reaction", "reaction", n, "error", err)
			continue
		}
		if clash := slices.IndexFunc(cmd.Invocations(), func(inv string) bool { return taken[inv] }); clash >= 0 {
			log.Warn("skipping reaction", "reaction", n, "reason", "name in use", "name", cmd.Invocations()[clash])
			continue
		}
		for _, inv := range cmd.Invocations() {
			taken[inv] = true
		}
		out = append(out, cmd)
	}
	return out
}

func react(r config.Reaction) commands.HandlerFunc {
	images := slices.Clone(r.Images)
	return func(ctx *commands.Context, _ commands.Args) error {
		return ctx.Send(images[rand.IntN(len(images))])
	}
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
