package modules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/codegangsta/k3/internal/commands"
)

// Utils provides text conversions
func Utils() commands.Module {
	const name = "utils"
	return commands.Module{
		Name:        name,
		Description: "Text utilities",
		Commands: []*commands.Command{
			commands.MustCommand("reverse", reverse,
				commands.WithHelp("Reverse input text."),
				commands.WithParams(commands.Rest("text")),
				standardCooldown(),
				commands.WithModule(name),
			),
			commands.MustCommand("binary", binary,
				commands.WithHelp("Encode plaintext to binary."),
				commands.WithParams(commands.Rest("text")),
				standardCooldown(),
				commands.WithModule(name),
			),
		},
	}
}

func reverse(ctx *commands.Context, args commands.Args) error {
	return ctx.Send(reverseText(args.Join(0)))
}

func reverseText(s string) string {
	r := []rune(s)
	slices.Reverse(r)
	return string(r)
}

func binary(ctx *commands.Context, args commands.Args) error {
	return ctx.Send(toBinary(args.Join(0)))
}

// toBinary writes each code point as at least eight binary digits
func toBinary(s string) string {
	parts := make([]string, 0, len(s))
	for _, r := range s {
		parts = append(parts, fmt.Sprintf("%08b", r))
	}
	return strings.Join(parts, " ")
}
