package elicit

import (
	"context"

	"github.com/thoreinstein/mcpcli/internal/primitive"
)

// PromptArguments asks for every argument of a prompt in declared order.
// Empty answers are omitted.
func PromptArguments(ctx context.Context, p Prompter, args []primitive.Argument) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, a := range args {
		title := a.Name
		if a.Required {
			title = "* " + title
		}
		v, err := p.Text(ctx, Field{Title: title, Description: a.Description})
		if err != nil {
			return nil, err
		}
		if v != "" {
			out[a.Name] = v
		}
	}
	return out, nil
}
