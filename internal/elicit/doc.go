// Package elicit builds invocation arguments by asking the operator.
//
// SchemaWalker derives one Question per scalar leaf of a tool's JSON Schema
// and places each answer at its dotted path. TemplateElicitor collects the
// variables of a resource URI template with a live preview. PromptArguments
// asks for the flat string arguments of a prompt.
//
// All prompting goes through a Prompter so the traversal can be tested
// without a terminal.
package elicit
