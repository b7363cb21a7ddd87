package app

import "fmt"

// Command selects what the binary does.
type Command string

const (
	CommandServe             Command = "serve"
	CommandMigrate           Command = "migrate"
	CommandDeactivateUser    Command = "deactivate-user"
	CommandDeactivateAccount Command = "deactivate-account"
)

// ParseCommand returns the subcommand and its remaining arguments.
// No arguments means serve; an unknown subcommand is an error.
func ParseCommand(args []string) (Command, []string, error) {
	if len(args) == 0 {
		return CommandServe, nil, nil
	}

	switch cmd := Command(args[0]); cmd {
	case CommandServe, CommandMigrate, CommandDeactivateUser, CommandDeactivateAccount:
		return cmd, args[1:], nil
	default:
		return "", nil, fmt.Errorf("unknown command %q (expected %s, %s, %s or %s)",
			args[0], CommandServe, CommandMigrate, CommandDeactivateUser, CommandDeactivateAccount)
	}
}
