package app

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		args     []string
		want     Command
		wantArgs int
	}{
		{args: nil, want: CommandServe},
		{args: []string{"serve"}, want: CommandServe},
		{args: []string{"migrate"}, want: CommandMigrate},
		{args: []string{"deactivate-user", "u-1"}, want: CommandDeactivateUser, wantArgs: 1},
		{args: []string{"deactivate-account", "a-1"}, want: CommandDeactivateAccount, wantArgs: 1},
	}

	for _, tt := range tests {
		cmd, rest, err := ParseCommand(tt.args)
		if err != nil {
			t.Errorf("ParseCommand(%v) returned error: %v", tt.args, err)
			continue
		}
		if cmd != tt.want {
			t.Errorf("ParseCommand(%v) = %q, want %q", tt.args, cmd, tt.want)
		}
		if len(rest) != tt.wantArgs {
			t.Errorf("ParseCommand(%v) returned %d args, want %d", tt.args, len(rest), tt.wantArgs)
		}
	}
}

func TestParseCommand_Unknown(t *testing.T) {
	for _, args := range [][]string{{"deactivate-acount", "a-1"}, {"worker"}, {"--help"}} {
		cmd, rest, err := ParseCommand(args)
		if err == nil {
			t.Errorf("ParseCommand(%v) = %q, want error", args, cmd)
		}
		if rest != nil {
			t.Errorf("ParseCommand(%v) returned args %v, want none", args, rest)
		}
	}
}
