package security

import (
	"errors"
	"testing"

	"github.com/VoxDroid/waex/internal/command"
)

func TestCheckAllowed(t *testing.T) {
	bad := []string{
		"rm -rf /",
		"rm -rf / --no-preserve-root",
		"rm -fr ~",
		"mkfs.ext4 /dev/sda",
		"dd if=/dev/zero of=/dev/sda bs=4096",
		":(){ :|:& };:",
		"wipefs -a /dev/sda",
		"chmod -R 777 /",
	}
	for _, s := range bad {
		err := CheckAllowed(s)
		if err == nil {
			t.Fatalf("expected %q to be blocked", s)
		}
		if !errors.Is(err, ErrBlocked) {
			t.Fatalf("expected ErrBlocked for %q, got %v", s, err)
		}
	}

	good := []string{
		"npx prettier --write",
		"rm -rf ./dist",
		"go vet ./...",
		"bash -c 'echo safe'",
	}
	for _, s := range good {
		if err := CheckAllowed(s); err != nil {
			t.Fatalf("expected %q to be allowed: %v", s, err)
		}
	}

	if err := CheckAllowed("   "); err == nil {
		t.Fatalf("expected empty command to be refused")
	}
}

func TestCheckCommands(t *testing.T) {
	ok := []command.Command{
		command.New(command.Spec{Runner: "npx", Args: []string{"eslint"}}),
	}
	if err := CheckCommands(ok); err != nil {
		t.Fatalf("unexpected refusal: %v", err)
	}
	bad := append(ok, command.New(command.Spec{Runner: "rm", Args: []string{"-rf", "/"}}))
	err := CheckCommands(bad)
	var be *BlockedError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BlockedError, got %v", err)
	}
	if be.Command != "rm -rf /" || be.Rule != "recursive delete of /" {
		t.Fatalf("unexpected blocked error: %+v", be)
	}
}
