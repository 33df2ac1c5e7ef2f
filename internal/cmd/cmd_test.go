package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	forgeerrors "github.com/felixgeelhaar/issueforge/internal/errors"
)

// resetFlags restores default flag values so one test's arguments do not
// leak into the next execution of the shared command tree.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "issueforge") {
		t.Errorf("output = %q, want the binary name", out)
	}
}

func TestVersionCommandJSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("version --json failed: %v", err)
	}
	if !strings.Contains(out, `"version"`) {
		t.Errorf("output = %q, want JSON fields", out)
	}
}

func TestGenerateRequiresRepo(t *testing.T) {
	if _, err := execute(t, "generate", "--description", "a project"); err == nil {
		t.Fatal("generate without --repo should fail")
	}
}

func TestGenerateRequiresDescriptionOrFile(t *testing.T) {
	if _, err := execute(t, "generate", "--repo", "owner/name"); err == nil {
		t.Fatal("generate without --description or --file should fail")
	}
}

func TestGenerateRejectsBothDescriptionAndFile(t *testing.T) {
	_, err := execute(t, "generate",
		"--repo", "owner/name",
		"--description", "a project",
		"--file", "description.txt")
	if err == nil {
		t.Fatal("generate with both --description and --file should fail")
	}
}

func TestGenerateMissingAPIKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("GITHUB_TOKEN", "")

	_, err := execute(t, "generate", "--repo", "owner/name", "--description", "a project")
	if err == nil {
		t.Fatal("generate without credentials should fail")
	}

	var forgeErr *forgeerrors.ForgeError
	if !errors.As(err, &forgeErr) || forgeErr.Code != forgeerrors.ErrCodeConfigMissingKey {
		t.Errorf("expected CONFIG-001, got %v", err)
	}
}

func TestStatusMissingToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	_, err := execute(t, "status", "--repo", "owner/name")
	if err == nil {
		t.Fatal("status without a token should fail")
	}

	var forgeErr *forgeerrors.ForgeError
	if !errors.As(err, &forgeErr) || forgeErr.Code != forgeerrors.ErrCodeConfigMissingToken {
		t.Errorf("expected CONFIG-002, got %v", err)
	}
}

func TestModelsMissingKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	_, err := execute(t, "models")
	if err == nil {
		t.Fatal("models without an API key should fail")
	}
}
