package validation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ShayCichocki/agentnexus/internal/exec"
)

type upperFormatter struct{}

func (upperFormatter) Format(ctx context.Context, s string) (string, error) {
	return strings.ToUpper(s), nil
}

type failingFormatter struct{}

func (failingFormatter) Format(ctx context.Context, s string) (string, error) {
	return "", errors.New("black: cannot parse")
}

func TestChain_Format(t *testing.T) {
	out, err := Chain{upperFormatter{}}.Format(context.Background(), "x = 1\n")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if out != "X = 1\n" {
		t.Errorf("Format() = %q", out)
	}
}

func TestChain_FailureReturnsOriginal(t *testing.T) {
	src := "x = 1\n"
	out, err := Chain{upperFormatter{}, failingFormatter{}}.Format(context.Background(), src)
	if err == nil {
		t.Fatal("expected error")
	}
	if out != src {
		t.Errorf("Format() = %q, want original %q", out, src)
	}
}

func TestCommandFormatter_PipesStdin(t *testing.T) {
	fr := &fakeRunner{result: exec.Result{Stdout: "x = 1\n"}}
	f := NewCommandFormatter(fr, []string{"black", "-q", "-"}, 0)

	out, err := f.Format(context.Background(), "x=1")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if out != "x = 1\n" {
		t.Errorf("Format() = %q", out)
	}
	if fr.gotOpts.Stdin != "x=1" {
		t.Errorf("stdin = %q, want source", fr.gotOpts.Stdin)
	}
	if fr.gotName != "black" || len(fr.gotArgs) != 2 {
		t.Errorf("command = %s %v", fr.gotName, fr.gotArgs)
	}
}

func TestCommandFormatter_NonZeroExit(t *testing.T) {
	f := NewCommandFormatter(&fakeRunner{result: exec.Result{ExitCode: 123, Stderr: "error: cannot format"}}, []string{"black", "-"}, 0)
	if _, err := f.Format(context.Background(), "def (:"); err == nil {
		t.Error("expected error on non-zero exit")
	}
}

func TestNewChain_SkipsEmpty(t *testing.T) {
	c := NewChain(&fakeRunner{}, [][]string{{"black", "-"}, {}, {"isort", "-"}}, 0)
	if len(c) != 2 {
		t.Errorf("len(chain) = %d, want 2", len(c))
	}
}
