package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"unicode"
)

// CountPlaceholder is replaced by the requested batch size in every Exec
// argument.
const CountPlaceholder = "{count}"

// Exec runs an external generator once per batch and parses identifiers
// from its standard output, split on commas and whitespace. For example:
//
//	source.NewExec([]string{"idgen", "--count", "{count}", "--sep", ","})
type Exec struct {
	argv []string
}

// NewExec returns an Exec source for argv. argv[0] is resolved through PATH
// when the first batch runs.
func NewExec(argv []string) (*Exec, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("exec source: empty command")
	}
	return &Exec{argv: append([]string(nil), argv...)}, nil
}

// Generate runs the command for count identifiers. Output beyond count is
// discarded; a short output is returned as is.
func (e *Exec) Generate(ctx context.Context, count int) ([]string, error) {
	n := strconv.Itoa(count)
	args := make([]string, len(e.argv)-1)
	for i, a := range e.argv[1:] {
		args[i] = strings.ReplaceAll(a, CountPlaceholder, n)
	}

	cmd := exec.CommandContext(ctx, e.argv[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("exec %s: %w", e.argv[0], err)
		}
		return nil, fmt.Errorf("exec %s: %w: %s", e.argv[0], err, msg)
	}

	ids := strings.FieldsFunc(stdout.String(), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(ids) > count {
		ids = ids[:count]
	}
	return ids, nil
}
