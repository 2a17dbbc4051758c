package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/actionslaw/actionslaw-go/app/trigger"
)

// Output emits the surviving batch to the hosting workflow. When the
// GITHUB_OUTPUT file is available the heredoc form is appended to it;
// otherwise the legacy ::set-output workflow command goes to stdout.
type Output struct {
	stdout     io.Writer
	outputFile string
}

func NewOutput() *Output {
	return &Output{
		stdout:     os.Stdout,
		outputFile: os.Getenv("GITHUB_OUTPUT"),
	}
}

func (o *Output) Emit(items []trigger.Item) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to serialize items: %w", err)
	}

	if o.outputFile != "" {
		return o.appendToFile("items", payload)
	}

	if _, err := fmt.Fprintf(o.stdout, "::set-output name=items::%s\n", payload); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func (o *Output) appendToFile(name string, payload []byte) error {
	// A per-emit random delimiter keeps a payload line from ever closing the
	// heredoc early.
	delimiter := "ghadelimiter_" + uuid.NewString()
	if bytes.Contains(payload, []byte(delimiter)) {
		return fmt.Errorf("output payload contains delimiter %s", delimiter)
	}

	f, err := os.OpenFile(o.outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open output file %s: %w", o.outputFile, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s<<%s\n%s\n%s\n", name, delimiter, payload, delimiter); err != nil {
		return fmt.Errorf("failed to append to output file %s: %w", o.outputFile, err)
	}

	return nil
}
