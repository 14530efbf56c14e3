// Package interactive provides the optional human-in-the-loop confirmation
// hook for the searcher: before a reduction is taken, --interactive asks a
// terminal operator to confirm it. This is grounded on the teacher's
// readline-based input prompting conventions (see DESIGN.md).
package interactive

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
)

// Confirmer asks a yes/no question about a candidate reduction and returns
// the operator's answer.
type Confirmer struct {
	rl *readline.Instance
}

// NewConfirmer opens a readline-backed Confirmer against the process's
// stdio.
func NewConfirmer() (*Confirmer, error) {
	rl, err := readline.New("accept? [y/N] ")
	if err != nil {
		return nil, err
	}
	return &Confirmer{rl: rl}, nil
}

// Close releases the underlying terminal handle.
func (c *Confirmer) Close() error {
	return c.rl.Close()
}

// Confirm shows description (typically the candidate's diff or removed
// fragment) and blocks for an explicit yes/no answer. Only "y" or "yes" (in
// any case, surrounding spaces ignored) counts as yes; any other input is
// treated as "no", including EOF or a read error, so interactive mode never
// accepts silently.
func (c *Confirmer) Confirm(description string) bool {
	fmt.Println(description)
	line, err := c.rl.Readline()
	if err != nil {
		return false
	}
	ans := strings.ToLower(strings.TrimSpace(line))
	return ans == "y" || ans == "yes"
}
