package console

import (
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
)

// Interactive reports whether the user can answer prompts.
func Interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// Prompt asks a question. With constraints, the answer must be one of them
// (case-insensitive); empty or unknown answers select the first one.
func Prompt(question string, constraints ...string) (string, error) {
	if len(constraints) == 0 {
		return readLine(question)
	}
	def := strings.ToUpper(constraints[0])
	var prompt strings.Builder
	prompt.WriteString(question)
	prompt.WriteString(" [")
	prompt.WriteString(def)
	for i := 1; i < len(constraints); i++ {
		prompt.WriteString("/")
		prompt.WriteString(constraints[i])
	}
	prompt.WriteString("]: ")
	response, err := readLine(prompt.String())
	if err != nil {
		return "", err
	}
	return matchConstraint(response, constraints), nil
}

func readLine(prompt string) (string, error) {
	rl, err := readline.New(prompt)
	if err != nil {
		return "", err
	}
	defer func() { _ = rl.Close() }()
	return rl.Readline()
}

func matchConstraint(response string, constraints []string) string {
	// return default on no input
	normalized := strings.ToLower(strings.TrimSpace(response))
	if normalized == "" {
		return constraints[0]
	}
	for _, c := range constraints {
		if normalized == strings.ToLower(c) {
			return c
		}
	}
	// no constraint matched, return default
	return constraints[0]
}
