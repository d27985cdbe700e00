package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stdinIsTTY() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func readLine() (string, error) {
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptChoice asks for one of options, keeping fallback on an empty answer.
func promptChoice(label string, options []string, fallback string) (string, error) {
	if !stdinIsTTY() {
		return fallback, nil
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), fallback)
		value, err := readLine()
		if err != nil {
			return "", err
		}
		if value == "" {
			return fallback, nil
		}
		for _, opt := range options {
			if strings.EqualFold(value, opt) {
				return opt, nil
			}
		}
		fmt.Printf("pick one of: %s\n", strings.Join(options, ", "))
	}
}

func promptConfirm(prompt string, fallback bool) (bool, error) {
	if !stdinIsTTY() {
		return fallback, nil
	}
	suffix := "[y/N]"
	if fallback {
		suffix = "[Y/n]"
	}
	fmt.Printf("%s %s: ", prompt, suffix)
	value, err := readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(value) {
	case "":
		return fallback, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
