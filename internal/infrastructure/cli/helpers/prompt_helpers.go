package helpers

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptForYesNo prompts the user for a yes/no question
// Returns the default value on empty input or read failure
func PromptForYesNo(out io.Writer, reader *bufio.Reader, promptText string, defaultValue bool) bool {
	fmt.Fprintf(out, "%s [%s]: ", promptText, buildYesNoLabel(defaultValue))

	line, err := reader.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	if line == "" {
		if err != nil {
			return false
		}
		return defaultValue
	}
	return isAffirmativeResponse(line)
}

// ReadLine prompts and returns one trimmed line. ok is false at end of input
// with nothing left to read.
func ReadLine(out io.Writer, reader *bufio.Reader, promptText string) (string, bool) {
	fmt.Fprint(out, promptText)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func buildYesNoLabel(defaultIsYes bool) string {
	if defaultIsYes {
		return "Y/n"
	}
	return "y/N"
}

// isAffirmativeResponse accepts English and Turkish yes.
func isAffirmativeResponse(response string) bool {
	switch response {
	case "y", "yes", "e", "evet":
		return true
	default:
		return false
	}
}
