package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user dismisses a prompt
var ErrAborted = errors.New("aborted")

// PromptAPIKey asks for the panel API key. On a terminal it shows a masked
// input; otherwise it reads one line from in.
func PromptAPIKey(ctx context.Context, in io.Reader, out io.Writer, interactive bool) (string, error) {
	if !interactive {
		return readAPIKey(in, out)
	}

	var apiKey string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("🔐 Enter your ATBP Hosting API key").
				Description("Client API key from Account → API Credentials").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey).
				Validate(validateAPIKey),
		),
	).WithTheme(themeAmber()).WithInput(in).WithOutput(out)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("prompting for api key: %w", err)
	}
	return strings.TrimSpace(apiKey), nil
}

func readAPIKey(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprintln(out, promptStyle.Render("🔐 Enter your ATBP Hosting API key:"))

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading api key: %w", err)
	}
	apiKey := strings.TrimSpace(line)
	if err := validateAPIKey(apiKey); err != nil {
		return "", err
	}
	return apiKey, nil
}

func validateAPIKey(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("api key cannot be empty")
	}
	return nil
}
