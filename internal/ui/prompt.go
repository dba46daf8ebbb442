package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoInput is returned when the input stream ends before an answer.
var ErrNoInput = errors.New("no input available")

type Choice struct {
	Label string
	Value string
}

// Prompter asks the user questions during a run.
type Prompter interface {
	Confirm(message string) (bool, error)
	Input(message, defaultValue string) (string, error)
	Select(message string, choices []Choice) (string, error)
}

// Console prompts on Out and reads answers line by line from In.
type Console struct {
	Out    io.Writer
	reader *bufio.Reader
}

func NewConsole(out io.Writer, in io.Reader) *Console {
	return &Console{Out: out, reader: bufio.NewReader(in)}
}

func (c *Console) Confirm(message string) (bool, error) {
	for {
		if _, err := fmt.Fprintf(c.Out, "%s (y/N) ", message); err != nil {
			return false, err
		}
		answer, err := c.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
		if _, err := fmt.Fprintln(c.Out, "Please answer 'y' or 'n'."); err != nil {
			return false, err
		}
	}
}

func (c *Console) Input(message, defaultValue string) (string, error) {
	prompt := message
	if defaultValue != "" {
		prompt = fmt.Sprintf("%s (%s)", message, defaultValue)
	}
	if _, err := fmt.Fprintf(c.Out, "%s ", prompt); err != nil {
		return "", err
	}
	answer, err := c.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return defaultValue, nil
	}
	return answer, nil
}

// Select lists choices numbered from 1. An empty answer picks the first.
func (c *Console) Select(message string, choices []Choice) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("select %q: no choices", message)
	}
	for {
		if _, err := fmt.Fprintln(c.Out, message); err != nil {
			return "", err
		}
		for i, choice := range choices {
			if _, err := fmt.Fprintf(c.Out, "  %d) %s\n", i+1, choice.Label); err != nil {
				return "", err
			}
		}
		if _, err := fmt.Fprint(c.Out, "> "); err != nil {
			return "", err
		}
		answer, err := c.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			return choices[0].Value, nil
		}
		if index, convErr := strconv.Atoi(answer); convErr == nil && index >= 1 && index <= len(choices) {
			return choices[index-1].Value, nil
		}
		if _, err := fmt.Fprintln(c.Out, "Unknown choice."); err != nil {
			return "", err
		}
	}
}

func (c *Console) readLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Unattended answers every question without reading input: confirmations
// get Answer, inputs their default and selections the choice at Choice.
type Unattended struct {
	Answer bool
	Choice int
}

func (u Unattended) Confirm(string) (bool, error) {
	return u.Answer, nil
}

func (u Unattended) Input(_ string, defaultValue string) (string, error) {
	return defaultValue, nil
}

func (u Unattended) Select(message string, choices []Choice) (string, error) {
	if u.Choice < 0 || u.Choice >= len(choices) {
		return "", fmt.Errorf("select %q: choice %d out of range", message, u.Choice)
	}
	return choices[u.Choice].Value, nil
}
