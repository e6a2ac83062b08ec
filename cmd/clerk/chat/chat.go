// Package chatcmder provides an interactive terminal chat session against
// the locally wired assistant.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/counterware/clerk/pkg/agent"
	"github.com/counterware/clerk/pkg/bootstrap"
	"github.com/counterware/clerk/pkg/config"
	"github.com/counterware/clerk/pkg/logger"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("clerk> ")
	interruptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

const chatLongDesc string = `Start an interactive chat session in the terminal.

Each line is one turn. When the assistant needs input mid-turn (a
clarification, or confirmation before a web search) it asks inline and the
next line you type answers it.

Type "exit" or press Ctrl-D to quit.

Examples:
  clerk chat
  clerk chat --thread my-session`

const chatShortDesc string = "Interactive chat session in the terminal"

type chatCommander struct {
	threadID string
	debug    bool
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), configDir)
		},
	}

	cmd.Flags().StringVarP(&cmder.threadID, "thread", "t", "", "Thread id to continue (default: a fresh thread)")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, configDir string) error {
	log := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	cfg := config.FromViper(v)

	rt, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("wiring runtime: %w", err)
	}
	defer rt.Close()

	threadID := c.threadID
	if threadID == "" {
		threadID = uuid.NewString()
	}
	fmt.Printf("thread: %s\n\n", threadID)

	scanner := bufio.NewScanner(os.Stdin)
	pending := false

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		var result *agent.TurnResult
		if pending {
			result, err = rt.Driver.Resume(ctx, threadID, agent.Resume{Data: line})
		} else {
			result, err = rt.Driver.Turn(ctx, threadID, line)
		}
		if err != nil {
			fmt.Printf("%s %v\n", assistantPrompt, err)
			pending = false
			continue
		}

		if result.Interrupt != nil {
			pending = true
			fmt.Printf("%s %s\n", assistantPrompt, interruptStyle.Render(result.Interrupt.Message))
			continue
		}

		pending = false
		fmt.Printf("%s %s\n", assistantPrompt, result.Answer)
	}

	return scanner.Err()
}
