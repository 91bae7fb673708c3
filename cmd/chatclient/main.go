package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/joho/godotenv"

	"github.com/Tyrowin/gochat-presence/internal/chat"
	"github.com/Tyrowin/gochat-presence/internal/client"
	"github.com/Tyrowin/gochat-presence/internal/typing"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatclient: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	color.Enable = cfg.Colours

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, err := client.Dial(dialCtx, cfg.ServerURL, cfg.Origin)
	cancel()
	if err != nil {
		return exitRuntime, err
	}
	defer func() { _ = conn.Close() }()

	if err := conn.Register(cfg.Name); err != nil {
		return exitRuntime, fmt.Errorf("register: %w", err)
	}

	term := newTerminal(os.Stdout, cfg.Colours)
	term.Help()

	indicator := typing.NewIndicator(typing.DefaultSafety, term.ShowTyping)
	defer indicator.Close()

	typist := newTypingSender(typing.DefaultIdle, conn.Typing)
	defer typist.Stop()

	lines := readLines(os.Stdin)
	var pending []string

	for {
		select {
		case <-ctx.Done():
			return exitOK, nil

		case evt, ok := <-conn.Events():
			if !ok {
				if err := conn.Err(); err != nil {
					return exitRuntime, fmt.Errorf("connection lost: %w", err)
				}
				return exitOK, nil
			}
			if evt.Type == chat.EventTyping {
				indicator.Observe(evt.Typing.From, evt.Typing.Typing)
				continue
			}
			if evt.Type == chat.EventMessageReceived {
				indicator.Observe(evt.Message.From.ID, false)
			}
			term.Handle(evt)

		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}

			if cont, found := strings.CutSuffix(line, `\`); found {
				pending = append(pending, cont)
				typist.Touch(term.Target())
				continue
			}

			if len(pending) == 0 {
				if cmd, isCmd := parseCommand(line); isCmd {
					if quit := handleCommand(term, cmd); quit {
						return exitOK, nil
					}
					continue
				}
			}

			text := strings.Join(append(pending, line), "\n")
			pending = nil
			typist.Stop()
			if err := conn.Send(term.Target(), text, time.Now().UnixNano()); err != nil {
				return exitRuntime, fmt.Errorf("send: %w", err)
			}
		}
	}
}

func handleCommand(term *terminal, cmd command) (quit bool) {
	switch cmd.name {
	case "quit", "q":
		return true
	case "who":
		term.RenderRoster()
	case "all":
		_ = term.SetTarget(chat.Broadcast)
		term.printf("Now talking to everyone")
	case "to":
		if err := term.SetTarget(cmd.arg); err != nil {
			term.printf("%s", term.paint(color.Red, err.Error()))
			return false
		}
		term.printf("Now talking to %s", cmd.arg)
	default:
		term.Help()
	}
	return false
}

func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
