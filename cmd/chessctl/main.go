// chessctl drives a chess-server from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	"github.com/park285/cheese-chess/internal/client"
	appcfg "github.com/park285/cheese-chess/internal/config"
	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

const usageText = `usage: chessctl [-server URL] <command> [args]

commands:
  new [-fen FEN]               start a game and print its id
  show <id>                    print the board
  moves <id> <square>          list destinations of the piece on square
  click <id> <square>          select a piece or move the selected one
  move <id> <from> <to>        move a piece
  save <id> [slot]             save the position
  load <id> [slot]             replace the position from a save
  fen <id>                     print the position as FEN
  png <id> [-o file] [-coords] write the board image
  watch <id>                   follow the game until it ends
  results [-limit N]           list finished games
`

type app struct {
	client    *client.Client
	formatter *chesspresenter.Formatter
	out       io.Writer
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"new":     cmdNew,
	"show":    cmdShow,
	"moves":   cmdMoves,
	"click":   cmdClick,
	"move":    cmdMove,
	"save":    cmdSave,
	"load":    cmdLoad,
	"fen":     cmdFEN,
	"png":     cmdPNG,
	"watch":   cmdWatch,
	"results": cmdResults,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "chessctl:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	defaultURL := "http://localhost:8080"
	if cfg, err := appcfg.Load(); err == nil {
		defaultURL = cfg.ServerURL
	}

	fs := flag.NewFlagSet("chessctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", defaultURL, "chess-server base URL")
	timeout := fs.Duration("timeout", 10*time.Second, "per-request timeout")
	fs.Usage = func() { fmt.Fprint(stderr, usageText) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return flag.ErrHelp
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fs.Usage()
		return fmt.Errorf("unknown command %q", name)
	}

	cat, err := msgcat.New(os.Getenv("CHESS_MESSAGES_DIR"))
	if err != nil {
		return err
	}
	a := &app{
		client:    client.New(*server, client.WithTimeout(*timeout)),
		formatter: chesspresenter.NewFormatter(cat),
		out:       stdout,
	}
	return cmd(ctx, a, fs.Args()[1:])
}

func (a *app) presenter(imagePath string) *chesspresenter.Presenter {
	return chesspresenter.NewPresenter(
		func(message string) error {
			_, err := fmt.Fprintln(a.out, message)
			return err
		},
		func(png []byte) error {
			if err := os.WriteFile(imagePath, png, 0o644); err != nil {
				return err
			}
			_, err := fmt.Fprintf(a.out, "wrote %s (%d bytes)\n", imagePath, len(png))
			return err
		},
	)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// showAction prints a response message followed by the board.
func (a *app) showAction(resp *chessdto.ActionResponse) error {
	msg := a.formatter.Board(resp.Session)
	if resp.Message != "" {
		msg = resp.Message + "\n" + msg
	}
	return a.presenter("").Board(msg, nil)
}

func needArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: chessctl %s", usage)
	}
	return nil
}

func cmdNew(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	fen := fs.String("fen", "", "start position")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resp, err := a.client.CreateSession(ctx, *fen)
	if err != nil {
		return describe(err)
	}
	a.printf("session %s\n", resp.Session.SessionID)
	return a.showAction(resp)
}

func cmdShow(ctx context.Context, a *app, args []string) error {
	if err := needArgs(args, 1, "show <id>"); err != nil {
		return err
	}
	view, err := a.client.Session(ctx, args[0])
	if err != nil {
		return describe(err)
	}
	return a.presenter("").Board(a.formatter.Board(view), nil)
}

func cmdMoves(ctx context.Context, a *app, args []string) error {
	if err := needArgs(args, 2, "moves <id> <square>"); err != nil {
		return err
	}
	resp, err := a.client.Destinations(ctx, args[0], args[1])
	if err != nil {
		return describe(err)
	}
	if len(resp.Destinations) == 0 {
		a.printf("%s: no moves\n", resp.Square)
		return nil
	}
	a.printf("%s: %s\n", resp.Square, strings.Join(resp.Destinations, " "))
	return nil
}

func cmdClick(ctx context.Context, a *app, args []string) error {
	if err := needArgs(args, 2, "click <id> <square>"); err != nil {
		return err
	}
	resp, err := a.client.Click(ctx, args[0], args[1])
	if err != nil {
		return describe(err)
	}
	return a.showAction(resp)
}

func cmdMove(ctx context.Context, a *app, args []string) error {
	if err := needArgs(args, 3, "move <id> <from> <to>"); err != nil {
		return err
	}
	resp, err := a.client.Move(ctx, args[0], args[1], args[2])
	if err != nil {
		return describe(err)
	}
	return a.showAction(resp)
}

func optionalSlot(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return ""
}

func cmdSave(ctx context.Context, a *app, args []string) error {
	if err := needArgs(args, 1, "save <id> [slot]"); err != nil {
		return err
	}
	resp, err := a.client.Save(ctx, args[0], optionalSlot(args))
	if err != nil {
		return describe(err)
	}
	a.printf("%s\n", resp.Message)
	return nil
}

func cmdLoad(ctx context.Context, a *app, args []string) error {
	if err := needArgs(args, 1, "load <id> [slot]"); err != nil {
		return err
	}
	resp, err := a.client.Load(ctx, args[0], optionalSlot(args))
	if err != nil {
		return describe(err)
	}
	return a.showAction(resp)
}

func cmdFEN(ctx context.Context, a *app, args []string) error {
	if err := needArgs(args, 1, "fen <id>"); err != nil {
		return err
	}
	fen, err := a.client.FEN(ctx, args[0])
	if err != nil {
		return describe(err)
	}
	a.printf("%s\n", fen)
	return nil
}

func cmdPNG(ctx context.Context, a *app, args []string) error {
	if err := needArgs(args, 1, "png <id> [-o file] [-coords]"); err != nil {
		return err
	}
	fs := flag.NewFlagSet("png", flag.ContinueOnError)
	outPath := fs.String("o", "board.png", "output file")
	coords := fs.Bool("coords", false, "draw rank and file labels")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	png, err := a.client.BoardPNG(ctx, args[0], *coords)
	if err != nil {
		return describe(err)
	}
	return a.presenter(*outPath).Board("", png)
}

func cmdWatch(ctx context.Context, a *app, args []string) error {
	if err := needArgs(args, 1, "watch <id>"); err != nil {
		return err
	}
	p := a.presenter("")
	return a.client.Watch(ctx, args[0], func(ev *chessdto.SessionEvent) bool {
		msg := a.formatter.Outcome(ev.Outcome, ev.Session)
		board := a.formatter.Board(ev.Session)
		if msg != "" {
			board = msg + "\n" + board
		}
		_ = p.Board(fmt.Sprintf("[%s]\n%s\n", ev.Kind, board), nil)
		return ev.Kind != "checkmate"
	})
}

func cmdResults(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("results", flag.ContinueOnError)
	limit := fs.Int("limit", 10, "number of games")
	if err := fs.Parse(args); err != nil {
		return err
	}
	games, err := a.client.Results(ctx, *limit)
	if err != nil {
		return describe(err)
	}
	a.printf("%s\n", a.formatter.History(games))
	return nil
}

// describe prefers the server's message for API errors.
func describe(err error) error {
	var se *client.StatusError
	if errors.As(err, &se) && se.Domain.Message != "" {
		return errors.New(se.Domain.Message)
	}
	return err
}
