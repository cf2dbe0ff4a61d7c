package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/skosovsky/genbridge"
	"github.com/skosovsky/genbridge/internal/media"
	"github.com/skosovsky/genbridge/mediafetch"
)

type repl struct {
	session *genbridge.Session
	out     io.Writer
	logger  *slog.Logger
	fetch   *mediafetch.Fetcher
	pending []genbridge.ImageBlob
}

// run initializes a session with modelCfg and serves chat lines from in until EOF, /quit or ctx is done.
func run(ctx context.Context, p genbridge.Provider, modelCfg genbridge.ModelConfig, in io.Reader, out io.Writer, logger *slog.Logger) error {
	s := genbridge.New(p, genbridge.WithLogger(logger))
	if err := s.InitModel(ctx, modelCfg); err != nil {
		return err
	}
	if err := s.InitChat(ctx, nil); err != nil {
		return err
	}
	logger.Info("chat ready", logAttrs(modelCfg)...)
	r := &repl{session: s, out: out, logger: logger, fetch: mediafetch.New()}

	lines := bufio.NewScanner(in)
	lines.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, "> ")
		if !lines.Scan() {
			fmt.Fprintln(out)
			return lines.Err()
		}
		line := strings.TrimSpace(lines.Text())
		if line == "" {
			continue
		}
		quit, err := r.handle(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			logger.Debug("command failed", "err", err)
		}
		if quit {
			return nil
		}
	}
}

func (r *repl) handle(ctx context.Context, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "/quit", "/exit":
		return true, nil
	case "/tokens":
		n, err := r.session.CountChatTokens(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "%d tokens\n", n)
	case "/history":
		turns, err := r.session.ChatHistory(ctx)
		if err != nil {
			return false, err
		}
		for _, t := range turns {
			printTurn(r.out, t)
		}
	case "/reset":
		r.pending = nil
		return false, r.session.InitChat(ctx, nil)
	case "/image":
		img, err := r.loadImage(ctx, strings.TrimSpace(arg))
		if err != nil {
			return false, err
		}
		r.pending = append(r.pending, img)
		fmt.Fprintf(r.out, "attached %s (%d pending)\n", img.MIMEType, len(r.pending))
	default:
		if strings.HasPrefix(cmd, "/") {
			return false, fmt.Errorf("unknown command %s", cmd)
		}
		return false, r.send(ctx, line)
	}
	return false, nil
}

func (r *repl) send(ctx context.Context, text string) error {
	opts := []genbridge.CallOption{genbridge.WithChunkHandler(func(chunk string) {
		fmt.Fprint(r.out, chunk)
	})}
	if len(r.pending) > 0 {
		opts = append(opts, genbridge.WithImages(r.pending...))
	}
	_, err := r.session.SendChatMessage(ctx, text, opts...)
	fmt.Fprintln(r.out)
	if err != nil {
		return err
	}
	r.pending = nil
	return nil
}

func printTurn(w io.Writer, t genbridge.ChatTurn) {
	who := "model"
	if t.IsUser {
		who = "user"
	}
	for _, p := range t.Parts {
		if p.Type == genbridge.PartTypeText {
			fmt.Fprintf(w, "%s: %s\n", who, p.Content)
			continue
		}
		fmt.Fprintf(w, "%s: [%s, %d base64 chars]\n", who, p.Type, len(p.Content))
	}
}

// loadImage reads a local file, or downloads the image when path is an https URL.
func (r *repl) loadImage(ctx context.Context, path string) (genbridge.ImageBlob, error) {
	if path == "" {
		return genbridge.ImageBlob{}, errors.New("usage: /image <path|https-url>")
	}
	if strings.HasPrefix(path, "https://") {
		return r.fetch.Image(ctx, path)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path typed by the interactive user
	if err != nil {
		return genbridge.ImageBlob{}, err
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = media.DefaultMIMEType
	}
	return genbridge.ImageBlob{MIMEType: mimeType, Data: media.Encode(data)}, nil
}
