package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/bearcrabs/bookbot/internal/adapters/render/terminal"
	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bearcrabs/bookbot/internal/ports"
	"go.uber.org/zap"
)

const (
	DefaultUser    = "reader"
	DefaultChannel = "general"
	botName        = "bookbot"
	userIDPrefix   = "console:"
	maxLineBytes   = 64 << 10
)

type Options struct {
	User    string
	Channel string
	Logger  *zap.Logger
}

// Console is a line-oriented gateway for local use. Lines are delivered to the
// handler one at a time, in order.
type Console struct {
	in     io.Reader
	out    io.Writer
	logger *zap.Logger

	outMu sync.Mutex

	mu      sync.Mutex
	user    domain.User
	channel domain.ChannelID
	known   map[string]domain.User
}

var (
	_ ports.Messenger     = (*Console)(nil)
	_ ports.UserDirectory = (*Console)(nil)
)

func New(in io.Reader, out io.Writer, opts Options) *Console {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	name := strings.TrimSpace(opts.User)
	if name == "" {
		name = DefaultUser
	}
	channel := strings.TrimSpace(opts.Channel)
	if channel == "" {
		channel = DefaultChannel
	}

	c := &Console{
		in:      in,
		out:     out,
		logger:  logger.Named("console"),
		channel: domain.ChannelID(strings.TrimPrefix(channel, "#")),
		known:   make(map[string]domain.User),
	}
	c.user = c.register(name)
	return c
}

// Run reads lines until EOF, "/quit" or ctx is done.
func (c *Console) Run(ctx context.Context, handler ports.MessageHandler) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	c.printf("Connected to #%s as %s. Type /help for console commands.\n", c.currentChannel(), c.currentUser().Name())

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read console input: %w", err)
					}
				default:
				}
				return nil
			}
			quit, err := c.handleLine(ctx, handler, line)
			if err != nil {
				c.logger.Warn("handle console message failed", zap.Error(err))
			}
			if quit {
				return nil
			}
		}
	}
}

func (c *Console) handleLine(ctx context.Context, handler ports.MessageHandler, line string) (bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false, nil
	}

	if strings.HasPrefix(trimmed, "/") {
		return c.consoleCommand(trimmed)
	}

	msg := domain.Message{
		Author:  c.currentUser(),
		Channel: c.currentChannel(),
		Text:    trimmed,
	}
	return false, handler.HandleMessage(ctx, msg)
}

func (c *Console) consoleCommand(line string) (bool, error) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "quit", "exit":
		return true, nil
	case "as":
		if arg == "" {
			return false, errors.New("usage: /as <name>")
		}
		user := c.register(strings.TrimPrefix(arg, "@"))
		c.mu.Lock()
		c.user = user
		c.mu.Unlock()
		c.printf("Now speaking as %s.\n", user.Name())
	case "channel":
		if arg == "" {
			return false, errors.New("usage: /channel <name>")
		}
		c.mu.Lock()
		c.channel = domain.ChannelID(strings.TrimPrefix(arg, "#"))
		c.mu.Unlock()
		c.printf("Now in #%s.\n", c.currentChannel())
	case "whoami":
		c.printf("%s in #%s\n", c.currentUser().Name(), c.currentChannel())
	case "help":
		c.printf("%s\n", strings.Join([]string{
			"/as <name>       speak as another user",
			"/channel <name>  move to another channel",
			"/whoami          show the current user and channel",
			"/quit            leave the chat",
		}, "\n"))
	default:
		return false, fmt.Errorf("unknown console command %q", name)
	}
	return false, nil
}

func (c *Console) SendText(ctx context.Context, channel domain.ChannelID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rendered, err := terminal.RenderReply(c.speaker(channel), text)
	if err != nil {
		return fmt.Errorf("render reply: %w", err)
	}
	c.printf("%s\n", rendered)
	return nil
}

func (c *Console) SendCard(ctx context.Context, channel domain.ChannelID, card ports.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rendered, err := terminal.RenderCard(card)
	if err != nil {
		return fmt.Errorf("render card: %w", err)
	}
	if channel != c.currentChannel() {
		c.printf("[#%s]\n", channel)
	}
	c.printf("%s\n", rendered)
	return nil
}

// ResolveUser knows every name that has spoken through /as or the initial user.
func (c *Console) ResolveUser(_ context.Context, _ domain.ChannelID, reference string) (domain.User, error) {
	name, ok := strings.CutPrefix(strings.TrimSpace(reference), "@")
	if !ok || name == "" {
		return domain.User{}, domain.ErrUserNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	user, ok := c.known[strings.ToLower(name)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (c *Console) register(name string) domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(name)
	if user, ok := c.known[key]; ok {
		return user
	}
	user := domain.User{ID: domain.UserID(userIDPrefix + key), DisplayName: name}
	c.known[key] = user
	return user
}

func (c *Console) speaker(channel domain.ChannelID) string {
	if channel != c.currentChannel() {
		return fmt.Sprintf("%s [#%s]", botName, channel)
	}
	return botName
}

func (c *Console) currentUser() domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

func (c *Console) currentChannel() domain.ChannelID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

func (c *Console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	_, _ = fmt.Fprintf(c.out, format, args...)
}
