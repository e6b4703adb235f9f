package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bearcrabs/bookbot/internal/ports"
	"go.uber.org/zap"
)

var _ ports.MessageHandler = (*Dispatcher)(nil)

// Dispatcher routes inbound messages. Known commands are never claimed by a
// session; any other text, including prefixed text that names no command, is
// offered to the dialogue engine first.
type Dispatcher struct {
	engine    *Engine
	readings  ports.ReadingRegistry
	reviews   ports.ReviewStore
	messenger ports.Messenger
	users     ports.UserDirectory
	cfg       DispatcherConfig
	logger    *zap.Logger
}

func NewDispatcher(
	engine *Engine,
	readings ports.ReadingRegistry,
	reviews ports.ReviewStore,
	messenger ports.Messenger,
	users ports.UserDirectory,
	cfg DispatcherConfig,
	logger *zap.Logger,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		engine:    engine,
		readings:  readings,
		reviews:   reviews,
		messenger: messenger,
		users:     users,
		cfg:       cfg.withDefaults(),
		logger:    logger.Named("dispatcher"),
	}
}

func (d *Dispatcher) Prefix() string {
	return d.cfg.Prefix
}

func (d *Dispatcher) HandleMessage(ctx context.Context, msg domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd, ok := ParseCommand(d.cfg.Prefix, msg.Text)
	if ok && KnownCommand(cmd.Name) {
		return d.settle(msg, cmd.Name, d.HandleCommand(ctx, cmd, msg))
	}

	claimed, err := d.engine.Handle(ctx, msg)
	if claimed || !ok {
		return d.settle(msg, "", err)
	}
	return d.settle(msg, cmd.Name, d.HandleCommand(ctx, cmd, msg))
}

func (d *Dispatcher) HandleCommand(ctx context.Context, cmd Command, msg domain.Message) error {
	switch cmd.Name {
	case CommandReview:
		return d.review(ctx, cmd, msg)
	case CommandReading, CommandCurrentlyReading:
		return d.reading(ctx, cmd, msg)
	case CommandClearReading:
		return d.clearReading(ctx, msg)
	case CommandMyReviews:
		return d.listReviews(ctx, msg, msg.Author)
	case CommandReviews:
		return d.reviewsOf(ctx, cmd, msg)
	case CommandCancel:
		return d.cancel(ctx, msg)
	case CommandHelp, CommandBookHelp:
		return d.messenger.SendText(ctx, msg.Channel, d.help())
	default:
		return d.messenger.SendText(ctx, msg.Channel, unknownCommandText(d.cfg.Prefix, cmd.Name))
	}
}

func (d *Dispatcher) review(ctx context.Context, cmd Command, msg domain.Message) error {
	if cmd.Args == "" {
		return d.messenger.SendText(ctx, msg.Channel, emptyQueryText(d.cfg.Prefix, cmd.Name))
	}
	if query, draft, ok := ParseQuickReview(cmd.Args); ok {
		return d.engine.OpenDraft(ctx, msg.Author, msg.Channel, query, draft)
	}
	return d.engine.Open(ctx, domain.SessionKindReview, msg.Author, msg.Channel, cmd.Args)
}

func (d *Dispatcher) reading(ctx context.Context, cmd Command, msg domain.Message) error {
	if cmd.Args == "" && len(msg.Mentions) == 0 {
		return d.showReading(ctx, msg, msg.Author)
	}

	user, found, err := d.referencedUser(ctx, cmd, msg)
	if err != nil {
		return err
	}
	if found {
		return d.showReading(ctx, msg, user)
	}
	if isUserReference(cmd.Args) {
		return d.messenger.SendText(ctx, msg.Channel, userNotFoundText(cmd.Args))
	}

	return d.engine.Open(ctx, domain.SessionKindSetReading, msg.Author, msg.Channel, cmd.Args)
}

func (d *Dispatcher) showReading(ctx context.Context, msg domain.Message, user domain.User) error {
	entry, err := d.readings.Get(ctx, user.ID)
	if errors.Is(err, domain.ErrReadingNotFound) {
		if user.ID == msg.Author.ID {
			return d.messenger.SendText(ctx, msg.Channel, noReadingSelfText(d.cfg.Prefix))
		}
		return d.messenger.SendText(ctx, msg.Channel, noReadingOtherText(user))
	}
	if err != nil {
		return fmt.Errorf("get reading: %w", err)
	}

	if entry.UserName == "" || user.DisplayName != "" {
		entry.UserName = user.Name()
	}
	return d.messenger.SendCard(ctx, msg.Channel, readingCard(entry))
}

func (d *Dispatcher) clearReading(ctx context.Context, msg domain.Message) error {
	cleared, err := d.readings.Clear(ctx, msg.Author.ID)
	if err != nil {
		return fmt.Errorf("clear reading: %w", err)
	}
	if !cleared {
		return d.messenger.SendText(ctx, msg.Channel, nothingToClearText())
	}
	return d.messenger.SendText(ctx, msg.Channel, readingClearedText(msg.Author))
}

func (d *Dispatcher) reviewsOf(ctx context.Context, cmd Command, msg domain.Message) error {
	if cmd.Args == "" && len(msg.Mentions) == 0 {
		return d.listReviews(ctx, msg, msg.Author)
	}

	user, found, err := d.referencedUser(ctx, cmd, msg)
	if err != nil {
		return err
	}
	if !found {
		return d.messenger.SendText(ctx, msg.Channel, userNotFoundText(cmd.Args))
	}
	return d.listReviews(ctx, msg, user)
}

func (d *Dispatcher) listReviews(ctx context.Context, msg domain.Message, user domain.User) error {
	all, err := d.reviews.List(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list reviews: %w", err)
	}
	self := user.ID == msg.Author.ID
	if len(all) == 0 {
		return d.messenger.SendText(ctx, msg.Channel, noReviewsText(user, self))
	}

	recent, err := d.reviews.ListRecent(ctx, user.ID, d.cfg.ListLimit)
	if err != nil {
		return fmt.Errorf("list recent reviews: %w", err)
	}
	if err := d.messenger.SendText(ctx, msg.Channel, reviewsHeaderText(user, len(recent), len(all))); err != nil {
		return err
	}
	for _, review := range recent {
		if err := d.messenger.SendCard(ctx, msg.Channel, reviewCard(review)); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) cancel(ctx context.Context, msg domain.Message) error {
	cancelled, err := d.engine.Cancel(ctx, msg.Author, msg.Channel)
	if err != nil {
		return err
	}
	if !cancelled {
		return d.messenger.SendText(ctx, msg.Channel, noSessionText(msg.Author))
	}
	return nil
}

// referencedUser resolves the user a command points at. Mentions win over the
// argument text; an argument that is not a user reference reports found=false.
func (d *Dispatcher) referencedUser(ctx context.Context, cmd Command, msg domain.Message) (domain.User, bool, error) {
	if len(msg.Mentions) > 0 {
		return msg.Mentions[0], true, nil
	}
	if d.users == nil || cmd.Args == "" {
		return domain.User{}, false, nil
	}

	user, err := d.users.ResolveUser(ctx, msg.Channel, cmd.Args)
	switch {
	case err == nil:
		return user, true, nil
	case errors.Is(err, domain.ErrUserNotFound):
		return domain.User{}, false, nil
	default:
		return domain.User{}, false, fmt.Errorf("resolve user: %w", err)
	}
}

// isUserReference reports whether args is written as an "@name" or a mention rather than a book title.
func isUserReference(args string) bool {
	return strings.HasPrefix(args, "@") || strings.HasPrefix(args, "<@")
}

func (d *Dispatcher) help() string {
	cfg := d.engine.Config()
	return helpText(d.cfg.Prefix, cfg.CancelToken, cfg.SkipToken)
}

// settle logs user-caused failures and drops them; anything else is returned to the gateway.
func (d *Dispatcher) settle(msg domain.Message, command string, err error) error {
	if err == nil {
		return nil
	}

	fields := []zap.Field{
		zap.String("user", string(msg.Author.ID)),
		zap.String("channel", string(msg.Channel)),
		zap.Error(err),
	}
	if command != "" {
		fields = append(fields, zap.String("command", command))
	}

	if expectedError(err) {
		d.logger.Debug("message rejected", fields...)
		return nil
	}
	d.logger.Warn("message handling failed", fields...)
	return err
}

func expectedError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput,
		domain.ErrInvalidRating,
		domain.ErrSessionConflict,
		domain.ErrNoCandidates,
		domain.ErrEmptyQuery,
		domain.ErrProviderUnavailable,
		domain.ErrMalformedResponse,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

