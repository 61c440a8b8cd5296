package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/sitestock/internal/domain/models"
	"github.com/mamadbah2/sitestock/internal/service/stock"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates the command is not recognised.
var ErrUnsupportedCommand = errors.New("unsupported command")

const dateFormat = "2006-01-02"

// Usage lists the supported commands.
const Usage = "Supported commands:\n" +
	"/in <site> <material> <qty> <description>\n" +
	"/out <site> <material> <qty> <description>\n" +
	"/value <site> <material> <qty> <description>\n" +
	"/stock <site>"

// StockOperations is the part of the stock service reachable from chat.
type StockOperations interface {
	AppendInbound(ctx context.Context, e stock.Entry) (stock.AppendResult, error)
	AppendOutbound(ctx context.Context, e stock.Entry) (stock.AppendResult, error)
	AppendValue(ctx context.Context, e stock.Entry) (stock.AppendResult, error)
	LatestPerMaterial(ctx context.Context, siteID string) ([]models.LatestEntry, error)
}

// Dispatcher executes parsed chat commands.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface on top of the stock service.
type Service struct {
	stock  StockOperations
	logger *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(stockOps StockOperations, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{stock: stockOps, logger: logger}
}

// HandleCommand runs the command and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandInbound:
		return s.appendEntry(ctx, cmd, s.stock.AppendInbound, "Inbound")
	case models.CommandOutbound:
		return s.appendEntry(ctx, cmd, s.stock.AppendOutbound, "Outbound")
	case models.CommandValue:
		return s.appendEntry(ctx, cmd, s.stock.AppendValue, "Value")
	case models.CommandStock:
		return s.stockSummary(ctx, cmd)
	default:
		return "", ErrUnsupportedCommand
	}
}

type appendFunc func(ctx context.Context, e stock.Entry) (stock.AppendResult, error)

func (s *Service) appendEntry(ctx context.Context, cmd models.Command, fn appendFunc, label string) (string, error) {
	entry, err := buildEntry(cmd)
	if err != nil {
		return "", err
	}

	res, err := fn(ctx, entry)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s of %s recorded for %s. Stock now %s.",
		label, entry.Amount, res.Transaction.Date.Format(dateFormat), res.Transaction.RunningStock), nil
}

func (s *Service) stockSummary(ctx context.Context, cmd models.Command) (string, error) {
	if len(cmd.Args) < 1 {
		return "", ErrInvalidArguments
	}

	rows, err := s.stock.LatestPerMaterial(ctx, cmd.Args[0])
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, fmt.Sprintf("Stock at %s:", cmd.Args[0]))
	for _, r := range rows {
		name := r.MaterialName
		if name == "" {
			name = r.MaterialID
		}
		lines = append(lines, fmt.Sprintf("- %s: %s (last %s)", name, r.LastStock, r.LastDate.Format(dateFormat)))
	}
	return strings.Join(lines, "\n"), nil
}

func buildEntry(cmd models.Command) (stock.Entry, error) {
	if len(cmd.Args) < 4 {
		return stock.Entry{}, ErrInvalidArguments
	}

	amount, err := decimal.NewFromString(cmd.Args[2])
	if err != nil {
		return stock.Entry{}, ErrInvalidArguments
	}

	return stock.Entry{
		SiteID:      cmd.Args[0],
		MaterialID:  cmd.Args[1],
		Amount:      amount,
		Description: strings.Join(cmd.Args[3:], " "),
	}, nil
}
