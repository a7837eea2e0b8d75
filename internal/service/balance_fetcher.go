package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tron-balance-bot/internal/domain"
	"tron-balance-bot/internal/provider"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AccountSource interface {
	FetchAccount(ctx context.Context, address string) (*provider.TronAccount, error)
}

type TokenListSource interface {
	TokenEndpoints() []string
	FetchTokens(ctx context.Context, endpoint, address string) ([]domain.TokenBalance, error)
}

// BalanceFetcher resolves native and token balances for an address.
type BalanceFetcher struct {
	tracer    trace.Tracer
	logger    *zap.Logger
	primary   AccountSource
	secondary TokenListSource
}

func NewBalanceFetcher(tracer trace.Tracer, logger *zap.Logger, primary AccountSource, secondary TokenListSource) *BalanceFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceFetcher{
		tracer:    tracer,
		logger:    logger.Named("balance-fetcher"),
		primary:   primary,
		secondary: secondary,
	}
}

// Fetch never returns an error; failures are reported in the result.
func (f *BalanceFetcher) Fetch(ctx context.Context, address string) domain.FetchResult {
	ctx, span := f.tracer.Start(ctx, "balance-fetcher.fetch")
	defer span.End()

	address = strings.TrimSpace(address)
	chain := domain.Classify(address)
	span.SetAttributes(attribute.String("wallet.address", address), attribute.String("wallet.chain", string(chain)))

	switch chain {
	case domain.ChainTron:
		return f.fetchTron(ctx, address)
	case domain.ChainEthereum, domain.ChainBitcoin:
		return domain.FailedFetch(chain, fmt.Sprintf("%s not supported", chain))
	default:
		return domain.FailedFetch(domain.ChainUnknown, "unrecognized address format")
	}
}

func (f *BalanceFetcher) fetchTron(ctx context.Context, address string) domain.FetchResult {
	account, err := f.primary.FetchAccount(ctx, address)
	if errors.Is(err, provider.ErrAccountNotFound) {
		return domain.FailedFetch(domain.ChainTron, "wallet not found")
	}
	if err != nil {
		f.logger.Warn("primary balance source failed", zap.String("address", address), zap.Error(err))
		return domain.FailedFetch(domain.ChainTron, err.Error())
	}

	lists := f.fetchSecondary(ctx, address)
	lists = append(lists, account.Tokens)

	return domain.FetchResult{
		Success:           true,
		Chain:             domain.ChainTron,
		NativeCoinBalance: account.NativeBalance,
		Tokens:            mergeTokens(lists...),
	}
}

// fetchSecondary queries every token-list endpoint concurrently. A failing
// endpoint contributes an empty list.
func (f *BalanceFetcher) fetchSecondary(ctx context.Context, address string) [][]domain.TokenBalance {
	if f.secondary == nil {
		return nil
	}
	endpoints := f.secondary.TokenEndpoints()
	lists := make([][]domain.TokenBalance, len(endpoints))

	var g errgroup.Group
	for i, endpoint := range endpoints {
		g.Go(func() error {
			tokens, err := f.secondary.FetchTokens(ctx, endpoint, address)
			if err != nil {
				f.logger.Warn("secondary token source failed",
					zap.String("endpoint", endpoint),
					zap.String("address", address),
					zap.Error(err),
				)
				return nil
			}
			lists[i] = tokens
			return nil
		})
	}
	_ = g.Wait()
	return lists
}

// mergeTokens concatenates lists keeping the first token seen per contract.
func mergeTokens(lists ...[]domain.TokenBalance) []domain.TokenBalance {
	seen := make(map[string]struct{})
	var merged []domain.TokenBalance
	for _, list := range lists {
		for _, tok := range list {
			if tok.Balance <= 0 || tok.ContractAddress == "" {
				continue
			}
			if _, dup := seen[tok.ContractAddress]; dup {
				continue
			}
			seen[tok.ContractAddress] = struct{}{}
			merged = append(merged, tok)
		}
	}
	return merged
}
