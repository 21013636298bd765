package fetcher

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"stakewatch/internal/analysis"
)

const (
	erc20ABIJSON = `[{"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

	selectorLength = 4
)

var erc20ABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		panic("failed to parse ERC-20 ABI: " + err.Error())
	}
	erc20ABI = parsed
}

// ChainOptions parameterise the on-chain scanner.
type ChainOptions struct {
	RPCURL          string
	StakingContract string
	TokenContract   string
	TokenDecimals   int
	BlocksPerDay    int64
	ScanStep        int64
	Timeout         time.Duration
}

// Chain scans blocks for staking contract transactions and reads the
// contract's token balance over Ethereum RPC.
type Chain struct {
	opts      ChainOptions
	logger    zerolog.Logger
	client    *ethclient.Client
	clientMux sync.Mutex
}

// NewChain builds a new chain scanner.
func NewChain(opts ChainOptions, logger zerolog.Logger) *Chain {
	return &Chain{opts: opts, logger: logger.With().Str("component", "chain_fetcher").Logger()}
}

// FetchEvents walks the block range covering the requested days and
// collects every transaction addressed to the staking contract. Blocks
// are sampled at the configured step; the selector is the leading four
// bytes of calldata and the amount comes from the first uint256
// argument when one is present, the transaction value otherwise.
func (c *Chain) FetchEvents(ctx context.Context, days int) ([]analysis.RawEvent, error) {
	if c.opts.RPCURL == "" {
		return nil, errors.New("ethereum rpc url not configured")
	}
	if c.opts.StakingContract == "" {
		return nil, errors.New("staking contract address not configured")
	}
	if days < 1 {
		return nil, errors.New("days must be at least 1")
	}

	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}

	latest, err := c.latestBlock(ctx, client)
	if err != nil {
		return nil, err
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	signer := types.LatestSignerForChainID(chainID)

	span := int64(days) * c.opts.BlocksPerDay
	from := int64(latest) - span
	if from < 0 {
		from = 0
	}

	step := c.opts.ScanStep
	if step <= 0 {
		step = 1
	}

	staking := common.HexToAddress(c.opts.StakingContract)
	events := make([]analysis.RawEvent, 0)

	c.logger.Info().
		Int64("from_block", from).
		Uint64("to_block", latest).
		Int64("step", step).
		Msg("scanning staking transactions")

	for number := from; number < int64(latest); number += step {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		block, err := c.fetchBlock(ctx, client, number)
		if err != nil {
			c.logger.Debug().Err(err).Int64("block", number).Msg("skipping unavailable block")
			continue
		}

		blockTime := time.Unix(int64(block.Time()), 0).UTC()
		for _, tx := range block.Transactions() {
			if tx.To() == nil || *tx.To() != staking {
				continue
			}
			data := tx.Data()
			if len(data) < selectorLength {
				continue
			}

			sender, err := types.Sender(signer, tx)
			if err != nil {
				c.logger.Debug().Err(err).Str("tx", tx.Hash().Hex()).Msg("cannot recover sender")
				continue
			}

			events = append(events, analysis.RawEvent{
				TxHash:    strings.ToLower(tx.Hash().Hex()),
				Timestamp: blockTime,
				Sender:    strings.ToLower(sender.Hex()),
				Selector:  "0x" + common.Bytes2Hex(data[:selectorLength]),
				Amount:    c.amountFrom(data, tx.Value()),
			})
		}
	}

	c.logger.Info().Int("events", len(events)).Msg("scan complete")
	return events, nil
}

// FetchStakedBalance reads the token balance held by the staking
// contract via balanceOf.
func (c *Chain) FetchStakedBalance(ctx context.Context) (decimal.Decimal, error) {
	if c.opts.RPCURL == "" {
		return decimal.Decimal{}, errors.New("ethereum rpc url not configured")
	}
	if c.opts.TokenContract == "" {
		return decimal.Decimal{}, errors.New("token contract address not configured")
	}
	if c.opts.StakingContract == "" {
		return decimal.Decimal{}, errors.New("staking contract address not configured")
	}

	client, err := c.getClient(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	token := common.HexToAddress(c.opts.TokenContract)
	holder := common.HexToAddress(c.opts.StakingContract)

	payload, err := erc20ABI.Pack("balanceOf", holder)
	if err != nil {
		return decimal.Decimal{}, err
	}

	res, err := client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: payload}, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}

	outputs, err := erc20ABI.Unpack("balanceOf", res)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(outputs) != 1 {
		return decimal.Decimal{}, errors.New("unexpected balanceOf response")
	}

	raw, ok := outputs[0].(*big.Int)
	if !ok {
		return decimal.Decimal{}, errors.New("failed to decode balanceOf output")
	}

	return decimal.NewFromBigInt(raw, -int32(c.opts.TokenDecimals)), nil
}

// amountFrom decodes the first uint256 calldata argument into whole
// tokens, falling back to the native transfer value.
func (c *Chain) amountFrom(data []byte, value *big.Int) decimal.Decimal {
	if len(data) >= selectorLength+32 {
		arg := new(big.Int).SetBytes(data[selectorLength : selectorLength+32])
		if arg.Sign() > 0 {
			return decimal.NewFromBigInt(arg, -int32(c.opts.TokenDecimals))
		}
	}
	if value != nil && value.Sign() > 0 {
		return decimal.NewFromBigInt(value, -int32(c.opts.TokenDecimals))
	}
	return decimal.Zero
}

func (c *Chain) latestBlock(ctx context.Context, client *ethclient.Client) (uint64, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()
	return client.BlockNumber(ctx)
}

func (c *Chain) fetchBlock(ctx context.Context, client *ethclient.Client, number int64) (*types.Block, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()
	return client.BlockByNumber(ctx, big.NewInt(number))
}

func (c *Chain) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *Chain) getClient(ctx context.Context) (*ethclient.Client, error) {
	c.clientMux.Lock()
	defer c.clientMux.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	client, err := ethclient.DialContext(ctx, c.opts.RPCURL)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}

var _ EventFetcher = (*Chain)(nil)
var _ BalanceFetcher = (*Chain)(nil)
