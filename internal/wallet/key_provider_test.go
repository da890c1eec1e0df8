package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// well-known development key (anvil/hardhat account #0)
const devKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

type fakeKeyBackend struct {
	nonce    uint64
	sent     []*types.Transaction
	estimate error
}

func (b *fakeKeyBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return b.nonce, nil
}

func (b *fakeKeyBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (b *fakeKeyBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 60_000, b.estimate
}

func (b *fakeKeyBackend) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(31337), nil
}

func (b *fakeKeyBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	b.sent = append(b.sent, tx)
	return nil
}

func TestKeyProviderAccounts(t *testing.T) {
	p, err := NewKeyProvider(devKey, &fakeKeyBackend{})
	require.NoError(t, err)

	accounts, err := p.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"}, accounts)
}

func TestKeyProviderInvalidKey(t *testing.T) {
	_, err := NewKeyProvider("not-a-key", &fakeKeyBackend{})
	assert.Error(t, err)
}

func TestKeyProviderSignsAndBroadcasts(t *testing.T) {
	backend := &fakeKeyBackend{nonce: 7}
	p, err := NewKeyProvider(devKey, backend)
	require.NoError(t, err)

	token := common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	hash, err := p.SendTransaction(context.Background(), Transaction{
		From: p.Address(),
		To:   token,
		Data: []byte{0xa9, 0x05, 0x9c, 0xbb},
	})
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)

	tx := backend.sent[0]
	assert.Equal(t, hash, tx.Hash())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(60_000), tx.Gas())
	assert.Equal(t, token, *tx.To())
	assert.Zero(t, tx.Value().Sign())

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), tx)
	require.NoError(t, err)
	assert.Equal(t, p.Address(), sender)
}

func TestKeyProviderRefusesForeignSender(t *testing.T) {
	backend := &fakeKeyBackend{}
	p, err := NewKeyProvider(devKey, backend)
	require.NoError(t, err)

	other, err := crypto.GenerateKey()
	require.NoError(t, err)

	_, err = p.SendTransaction(context.Background(), Transaction{
		From: crypto.PubkeyToAddress(other.PublicKey),
		To:   common.HexToAddress("0x01"),
	})
	assert.Error(t, err)
	assert.Empty(t, backend.sent)
}

func TestKeyProviderEstimateFailure(t *testing.T) {
	backend := &fakeKeyBackend{estimate: errors.New("execution reverted")}
	p, err := NewKeyProvider(devKey, backend)
	require.NoError(t, err)

	_, err = p.SendTransaction(context.Background(), Transaction{From: p.Address(), To: common.HexToAddress("0x01")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execution reverted")
	assert.Empty(t, backend.sent)
}

func TestKeyProviderListenersNeverFire(t *testing.T) {
	p, err := NewKeyProvider(devKey, &fakeKeyBackend{})
	require.NoError(t, err)

	unsubscribe := p.OnAccountsChanged(func([]string) { t.Fatal("key account cannot change") })
	assert.Equal(t, 1, p.listeners.count())
	unsubscribe()
	assert.Zero(t, p.listeners.count())
}
