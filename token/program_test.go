package token

import (
	"crypto/sha256"
	"testing"

	"creatorvault/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memState map[string][]byte

func (m memState) Get(key string) ([]byte, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memState) Set(key string, val []byte) {
	m[key] = append([]byte(nil), val...)
}

func addr(name string) types.Address {
	return types.Address(sha256.Sum256([]byte(name)))
}

func setup(t *testing.T) (*Program, memState, types.Address) {
	t.Helper()
	p := NewProgram(addr("token-program"), addr("associated-program"))
	st := memState{}
	mint := addr("mint")
	require.NoError(t, p.InitializeMint(st, mint, 6, addr("authority")))
	return p, st, mint
}

func TestMintAndTransfer(t *testing.T) {
	p, st, mint := setup(t)
	alice, bob := addr("alice"), addr("bob")

	aliceAcc, err := p.EnsureAssociatedAccount(st, alice, mint)
	require.NoError(t, err)
	bobAcc, err := p.EnsureAssociatedAccount(st, bob, mint)
	require.NoError(t, err)

	require.NoError(t, p.MintTo(st, mint, aliceAcc, 1000, types.NewSigners(addr("authority"))))
	require.NoError(t, p.Transfer(st, aliceAcc, bobAcc, 400, types.NewSigners(alice)))

	a, err := p.Account(st, aliceAcc)
	require.NoError(t, err)
	b, err := p.Account(st, bobAcc)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), a.Amount)
	assert.Equal(t, uint64(400), b.Amount)

	m, err := p.Mint(st, mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), m.Supply)
}

func TestTransferRequiresOwnerSignature(t *testing.T) {
	p, st, mint := setup(t)
	alice, bob := addr("alice"), addr("bob")
	aliceAcc, _ := p.EnsureAssociatedAccount(st, alice, mint)
	bobAcc, _ := p.EnsureAssociatedAccount(st, bob, mint)
	require.NoError(t, p.MintTo(st, mint, aliceAcc, 10, types.NewSigners(addr("authority"))))

	err := p.Transfer(st, aliceAcc, bobAcc, 5, types.NewSigners(bob))
	assert.ErrorIs(t, err, ErrMissingSignature)

	err = p.Transfer(st, aliceAcc, bobAcc, 11, types.NewSigners(alice))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestRevokeMintAuthorityFixesSupply(t *testing.T) {
	p, st, mint := setup(t)
	holder := addr("holder")
	acc, err := p.EnsureAssociatedAccount(st, holder, mint)
	require.NoError(t, err)
	auth := types.NewSigners(addr("authority"))

	require.NoError(t, p.MintTo(st, mint, acc, 1, auth))
	require.NoError(t, p.RevokeMintAuthority(st, mint, auth))

	err = p.MintTo(st, mint, acc, 1, auth)
	assert.ErrorIs(t, err, ErrMintAuthorityRevoked)
	err = p.RevokeMintAuthority(st, mint, auth)
	assert.ErrorIs(t, err, ErrMintAuthorityRevoked)

	m, err := p.Mint(st, mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), m.Supply)
	assert.False(t, m.HasMintAuthority())
}

func TestBurn(t *testing.T) {
	p, st, mint := setup(t)
	holder := addr("holder")
	acc, _ := p.EnsureAssociatedAccount(st, holder, mint)
	require.NoError(t, p.MintTo(st, mint, acc, 3, types.NewSigners(addr("authority"))))

	assert.ErrorIs(t, p.Burn(st, acc, mint, 1, types.NewSigners(addr("stranger"))), ErrMissingSignature)
	require.NoError(t, p.Burn(st, acc, mint, 2, types.NewSigners(holder)))
	assert.ErrorIs(t, p.Burn(st, acc, mint, 2, types.NewSigners(holder)), ErrInsufficientFunds)

	a, _ := p.Account(st, acc)
	m, _ := p.Mint(st, mint)
	assert.Equal(t, uint64(1), a.Amount)
	assert.Equal(t, uint64(1), m.Supply)
}

func TestInitializeRejectsUsedAddress(t *testing.T) {
	p, st, mint := setup(t)
	assert.ErrorIs(t, p.InitializeMint(st, mint, 0, addr("x")), ErrAlreadyInUse)

	acc := addr("plain-account")
	require.NoError(t, p.InitializeAccount(st, acc, mint, addr("owner")))
	assert.ErrorIs(t, p.InitializeAccount(st, acc, mint, addr("owner")), ErrAlreadyInUse)
	assert.ErrorIs(t, p.InitializeAccount(st, addr("other"), addr("no-mint"), addr("owner")), ErrMintNotFound)
}

func TestAccountsOfAnotherProgramAreRejected(t *testing.T) {
	p, st, mint := setup(t)
	other := NewProgram(addr("token-program-2"), addr("associated-program"))

	acc, err := p.EnsureAssociatedAccount(st, addr("owner"), mint)
	require.NoError(t, err)

	_, err = other.Account(st, acc)
	assert.ErrorIs(t, err, ErrNotTokenRecord)
	_, err = other.Mint(st, mint)
	assert.ErrorIs(t, err, ErrNotTokenRecord)
}

func TestAssociatedAccountIsDeterministic(t *testing.T) {
	p, _, mint := setup(t)
	a1, err := p.AssociatedAccount(addr("owner"), mint)
	require.NoError(t, err)
	a2, err := p.AssociatedAccount(addr("owner"), mint)
	require.NoError(t, err)
	a3, err := p.AssociatedAccount(addr("owner2"), mint)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, a3)
}
