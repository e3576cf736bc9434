package auth

import (
	"math"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/blues/launchpad/internal/clock"
	"github.com/blues/launchpad/internal/errs"
)

func TestParsePrincipal(t *testing.T) {
	p, err := ParsePrincipal("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.NoError(t, err)
	require.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", p.String())

	_, err = ParsePrincipal("not-an-address")
	require.Equal(t, errs.CodeInvalidPrincipal, errs.CodeOf(err))

	_, err = ParsePrincipal("0x0000000000000000000000000000000000000000")
	require.Equal(t, errs.CodeInvalidPrincipal, errs.CodeOf(err))
}

func TestVaultAddress_Deterministic(t *testing.T) {
	a := VaultAddress("project-1")
	require.Equal(t, a, VaultAddress("project-1"))
	require.NotEqual(t, a, VaultAddress("project-2"))

	_, err := ParsePrincipal(a)
	require.NoError(t, err)
}

func TestTokenIssuer_RoundTripAndExpiry(t *testing.T) {
	clk := clock.NewManual(time.Unix(1_700_000_000, 0))
	issuer, err := NewTokenIssuer("secret", "launchpad", time.Hour, clk)
	require.NoError(t, err)

	p, err := ParsePrincipal("0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)

	token, expiresAt, err := issuer.Issue(p)
	require.NoError(t, err)
	require.Equal(t, clk.Now().Add(time.Hour), expiresAt)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	require.True(t, got.Equal(p))

	other, err := NewTokenIssuer("other-secret", "launchpad", time.Hour, clk)
	require.NoError(t, err)
	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	clk.Advance(2 * time.Hour)
	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestWalletVerifier(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	clk := clock.NewManual(time.Unix(1_700_000_000, 0))
	verifier := NewWalletVerifier(5*time.Minute, clk)
	issuedAt := clk.Now().Unix()

	sig, err := crypto.Sign(accounts.TextHash([]byte(LoginMessage(address, issuedAt))), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	p, err := verifier.Verify(address, issuedAt, hexutil.Encode(sig))
	require.NoError(t, err)
	require.Equal(t, address, p.String())

	t.Run("wrong signer", func(t *testing.T) {
		_, err := verifier.Verify("0x00000000000000000000000000000000000000aa", issuedAt, hexutil.Encode(sig))
		require.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("stale", func(t *testing.T) {
		clk.Advance(10 * time.Minute)
		_, err := verifier.Verify(address, issuedAt, hexutil.Encode(sig))
		require.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("far from now", func(t *testing.T) {
		for _, at := range []int64{1 << 62, math.MaxInt64, math.MinInt64, clk.Now().Unix() + (1 << 55) + 100} {
			sig, err := crypto.Sign(accounts.TextHash([]byte(LoginMessage(address, at))), key)
			require.NoError(t, err)
			_, err = verifier.Verify(address, at, hexutil.Encode(sig))
			require.ErrorIs(t, err, ErrInvalidSignature, "issuedAt %d", at)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := verifier.Verify(address, clk.Now().Unix(), "0x1234")
		require.ErrorIs(t, err, ErrInvalidSignature)
	})
}
