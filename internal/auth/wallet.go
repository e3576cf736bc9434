package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/blues/launchpad/internal/clock"
)

var ErrInvalidSignature = errors.New("invalid signature")

// LoginMessage 钱包需要签名的登录消息
func LoginMessage(address string, issuedAt int64) string {
	return fmt.Sprintf("launchpad login\naddress: %s\nissued_at: %d", address, issuedAt)
}

// WalletVerifier 校验 EIP-191 个人签名
type WalletVerifier struct {
	window time.Duration
	clock  clock.Clock
}

// NewWalletVerifier 创建签名校验器，window 为签名时间允许的偏差
func NewWalletVerifier(window time.Duration, clk clock.Clock) *WalletVerifier {
	if clk == nil {
		clk = clock.System{}
	}
	return &WalletVerifier{window: window, clock: clk}
}

// Verify 校验签名由 address 对应私钥签出
func (w *WalletVerifier) Verify(address string, issuedAt int64, signature string) (Principal, error) {
	p, err := ParsePrincipal(address)
	if err != nil {
		return Principal{}, err
	}

	// 以秒比较，避免 issuedAt 极大时换算 Duration 溢出
	now, window := w.clock.Now().Unix(), int64(w.window/time.Second)
	if issuedAt < now-window || issuedAt > now+window {
		return Principal{}, fmt.Errorf("%w: issued_at outside login window", ErrInvalidSignature)
	}

	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return Principal{}, fmt.Errorf("%w: malformed signature", ErrInvalidSignature)
	}
	// 钱包返回的 V 为 27/28
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	hash := accounts.TextHash([]byte(LoginMessage(p.String(), issuedAt)))
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if crypto.PubkeyToAddress(*pub) != p.Address() {
		return Principal{}, fmt.Errorf("%w: signer mismatch", ErrInvalidSignature)
	}
	return p, nil
}
