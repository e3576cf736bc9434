package auth

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/blues/launchpad/internal/errs"
)

var vaultSeed = []byte("launchpad-vault")

// Principal 已认证的参与者，以地址标识
type Principal struct {
	addr common.Address
}

// ParsePrincipal 解析十六进制地址，零地址无效
func ParsePrincipal(s string) (Principal, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return Principal{}, errs.WithField(errs.CodeInvalidPrincipal, "invalid address", "address")
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return Principal{}, errs.WithField(errs.CodeInvalidPrincipal, "zero address", "address")
	}
	return Principal{addr: addr}, nil
}

// PrincipalFromAddress 直接由地址构造
func PrincipalFromAddress(addr common.Address) Principal {
	return Principal{addr: addr}
}

// String 返回 EIP-55 校验和格式，作为存储键
func (p Principal) String() string {
	return p.addr.Hex()
}

func (p Principal) Address() common.Address {
	return p.addr
}

func (p Principal) IsZero() bool {
	return p.addr == (common.Address{})
}

// Equal 比较两个身份
func (p Principal) Equal(other Principal) bool {
	return p.addr == other.addr
}

// VaultAddress 由项目 ID 确定性派生托管地址
func VaultAddress(projectID string) string {
	return common.BytesToAddress(crypto.Keccak256(vaultSeed, []byte(projectID))).Hex()
}
