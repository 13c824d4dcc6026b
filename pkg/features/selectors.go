package features

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// knownSignatures 常见函数签名，启动时经Keccak256推导出选择器表
var knownSignatures = []string{
	"balanceOf(address)",
	"transfer(address,uint256)",
	"transferFrom(address,address,uint256)",
	"approve(address,uint256)",
	"totalSupply()",
	"name()",
	"symbol()",
	"decimals()",
	"owner()",
	"renounceOwnership()",
	"transferOwnership(address)",
	"pause()",
	"unpause()",
	"paused()",
}

// KnownSelectors 选择器(0x前缀) → 函数签名，进程启动时构建一次
var KnownSelectors = buildSelectorTable()

func buildSelectorTable() map[string]string {
	table := make(map[string]string, len(knownSignatures))
	for _, sig := range knownSignatures {
		table[SelectorOf(sig)] = sig
	}
	return table
}

// SelectorOf 计算函数签名的4字节选择器，返回0x前缀hex
func SelectorOf(signature string) string {
	hash := crypto.Keccak256([]byte(signature))
	return fmt.Sprintf("0x%s", hex.EncodeToString(hash[:4]))
}

// LabelSelector 返回选择器对应的已知签名；未知返回空串
func LabelSelector(selector string) string {
	return KnownSelectors[selector]
}
