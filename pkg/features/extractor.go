package features

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"vulnscan/pkg/bytecode"
)

// 字节码hex中的固定模式常量
const (
	// EIP-1167 最小代理前缀
	minimalProxyPrefix = "363d3d373d3d3d363d73"
	// EIP-1967 实现槽/管理员槽
	eip1967ImplSlot  = "360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc"
	eip1967AdminSlot = "b53127684a568b3173ae13b9f8a6016e243e63b6e8ee1178d6a717850b5d6103"
)

// selectorPattern PUSH4操作码(0x63)后跟4字节。对整段hex做扫描，
// 包括无关指令的立即数内部——前置多字节PUSH的操作数可能碰巧命中，
// 属于有意保留的启发式误报源，不做反汇编级的精确提取
var selectorPattern = regexp.MustCompile(`63([0-9a-f]{8})`)

// Extractor 从合约字节码提取特征
type Extractor struct{}

// NewExtractor 创建特征提取器
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract 从hex字节码提取特征；仅在非法hex时返回 *bytecode.InvalidBytecodeError
func (e *Extractor) Extract(bytecodeHex string) (*ContractFeatures, error) {
	normalized := bytecode.Normalize(bytecodeHex)
	raw, err := bytecode.Parse(normalized)
	if err != nil {
		return nil, err
	}

	instructions := bytecode.Decode(raw)

	// 单遍统计操作码直方图
	dist := make(map[string]int, 64)
	for _, inst := range instructions {
		dist[inst.Name]++
	}

	f := &ContractFeatures{
		BytecodeLength:      len(raw),
		OpcodeDistribution:  dist,
		UniqueOpcodes:       len(dist),
		JumpCount:           dist["JUMP"] + dist["JUMPI"],
		CallCount:           dist["CALL"],
		DelegatecallCount:   dist["DELEGATECALL"],
		StaticcallCount:     dist["STATICCALL"],
		SelfdestructPresent: dist["SELFDESTRUCT"] > 0,
		SloadCount:          dist["SLOAD"],
		SstoreCount:         dist["SSTORE"],
		ExternalCalls:       dist["CALL"] + dist["DELEGATECALL"] + dist["STATICCALL"] + dist["CALLCODE"],
		// 简化处理：以CALL计数近似转账次数
		EtherTransfers:       dist["CALL"],
		CyclomaticComplexity: float64(dist["JUMPI"] + 1),
		CodeEntropy:          shannonEntropy(raw),
		FunctionSelectors:    extractSelectors(normalized),
		IsProxy:              detectProxy(dist, normalized),
		IsUpgradeable:        detectUpgradeable(normalized),
		HasOwnership:         strings.Contains(normalized, SelectorOf("owner()")[2:]),
		HasPausable:          strings.Contains(normalized, SelectorOf("paused()")[2:]),
	}
	return f, nil
}

// shannonEntropy 原始字节值频率的香农熵，单位bit，空输入为0
func shannonEntropy(data []byte) float64 {
	if len(data) == 0 {
		return 0.0
	}
	var counts [256]int
	for _, b := range data {
		counts[b]++
	}
	length := float64(len(data))
	entropy := 0.0
	for _, count := range counts {
		if count == 0 {
			continue
		}
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// extractSelectors 扫描候选函数选择器并去重
func extractSelectors(normalizedHex string) []string {
	matches := selectorPattern.FindAllStringSubmatch(normalizedHex, -1)
	seen := make(map[string]bool, len(matches))
	selectors := make([]string, 0, len(matches))
	for _, m := range matches {
		selector := "0x" + m[1]
		if !seen[selector] {
			seen[selector] = true
			selectors = append(selectors, selector)
		}
	}
	sort.Strings(selectors)
	return selectors
}

// detectProxy 代理合约检测：DELEGATECALL存在且命中EIP-1167前缀，
// 或极短字节码中出现DELEGATECALL
func detectProxy(dist map[string]int, normalizedHex string) bool {
	if dist["DELEGATECALL"] == 0 {
		return false
	}
	if strings.Contains(normalizedHex, minimalProxyPrefix) {
		return true
	}
	return len(normalizedHex) < 1000
}

// detectUpgradeable 可升级代理检测：EIP-1967槽常量出现在任意位置
func detectUpgradeable(normalizedHex string) bool {
	return strings.Contains(normalizedHex, eip1967ImplSlot) ||
		strings.Contains(normalizedHex, eip1967AdminSlot)
}
