package features

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vulnscan/pkg/bytecode"
)

// TestExtract 测试特征提取
func TestExtract(t *testing.T) {
	extractor := NewExtractor()

	t.Run("BasicContract", func(t *testing.T) {
		// PUSH1 0x80, PUSH1 0x40, MSTORE
		f, err := extractor.Extract("0x6080604052")
		require.NoError(t, err)

		assert.Equal(t, 5, f.BytecodeLength)
		assert.Equal(t, 2, f.OpcodeDistribution["PUSH1"])
		assert.Equal(t, 1, f.OpcodeDistribution["MSTORE"])
		assert.Equal(t, len(f.OpcodeDistribution), f.UniqueOpcodes)
		assert.Equal(t, 1.0, f.CyclomaticComplexity, "no JUMPI means complexity 1")
	})

	t.Run("ControlFlowCounts", func(t *testing.T) {
		// JUMP, JUMPI, CALL, DELEGATECALL, STATICCALL, CALLCODE, SLOAD, SSTORE, SELFDESTRUCT
		f, err := extractor.Extract("5657f1f4faf25455ff")
		require.NoError(t, err)

		assert.Equal(t, 2, f.JumpCount)
		assert.Equal(t, 1, f.CallCount)
		assert.Equal(t, 1, f.DelegatecallCount)
		assert.Equal(t, 1, f.StaticcallCount)
		assert.Equal(t, 4, f.ExternalCalls, "external calls = CALL+DELEGATECALL+STATICCALL+CALLCODE")
		assert.GreaterOrEqual(t, f.ExternalCalls, f.CallCount)
		assert.Equal(t, 1, f.SloadCount)
		assert.Equal(t, 1, f.SstoreCount)
		assert.True(t, f.SelfdestructPresent)
		assert.Equal(t, 2.0, f.CyclomaticComplexity)
	})

	t.Run("InvalidHex", func(t *testing.T) {
		_, err := extractor.Extract("0xnothex")
		require.Error(t, err)
		var invalidErr *bytecode.InvalidBytecodeError
		assert.ErrorAs(t, err, &invalidErr)
	})

	t.Run("Empty", func(t *testing.T) {
		f, err := extractor.Extract("")
		require.NoError(t, err)
		assert.Equal(t, 0, f.BytecodeLength)
		assert.Equal(t, 0, f.UniqueOpcodes)
		assert.Equal(t, 0.0, f.CodeEntropy)
	})
}

// TestEntropy 熵的取值范围
func TestEntropy(t *testing.T) {
	t.Run("Bounds", func(t *testing.T) {
		assert.Equal(t, 0.0, shannonEntropy(nil))
		// 单一字节值：熵为0
		assert.Equal(t, 0.0, shannonEntropy([]byte{0x41, 0x41, 0x41, 0x41}))

		// 256个互不相同的字节值：熵恰为8 bit
		uniform := make([]byte, 256)
		for i := range uniform {
			uniform[i] = byte(i)
		}
		assert.InDelta(t, 8.0, shannonEntropy(uniform), 1e-9)
	})

	t.Run("AlwaysInRange", func(t *testing.T) {
		extractor := NewExtractor()
		for _, code := range []string{"", "00", "6080604052", "ffffffff", "0x63a9059cbb"} {
			f, err := extractor.Extract(code)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, f.CodeEntropy, 0.0)
			assert.LessOrEqual(t, f.CodeEntropy, 8.0)
		}
	})
}

// TestSelectorExtraction 选择器扫描（含有意保留的误报行为）
func TestSelectorExtraction(t *testing.T) {
	extractor := NewExtractor()

	t.Run("Push4Pattern", func(t *testing.T) {
		// PUSH4 0xa9059cbb (transfer选择器)
		f, err := extractor.Extract("63a9059cbb")
		require.NoError(t, err)
		require.Len(t, f.FunctionSelectors, 1)
		assert.Equal(t, "0xa9059cbb", f.FunctionSelectors[0])
		assert.Equal(t, "transfer(address,uint256)", LabelSelector(f.FunctionSelectors[0]))
	})

	t.Run("Deduplication", func(t *testing.T) {
		f, err := extractor.Extract("63a9059cbb5063a9059cbb")
		require.NoError(t, err)
		assert.Len(t, f.FunctionSelectors, 1)
	})

	t.Run("OperandFalsePositive", func(t *testing.T) {
		// PUSH32 立即数内部包含63xxxxxxxx模式：整段hex扫描会命中，
		// 这是已知并保留的启发式行为
		code := "7f" + "63deadbeef" + strings.Repeat("00", 27)
		f, err := extractor.Extract(code)
		require.NoError(t, err)
		assert.Contains(t, f.FunctionSelectors, "0xdeadbeef")
	})
}

// TestKnownSelectors 已知选择器表由签名经Keccak256推导
func TestKnownSelectors(t *testing.T) {
	assert.Equal(t, "0x8da5cb5b", SelectorOf("owner()"))
	assert.Equal(t, "0x5c975abb", SelectorOf("paused()"))
	assert.Equal(t, "0xa9059cbb", SelectorOf("transfer(address,uint256)"))
	assert.Equal(t, "owner()", KnownSelectors["0x8da5cb5b"])
	assert.Empty(t, LabelSelector("0x00000000"))
}

// TestHeuristicFlags 语法启发式标志
func TestHeuristicFlags(t *testing.T) {
	extractor := NewExtractor()

	t.Run("MinimalProxy", func(t *testing.T) {
		// 前置一个DELEGATECALL保证直方图命中：EIP-1167前缀以截断PUSH20结尾，
		// 追加在其后的字节会被当作立即数吞掉
		f, err := extractor.Extract("f4363d3d373d3d3d363d73")
		require.NoError(t, err)
		assert.True(t, f.IsProxy)
	})

	t.Run("ShortDelegatecall", func(t *testing.T) {
		f, err := extractor.Extract("f4")
		require.NoError(t, err)
		assert.True(t, f.IsProxy, "short bytecode with DELEGATECALL is flagged as proxy")
	})

	t.Run("NoDelegatecallNoProxy", func(t *testing.T) {
		f, err := extractor.Extract("363d3d373d3d3d363d73")
		require.NoError(t, err)
		assert.False(t, f.IsProxy)
	})

	t.Run("Upgradeable", func(t *testing.T) {
		f, err := extractor.Extract("7f360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")
		require.NoError(t, err)
		assert.True(t, f.IsUpgradeable)
	})

	t.Run("OwnershipAndPausable", func(t *testing.T) {
		// 子串检查作用于整段hex，不限于选择器表位置
		f, err := extractor.Extract("638da5cb5b635c975abb")
		require.NoError(t, err)
		assert.True(t, f.HasOwnership)
		assert.True(t, f.HasPausable)

		f, err = extractor.Extract("6080604052")
		require.NoError(t, err)
		assert.False(t, f.HasOwnership)
		assert.False(t, f.HasPausable)
	})
}
