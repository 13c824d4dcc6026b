package vuln

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIndex 全局类别索引表
func TestIndex(t *testing.T) {
	assert.Equal(t, 13, NumCategories)
	assert.Equal(t, 0, Index(Reentrancy))
	assert.Equal(t, 12, Index(DenialOfService))
	assert.Equal(t, -1, Index(Category("not_a_category")))

	// 索引表与类别表一一对应
	for i, c := range Categories {
		assert.Equal(t, i, Index(c))
	}
}

// TestSeverityFor 按分组和置信度分级
func TestSeverityFor(t *testing.T) {
	t.Run("CriticalGroup", func(t *testing.T) {
		assert.Equal(t, SeverityCritical, SeverityFor(Reentrancy, 0.85))
		assert.Equal(t, SeverityHigh, SeverityFor(Reentrancy, 0.65))
		assert.Equal(t, SeverityMedium, SeverityFor(Reentrancy, 0.4))
		assert.Equal(t, SeverityCritical, SeverityFor(OracleManipulation, 0.9))
		assert.Equal(t, SeverityCritical, SeverityFor(AccessControl, 0.81))
		assert.Equal(t, SeverityCritical, SeverityFor(FlashLoan, 0.99))
	})

	t.Run("HighGroup", func(t *testing.T) {
		assert.Equal(t, SeverityHigh, SeverityFor(RugPull, 0.85))
		assert.Equal(t, SeverityMedium, SeverityFor(Honeypot, 0.6))
		assert.Equal(t, SeverityLow, SeverityFor(IntegerOverflow, 0.4))
	})

	t.Run("DefaultGroup", func(t *testing.T) {
		assert.Equal(t, SeverityMedium, SeverityFor(TxOrigin, 0.85))
		assert.Equal(t, SeverityLow, SeverityFor(TimestampDependency, 0.5))
		assert.Equal(t, SeverityLow, SeverityFor(LogicError, 0.79))
	})

	t.Run("Boundaries", func(t *testing.T) {
		// 阈值为严格大于
		assert.Equal(t, SeverityHigh, SeverityFor(Reentrancy, 0.8))
		assert.Equal(t, SeverityMedium, SeverityFor(Reentrancy, 0.6))
		assert.Equal(t, SeverityMedium, SeverityFor(RugPull, 0.8))
	})
}
