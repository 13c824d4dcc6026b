package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContrastiveLoss 三元组损失
func TestContrastiveLoss(t *testing.T) {
	loss := NewContrastiveLoss(1.0)

	t.Run("WellSeparated", func(t *testing.T) {
		// 正样本距离0，负样本距离10：margin内无违规，损失为0
		anchor := []Vector{{0, 0}}
		positive := []Vector{{0, 0}}
		negative := []Vector{{10, 0}}
		assert.Equal(t, 0.0, loss.Forward(anchor, positive, negative))
	})

	t.Run("ViolatesMargin", func(t *testing.T) {
		// d(a,p)=1, d(a,n)=1 → loss = relu(1-1+1) = 1
		anchor := []Vector{{0, 0}}
		positive := []Vector{{1, 0}}
		negative := []Vector{{0, 1}}
		assert.InDelta(t, 1.0, loss.Forward(anchor, positive, negative), 1e-12)
	})

	t.Run("BatchMean", func(t *testing.T) {
		anchor := []Vector{{0, 0}, {0, 0}}
		positive := []Vector{{0, 0}, {1, 0}}
		negative := []Vector{{10, 0}, {0, 1}}
		// 样本1损失0，样本2损失1 → 均值0.5
		assert.InDelta(t, 0.5, loss.Forward(anchor, positive, negative), 1e-12)
	})

	t.Run("DefaultMargin", func(t *testing.T) {
		assert.Equal(t, 1.0, NewContrastiveLoss(0).Margin)
		assert.Equal(t, 0.5, NewContrastiveLoss(0.5).Margin)
	})

	t.Run("EmptyBatch", func(t *testing.T) {
		assert.Equal(t, 0.0, loss.Forward(nil, nil, nil))
	})
}

// TestMultiTaskLoss 多任务组合损失
func TestMultiTaskLoss(t *testing.T) {
	loss := NewMultiTaskLoss()

	t.Run("PerfectPrediction", func(t *testing.T) {
		outputs := []*Output{{
			Malicious:       1.0,
			Vulnerabilities: Vector{1, 0, 1},
			Risk:            0.75,
		}}
		targets := []Targets{{
			Malicious:       1.0,
			Vulnerabilities: Vector{1, 0, 1},
			Risk:            0.75,
		}}
		b := loss.Forward(outputs, targets)
		assert.Less(t, b.Total, 1e-5, "perfect predictions give near-zero loss")
		assert.Equal(t, 0.0, b.Risk)
	})

	t.Run("WorseIsBigger", func(t *testing.T) {
		targets := []Targets{{Malicious: 1.0, Vulnerabilities: Vector{1}, Risk: 1.0}}
		good := loss.Forward([]*Output{{Malicious: 0.9, Vulnerabilities: Vector{0.9}, Risk: 0.9}}, targets)
		bad := loss.Forward([]*Output{{Malicious: 0.1, Vulnerabilities: Vector{0.1}, Risk: 0.1}}, targets)
		assert.Greater(t, bad.Total, good.Total)
		assert.Greater(t, bad.Malicious, good.Malicious)
		assert.Greater(t, bad.Risk, good.Risk)
	})

	t.Run("Weights", func(t *testing.T) {
		// 风险项权重0.5：总损失 = malicious + vuln + 0.5*risk
		b := loss.Forward(
			[]*Output{{Malicious: 0.5, Vulnerabilities: Vector{0.5}, Risk: 0.0}},
			[]Targets{{Malicious: 1.0, Vulnerabilities: Vector{1}, Risk: 1.0}},
		)
		expected := b.Malicious + b.Vulnerability + 0.5*b.Risk
		assert.InDelta(t, expected, b.Total, 1e-12)
		assert.InDelta(t, 1.0, b.Risk, 1e-12, "risk MSE of (0-1)^2")
	})

	t.Run("EmptyBatch", func(t *testing.T) {
		assert.Equal(t, LossBreakdown{}, loss.Forward(nil, nil))
	})
}
