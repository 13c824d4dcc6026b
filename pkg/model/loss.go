package model

import "math"

// ContrastiveLoss 三元组边际损失，塑造嵌入空间使结构相似的合约聚集。
// 只被外部训练流程消费，推理不使用
type ContrastiveLoss struct {
	Margin float64
}

// NewContrastiveLoss 创建损失，margin<=0时取默认1.0
func NewContrastiveLoss(margin float64) *ContrastiveLoss {
	if margin <= 0 {
		margin = 1.0
	}
	return &ContrastiveLoss{Margin: margin}
}

// Forward 批均值 relu(d(anchor,positive) - d(anchor,negative) + margin)，距离为欧氏距离
func (l *ContrastiveLoss) Forward(anchor, positive, negative []Vector) float64 {
	if len(anchor) == 0 {
		return 0.0
	}
	total := 0.0
	for i := range anchor {
		posDist := EuclideanDistance(anchor[i], positive[i])
		negDist := EuclideanDistance(anchor[i], negative[i])
		if v := posDist - negDist + l.Margin; v > 0 {
			total += v
		}
	}
	return total / float64(len(anchor))
}

// Targets 单个样本的训练目标
type Targets struct {
	Malicious       float64 // 0或1
	Vulnerabilities Vector  // K维多标签 0/1
	Risk            float64 // 已归一化到[0,1]（原始0-100分除以100）
}

// LossBreakdown 多任务损失分解
type LossBreakdown struct {
	Total         float64
	Malicious     float64
	Vulnerability float64
	Risk          float64
}

// MultiTaskLoss 三个任务的加权组合损失
type MultiTaskLoss struct {
	MaliciousWeight float64
	VulnWeight      float64
	RiskWeight      float64
}

// NewMultiTaskLoss 默认权重与训练侧一致
func NewMultiTaskLoss() *MultiTaskLoss {
	return &MultiTaskLoss{MaliciousWeight: 1.0, VulnWeight: 1.0, RiskWeight: 0.5}
}

// bce 二元交叉熵，概率截断避免log(0)
func bce(p, y float64) float64 {
	const eps = 1e-7
	if p < eps {
		p = eps
	}
	if p > 1-eps {
		p = 1 - eps
	}
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

// Forward 批上的组合损失：恶意判定BCE + 漏洞多标签BCE + 风险回归MSE
func (l *MultiTaskLoss) Forward(outputs []*Output, targets []Targets) LossBreakdown {
	if len(outputs) == 0 {
		return LossBreakdown{}
	}

	var maliciousSum, vulnSum, riskSum float64
	vulnCount := 0
	for i, out := range outputs {
		t := targets[i]
		maliciousSum += bce(out.Malicious, t.Malicious)
		for k := range out.Vulnerabilities {
			vulnSum += bce(out.Vulnerabilities[k], t.Vulnerabilities[k])
			vulnCount++
		}
		d := out.Risk - t.Risk
		riskSum += d * d
	}

	n := float64(len(outputs))
	breakdown := LossBreakdown{
		Malicious: maliciousSum / n,
		Risk:      riskSum / n,
	}
	if vulnCount > 0 {
		breakdown.Vulnerability = vulnSum / float64(vulnCount)
	}
	breakdown.Total = l.MaliciousWeight*breakdown.Malicious +
		l.VulnWeight*breakdown.Vulnerability +
		l.RiskWeight*breakdown.Risk
	return breakdown
}
