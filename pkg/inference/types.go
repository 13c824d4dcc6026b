package inference

import (
	"vulnscan/pkg/features"
	"vulnscan/pkg/vuln"
)

// VulnerabilityFinding 单条漏洞判定
type VulnerabilityFinding struct {
	Category   vuln.Category `json:"vuln_type"`
	Confidence float64       `json:"confidence"`
	Severity   vuln.Severity `json:"severity"`
}

// PredictionResult 结构化预测结果（JSON可序列化）
type PredictionResult struct {
	IsMalicious          bool                       `json:"is_malicious"`
	MaliciousProbability float64                    `json:"malicious_probability"`
	RiskScore            int                        `json:"risk_score"` // 0-100
	Vulnerabilities      []VulnerabilityFinding     `json:"vulnerabilities"`
	Embedding            []float64                  `json:"embedding,omitempty"`
	ContractFeatures     *features.ContractFeatures `json:"contract_features,omitempty"`
}
