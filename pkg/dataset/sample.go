// Package dataset 标注样本到模型输入的映射。
// 数据集文件加载、切分、分片由外部训练流程负责，这里只定义样本类型
// 和样本→张量的编码契约。
package dataset

import (
	"vulnscan/pkg/encoder"
	"vulnscan/pkg/model"
	"vulnscan/pkg/vuln"
)

// VulnerabilityLabel 训练数据中的单条漏洞标注
type VulnerabilityLabel struct {
	VulnType   string  `json:"vuln_type"`
	Severity   string  `json:"severity,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// ContractSample 单个标注样本
type ContractSample struct {
	ContractID  string               `json:"contract_id"`
	Bytecode    string               `json:"bytecode"`
	SourceCode  string               `json:"source_code,omitempty"`
	IsMalicious bool                 `json:"is_malicious"`
	RiskScore   *float64             `json:"risk_score,omitempty"` // 0-100
	Labels      []VulnerabilityLabel `json:"labels,omitempty"`
}

// EncodedSample 模型可直接消费的样本编码
type EncodedSample struct {
	Sequence *encoder.EncodedSequence
	Targets  model.Targets
}

// Encode 按全局类别表把样本编码为定长序列和训练目标。
// 未知类别名静默忽略；风险分归一化到[0,1]，缺失视为0
func Encode(sample ContractSample, maxLen int) EncodedSample {
	labels := model.NewVector(vuln.NumCategories)
	for _, l := range sample.Labels {
		if idx := vuln.Index(vuln.Category(l.VulnType)); idx >= 0 {
			labels[idx] = 1.0
		}
	}

	malicious := 0.0
	if sample.IsMalicious {
		malicious = 1.0
	}

	risk := 0.0
	if sample.RiskScore != nil {
		risk = *sample.RiskScore / 100.0
	}

	return EncodedSample{
		Sequence: encoder.Encode(sample.Bytecode, maxLen),
		Targets: model.Targets{
			Malicious:       malicious,
			Vulnerabilities: labels,
			Risk:            risk,
		},
	}
}
