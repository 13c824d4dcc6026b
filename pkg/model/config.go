package model

// Config 评分模型结构配置
type Config struct {
	EmbeddingDim int     `yaml:"embedding_dim"`  // 编码器宽度E
	HiddenDim    int     `yaml:"hidden_dim"`     // 前馈/特征投影宽度
	NumLayers    int     `yaml:"num_layers"`     // 编码器层数L
	NumHeads     int     `yaml:"num_heads"`      // 注意力头数H
	Dropout      float64 `yaml:"dropout"`        // 训练期dropout率（推理直通）
	MaxSeqLen    int     `yaml:"max_seq_length"` // 输入序列上限
	NumVulnTypes int     `yaml:"num_vuln_types"` // 漏洞输出头维度K
}

// DefaultConfig 与训练侧一致的默认结构
func DefaultConfig() Config {
	return Config{
		EmbeddingDim: 256,
		HiddenDim:    512,
		NumLayers:    4,
		NumHeads:     8,
		Dropout:      0.1,
		MaxSeqLen:    8192,
		NumVulnTypes: 13,
	}
}

// HeadDim 单个注意力头的维度
func (c Config) HeadDim() int {
	return c.EmbeddingDim / c.NumHeads
}
