package inference

import "vulnscan/pkg/model"

// Config 推理服务配置（yaml加载，cmd层做flag覆盖）
type Config struct {
	// 模型结构
	Model model.Config `yaml:"model"`

	// 执行引擎: reference / parallel
	Engine string `yaml:"engine"`

	// 并行引擎与批量预测的worker数
	Workers int `yaml:"concurrent_workers"`

	// 嵌入LRU缓存容量
	CacheSize int `yaml:"embedding_cache_size"`

	// 参数快照路径；为空时使用随机初始化权重（仅调试用）
	SnapshotPath string `yaml:"snapshot_path"`

	// 随机初始化的种子
	InitSeed int64 `yaml:"init_seed"`
}

// DefaultConfig 默认推理配置
func DefaultConfig() Config {
	return Config{
		Model:     model.DefaultConfig(),
		Engine:    "reference",
		Workers:   4,
		CacheSize: defaultCacheSize,
		InitSeed:  42,
	}
}
