package features

// ContractFeatures 从字节码提取的结构化特征（一次生成后只读）
type ContractFeatures struct {
	// 字节码统计
	BytecodeLength     int            `json:"bytecode_length"`
	OpcodeDistribution map[string]int `json:"opcode_distribution"`
	UniqueOpcodes      int            `json:"unique_opcodes"`

	// 控制流特征
	JumpCount           int  `json:"jump_count"`
	CallCount           int  `json:"call_count"`
	DelegatecallCount   int  `json:"delegatecall_count"`
	StaticcallCount     int  `json:"staticcall_count"`
	SelfdestructPresent bool `json:"selfdestruct_present"`

	// 存储特征
	SloadCount  int `json:"sload_count"`
	SstoreCount int `json:"sstore_count"`

	// 外部交互特征
	ExternalCalls  int `json:"external_calls"`
	EtherTransfers int `json:"ether_transfers"`

	// 复杂度指标
	CyclomaticComplexity float64 `json:"cyclomatic_complexity"`
	CodeEntropy          float64 `json:"code_entropy"` // 香农熵，单位bit，范围[0,8]

	// 候选函数选择器（前4字节）
	FunctionSelectors []string `json:"function_selectors"`

	// 已知模式（纯语法启发式，可能误报）
	IsProxy       bool `json:"is_proxy"`
	IsUpgradeable bool `json:"is_upgradeable"`
	HasOwnership  bool `json:"has_ownership"`
	HasPausable   bool `json:"has_pausable"`
}
