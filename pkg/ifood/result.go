package ifood

// ==========================================
// 远程指令的标准化结果
// ==========================================

// Outcome 指令结果类型
// iFood 的部分指令接口是异步受理 (202)，受理成功不代表状态已变更，
// 调用方必须区分 pending 和 success
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"   // 同步成功
	OutcomePending  Outcome = "pending"   // 已受理，异步处理中 (HTTP 202)
	OutcomeNotFound Outcome = "not_found" // 远端不存在该实体 (HTTP 404)
)

// CommandResult 单次远程指令的归一化结果
type CommandResult struct {
	Outcome Outcome `json:"outcome"`
	OrderID string  `json:"order_id,omitempty"`
	Status  string  `json:"status,omitempty"` // 指令成功后预期进入的状态
}

// OK 是否可以按成功处理 (同步成功或异步受理)
func (r CommandResult) OK() bool {
	return r.Outcome == OutcomeSuccess || r.Outcome == OutcomePending
}
