package instruction

import "fmt"

// WireVersion 指令线格式版本。opcode 编号或任一 payload 字段顺序变化都必须递增。
const WireVersion = 1

// Opcode 链上程序的指令标签，编码为数据前 8 字节（小端）
type Opcode uint64

const (
	OpWriteRoute       Opcode = 0 // 写入/创建路由账户
	OpRouteIndexUpdate Opcode = 1 // 在 _dev_routes 索引中登记/移除路由名
	OpAllocSocb        Opcode = 2 // 分配 SOCB 账户
	OpWriteSocb        Opcode = 3 // 更新 SOCB 内容
	OpDeleteAccount    Opcode = 4 // 删除账户并退还租金
	OpListSocb         Opcode = 5 // 在 _dev_socbs 索引中登记 SOCB key
)

func (o Opcode) String() string {
	switch o {
	case OpWriteRoute:
		return "write_route"
	case OpRouteIndexUpdate:
		return "route_index_update"
	case OpAllocSocb:
		return "alloc_socb"
	case OpWriteSocb:
		return "write_socb"
	case OpDeleteAccount:
		return "delete_account"
	case OpListSocb:
		return "list_socb"
	default:
		return fmt.Sprintf("unknown(%d)", uint64(o))
	}
}
