package consts

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	// Programs
	SystemProgramStr = "11111111111111111111111111111111"

	// Rhizo 路由托管程序（devnet 部署地址），可被配置覆盖
	RhizoProgramStr = "Ep1SV45cqumZmogwWFy6pVNvMpRerMZUUhSJTbTh2e58"
)

// PDA 种子
const (
	RouteSeedPrefix = "route-" // 路由资源: "route-" + name
	SocbSeedPrefix  = "socb-"  // 签名链上字节: "socb-" + key

	DevRoutesSeed = "_dev_routes" // 开发者路由索引（每个 owner 唯一）
	DevSocbsSeed  = "_dev_socbs"  // 开发者 SOCB 索引（每个 owner 唯一）
)

// 后端 ingest 服务
const (
	DefaultIngestEndpoint = "http://euro.rhizo.dev/ingest"
)
