package app

// Command 表示应用的启动模式。
type Command string

const (
	// CommandServe 表示以 API 服务模式启动。
	CommandServe Command = "serve"
	// CommandWorker 表示以缓存预热 worker 模式启动。
	CommandWorker Command = "worker"
	// CommandHealthcheck 表示执行一次健康检查后退出。
	// 供 distroless 镜像里的 Docker healthcheck 使用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand 解析命令行参数中的子命令。
// 参数为空或不认识的命令一律按 CommandServe 处理。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "worker":
		return CommandWorker
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}
