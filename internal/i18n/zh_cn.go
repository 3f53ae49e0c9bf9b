package i18n

// ZhCNMessages 简体中文消息目录
// ZhCNMessages Simplified Chinese message catalog
var ZhCNMessages = map[string]string{
	// 面板
	"panel.sessions": "会话",
	"panel.chat":     "对话",
	"panel.todos":    "计划",

	// 状态栏
	"status.connected":    "已连接",
	"status.disconnected": "已断开",
	"status.working":      "处理中...",
	"status.retrying":     "重试中...",
	"status.idle":         "空闲",
	"status.tokens":       "约 %d tokens",
	"status.model":        "模型: %s",

	// 会话列表
	"session.untitled":   "(未命名)",
	"session.new":        "新建会话",
	"session.empty":      "暂无会话，按 'n' 新建。",
	"session.created":    "会话已创建: %s",
	"session.deleted":    "会话已删除",
	"session.select":     "请选择会话",
	"session.refreshing": "正在刷新会话...",

	// 计划
	"todo.empty":       "暂无计划项",
	"todo.pending":     "待处理",
	"todo.in_progress": "进行中",
	"todo.completed":   "已完成",

	// 权限
	"perm.title":    "需要授权",
	"perm.request":  "智能体请求使用: %s",
	"perm.patterns": "匹配模式: %s",
	"perm.once":     "允许一次",
	"perm.always":   "始终允许",
	"perm.reject":   "拒绝",
	"perm.prompt":   "是否允许? [o]一次 / [a]始终 / [r]拒绝",
	"perm.answered": "权限 %s: %s",

	// 输入
	"input.placeholder": "输入消息... (Shift+Enter 换行)",
	"input.submit_hint": "Enter 发送",

	// 快捷键
	"keys.tab":    "tab 切换",
	"keys.quit":   "ctrl+c 退出",
	"keys.model":  "ctrl+o 模型",
	"keys.newses": "n 新建会话",

	// 模型选择
	"model.title":    "选择模型",
	"model.current":  "当前: %s",
	"model.default":  "已保存为默认: %s",
	"model.override": "下一条消息将使用: %s",

	// 服务 / 引擎
	"server.waiting":   "正在等待服务 %s...",
	"server.ready":     "服务就绪 (版本 %s)",
	"server.not_ready": "服务未就绪: %s",
	"server.lost":      "事件流已断开，等待服务器恢复后自动重连…",
	"engine.starting":  "正在 %s 启动 opencode...",
	"engine.started":   "引擎运行于 %s (pid %d)",
	"engine.stopped":   "引擎已停止",
	"engine.not_found": "未找到 opencode CLI",

	// 技能
	"skill.imported": "技能已导入: %s",
	"skill.empty":    "未发现技能",

	// 错误
	"error.prompt_failed":  "发送消息失败: %v",
	"error.reply_failed":   "回复授权失败: %v",
	"error.session_failed": "会话操作失败: %v",

	// 命令（纯文本模式）
	"cmd.help":     "显示可用命令",
	"cmd.new":      "新建会话",
	"cmd.sessions": "列出会话",
	"cmd.use":      "切换到指定会话",
	"cmd.delete":   "删除会话",
	"cmd.model":    "选择下一条消息使用的模型",
	"cmd.todos":    "查看当前计划",
	"cmd.skills":   "列出可用技能",
	"cmd.exit":     "退出",
}
