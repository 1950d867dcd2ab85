package copilot

import (
	"strings"

	"loomsales.app/copilot/common/llm"
)

// NoReferenceSentinel replaces the knowledge context when retrieval found
// nothing usable. Its presence switches the prompt to refusal mode.
const NoReferenceSentinel = "【无相关参考资料】"

// Deflection is the fixed refusal the model is told to give when the
// knowledge base cannot ground an answer.
const Deflection = "抱歉，基于目前掌握的专业知识库，我暂时无法回答关于 [问题核心] 的确切信息。为了保证业务严谨性，建议您咨询技术部门或查阅官方产品手册。"

var intentTemplates = map[Intent]string{
	IntentFunction: `
策略：卖点转化 (FUNCTION)
输出结构:
- **功能作用**: [一句话描述它是什么]
- **使用场景**: [简述客户在什么环节用它，怎么用]
- **业务价值**: [重点：对客户有什么好处（省钱/省力/提速）]
- **界面示意**: [根据知识库描述界面长什么样，若有图片会由系统自动匹配]
`,
	IntentCompatibility: `
策略：风险控制 (COMPATIBILITY)
输出结构:
- **支持情况**: [明确回答：支持 / 不支持 / 需确认]
- **适配条件**: [列出必要条件，如型号、接口协议等]
- **定制化说明**: [是否需要额外开发费用或周期]
- **风险提示(关键)**: [一句话提醒销售不要乱承诺，如需技术选型确认等]
`,
	IntentImpact: `
策略：数据驱动 (IMPACT)
输出结构:
- **预期提升**: [给出可量化的区间，严禁绝对值，如"预计提升5%-8%"]
- **实现前提**: [达到此效果需要客户配合的条件]
- **行业案例**: [简述知识库中的同类客户成功经验]
- **风险说明**: [提示效果受现场环境因素影响]
`,
	IntentPrinciple: `
策略：专业可信 (PRINCIPLE)
输出结构:
- **原理简述**: [用通俗语言解释底层逻辑，不涉及代码]
- **核心优势**: [为什么我们能做到，竞品做不到的点]
- **落地价值**: [强调技术先进性对业务稳定性的帮助]
`,
	IntentGeneral: `
策略：通用咨询
请按"作战卡片"格式输出：
给客户说的话：[30字内精品建议]
推荐追问：[引导痛点]
`,
}

// BuildSystemPrompt assembles the base instruction (CRM background,
// knowledge context, grounding constraints) and the template for intent.
func BuildSystemPrompt(intent Intent, knowledge, crmSummary string) string {
	if knowledge == "" {
		knowledge = NoReferenceSentinel
	}
	noData := strings.Contains(knowledge, NoReferenceSentinel)

	var b strings.Builder
	b.WriteString("\n你是销售助手，协助纺织行业MES软件销售。\n")
	if crmSummary != "" {
		b.WriteString("【当前交流对象/商机背景】\n")
		b.WriteString(crmSummary)
		b.WriteString("\n请务必结合上述背景进行针对性回答，展现你对客户的了解。\n")
	}
	b.WriteString("\n根据提供的[知识库内容], 按规定结构生成专业回答。\n\n")
	b.WriteString("【重要：知识真实性约束】\n")
	b.WriteString("1. 如果[知识库内容]为空或内容与用户问题完全不相关，请**拒绝胡编乱造**。\n")
	b.WriteString("2. 对于无法从知识库直接推导的问题，请统一回复：“" + Deflection + "”\n")
	if noData {
		b.WriteString("\n3. 注意：当前检索分值极低，知识库可能无覆盖，请执行专业拒答策略。\n")
	}
	b.WriteString("\n\n[知识库内容]:\n")
	b.WriteString(knowledge)
	b.WriteString("\n\n通用要求: 1. 销售口吻，禁用说明书语言。2. 严禁瞎编数据。\n")

	template, ok := intentTemplates[intent]
	if !ok {
		template = intentTemplates[IntentGeneral]
	}
	b.WriteString(template)

	return b.String()
}

// BuildMessages orders the generation call: system prompt, then the memory
// digest as its own system message, then the user query.
func BuildMessages(systemPrompt string, memory MemoryContext, query string) []llm.Message {
	msgs := make([]llm.Message, 0, 3)
	msgs = append(msgs, llm.SystemMessage(systemPrompt))
	if memory.HasMemory {
		msgs = append(msgs, llm.SystemMessage(memory.Content))
	}
	msgs = append(msgs, llm.UserMessage(query))
	return msgs
}
