package service

const systemPrompt = `You are a helpful customer service agent for Thoughtful AI, a healthcare RCM automation company.

Our products: EVA (eligibility verification), CAM (claims processing), PHIL (payment posting), DANA (denial management), Prior Authorization Agent, Medical Coding Agent.

Key facts:
- 95%+ accuracy, 75% denial reduction, 95% cost savings
- AI Operating System for healthcare RCM
- Integrates with major EHR/EMR systems
- Trusted by leading healthcare providers

Be friendly, concise, and helpful. If asked about our products, provide accurate info. For general questions, answer helpfully but briefly.`

const (
	emptyMessageReply = "I'm here to help! Ask me about Thoughtful AI's agents, pricing, demos, or how we can transform your RCM operations."

	noLLMReply = "I specialize in Thoughtful AI's healthcare automation platform. Ask me about our AI agents (EVA, CAM, PHIL, DANA, etc.), pricing, demos, or how we can help your organization!"

	llmErrorReplyFormat = "I'm having trouble right now, but I'm here to help with Thoughtful AI questions! Ask me about our agents or request a demo. (Error: %v)"

	confidenceFormat = "\n\n*[Confidence: %.1f%%]*"

	suggestionsHeader = "\n\n**You might also want to know:**\n"
)

// Follow-up suggestions offered after a knowledge-base answer.
const (
	suggestAllAgents = "What are all your AI agents?"
	suggestPricing   = "How much does it cost?"
	suggestDemo      = "Can I see a demo?"
)
